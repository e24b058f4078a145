// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPapers(papers []types.Paper) {
	if len(papers) == 0 {
		fmt.Println("No papers saved.")
		return
	}
	for _, p := range papers {
		year := ""
		if p.Year != nil {
			year = fmt.Sprintf(" (%d)", *p.Year)
		}
		fmt.Printf("%s  %s%s\n", p.ID, p.Title, year)
		if len(p.Authors) > 0 {
			names := make([]string, 0, len(p.Authors))
			for _, a := range p.Authors {
				names = append(names, a.Name)
			}
			fmt.Printf("    %s\n", strings.Join(names, ", "))
		}
		if len(p.Tags) > 0 {
			fmt.Printf("    tags: %s\n", strings.Join(p.Tags, ", "))
		}
	}
}
