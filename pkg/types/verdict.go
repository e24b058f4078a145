// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Clarity is the classifier's judgment of whether a query can be searched
// as-is.
type Clarity string

const (
	ClarityAmbiguous Clarity = "ambiguous"
	ClarityClear     Clarity = "clear"
)

// Valid reports whether c is one of the known clarity values.
func (c Clarity) Valid() bool {
	return c == ClarityAmbiguous || c == ClarityClear
}

// ClarityVerdict is the structured classifier output.
type ClarityVerdict struct {
	Clarity      Clarity  `json:"clarity"`
	Message      string   `json:"message"`
	Options      []string `json:"options"`
	RefinedQuery *string  `json:"refined_query"`
}
