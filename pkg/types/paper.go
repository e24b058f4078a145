// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for research-assistant:
// stored papers, recommendation records, search and chat history, the
// context document that aggregates them, and the clarity verdict produced
// by the query classifier.
package types

import "time"

// Author identifies a paper author.
type Author struct {
	Name string `json:"name" yaml:"name" validate:"required,notblank"`
}

// Paper is a paper the user saved into the context document.
type Paper struct {
	// ID is generated on insert (e.g. "paper_6f1c...").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Year is the publication year, if known.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// URL links to the paper landing page.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Tags is a set of labels; duplicates are dropped on write.
	Tags []string `json:"tags" yaml:"tags"`

	// DateAdded is stamped when the paper is first stored.
	DateAdded time.Time `json:"dateAdded" yaml:"dateAdded"`

	// LastModified is stamped on every update. Nil until the first update.
	LastModified *time.Time `json:"lastModified,omitempty" yaml:"lastModified,omitempty"`
}

// NewPaper carries the caller-supplied fields of a paper to add.
type NewPaper struct {
	Title    string   `json:"title" validate:"required,notblank"`
	Authors  []Author `json:"authors" validate:"required,dive"`
	Year     *int     `json:"year,omitempty"`
	URL      string   `json:"url,omitempty" validate:"omitempty,url"`
	Abstract string   `json:"abstract,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// PaperUpdate is a partial update. Nil fields are left unchanged.
type PaperUpdate struct {
	Title    *string   `json:"title,omitempty" validate:"omitempty,notblank"`
	Authors  *[]Author `json:"authors,omitempty" validate:"omitempty,dive"`
	Year     *int      `json:"year,omitempty"`
	URL      *string   `json:"url,omitempty"`
	Abstract *string   `json:"abstract,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// RecommendedPaper is a paper record as returned by the Semantic Scholar
// graph and recommendations APIs.
type RecommendedPaper struct {
	PaperID string   `json:"paperId" yaml:"paperId"`
	Title   string   `json:"title" yaml:"title"`
	Authors []Author `json:"authors" yaml:"authors"`
	Year    *int     `json:"year,omitempty" yaml:"year,omitempty"`
	URL     string   `json:"url,omitempty" yaml:"url,omitempty"`
}
