// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchOutcome is the result of one recommendation search: the papers
// found, a short summary, and the id of the persisted SearchResult (empty
// when it could not be saved). It is also the /search response body.
type SearchOutcome struct {
	Recommendations []RecommendedPaper `json:"recommendations"`
	Summary         string             `json:"summary"`
	SearchID        string             `json:"searchId"`
}

// RefineResult is the output of the query refiner.
type RefineResult struct {
	RefinedQuery    string             `json:"refined_query"`
	Recommendations []RecommendedPaper `json:"recommendations"`
}
