// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ContextVersion is the schema version written into new context documents.
const ContextVersion = "1.0"

// DefaultUserID is used for chat messages that arrive without a user id.
const DefaultUserID = "default_user"

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry in the persisted chat history.
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	Role      ChatRole  `json:"role" yaml:"role"`
	Content   string    `json:"content" yaml:"content"`
	UserID    string    `json:"userId" yaml:"userId"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewChatMessage carries the caller-supplied fields of a chat message.
type NewChatMessage struct {
	Role    ChatRole `json:"role" validate:"required,oneof=user assistant"`
	Content string   `json:"content" validate:"required,notblank"`
	UserID  string   `json:"userId,omitempty"`
}

// SearchTypeRecommendations marks a search that resolved a paper id and
// fetched its recommendations.
const SearchTypeRecommendations = "recommendations"

// SearchResult records one recommendation search. Entries are append-only.
type SearchResult struct {
	ID         string             `json:"id" yaml:"id"`
	Query      string             `json:"query" yaml:"query"`
	Results    []RecommendedPaper `json:"results" yaml:"results"`
	PaperID    string             `json:"paperId" yaml:"paperId"`
	SearchType string             `json:"searchType" yaml:"searchType"`
	Timestamp  time.Time          `json:"timestamp" yaml:"timestamp"`
}

// NewSearchResult carries the caller-supplied fields of a search record.
type NewSearchResult struct {
	Query      string             `json:"query" validate:"required,notblank"`
	Results    []RecommendedPaper `json:"results" validate:"required"`
	PaperID    string             `json:"paperId,omitempty"`
	SearchType string             `json:"searchType,omitempty"`
}

// ContextDocument is the single persisted aggregate. It is always read and
// written whole.
type ContextDocument struct {
	Papers        []Paper        `json:"papers" yaml:"papers"`
	ChatHistory   []ChatMessage  `json:"chatHistory" yaml:"chatHistory"`
	SearchResults []SearchResult `json:"searchResults" yaml:"searchResults"`
	LastUpdated   time.Time      `json:"lastUpdated" yaml:"lastUpdated"`
	Version       string         `json:"version" yaml:"version"`
}

// Normalize replaces nil collections with empty ones so the document never
// serializes a null collection.
func (d *ContextDocument) Normalize() {
	if d.Papers == nil {
		d.Papers = []Paper{}
	}
	if d.ChatHistory == nil {
		d.ChatHistory = []ChatMessage{}
	}
	if d.SearchResults == nil {
		d.SearchResults = []SearchResult{}
	}
	if d.Version == "" {
		d.Version = ContextVersion
	}
	for i := range d.Papers {
		if d.Papers[i].Tags == nil {
			d.Papers[i].Tags = []string{}
		}
		if d.Papers[i].Authors == nil {
			d.Papers[i].Authors = []Author{}
		}
	}
	for i := range d.SearchResults {
		if d.SearchResults[i].Results == nil {
			d.SearchResults[i].Results = []RecommendedPaper{}
		}
	}
}

// EmptyContext returns the default skeleton created on first access.
func EmptyContext() *ContextDocument {
	d := &ContextDocument{}
	d.Normalize()
	return d
}
