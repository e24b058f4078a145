// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contextstore persists the context document: saved papers, chat
// history and search results. Every mutation is a read-modify-write of the
// whole document under one mutex, so concurrent callers never lose writes.
package contextstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/apperr"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Id prefixes per collection.
const (
	paperIDPrefix   = "paper_"
	messageIDPrefix = "msg_"
	searchIDPrefix  = "search_"
)

// Store is the context document repository.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source. Tests use it to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Store backed by storage.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		validate: newValidator(),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newValidator returns a validator that also rejects whitespace-only
// strings through the notblank tag.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Open builds the Store selected by cfg.
func Open(cfg types.StoreConfig, opts ...Option) (*Store, error) {
	switch cfg.Backend {
	case types.StoreJSON, "":
		return New(NewFileStorage(cfg.Path), opts...), nil
	case types.StoreSQLite:
		st, err := NewSQLiteStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return New(st, opts...), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}

// Read returns the current document, creating and saving the default
// skeleton on first access.
func (s *Store) Read(ctx context.Context) (*types.ContextDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Write replaces the whole document and stamps lastUpdated.
func (s *Store) Write(ctx context.Context, doc *types.ContextDocument) error {
	if doc == nil {
		return fmt.Errorf("document is required: %w", apperr.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, doc, cur.LastUpdated)
}

// load reads the document, normalized. Callers hold s.mu.
func (s *Store) load(ctx context.Context) (*types.ContextDocument, error) {
	doc, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading context document: %w", err)
	}
	if doc == nil {
		doc = types.EmptyContext()
		if err := s.save(ctx, doc, time.Time{}); err != nil {
			return nil, err
		}
		s.logger.Info("created context document")
		return doc, nil
	}
	doc.Normalize()
	return doc, nil
}

// save stamps and persists doc. lastUpdated always moves past prev. Callers
// hold s.mu.
func (s *Store) save(ctx context.Context, doc *types.ContextDocument, prev time.Time) error {
	doc.Normalize()
	ts := s.now().UTC()
	if !ts.After(prev) {
		ts = prev.Add(time.Nanosecond)
	}
	doc.LastUpdated = ts
	if err := s.storage.Save(ctx, doc); err != nil {
		return fmt.Errorf("writing context document: %w", err)
	}
	return nil
}

// mutate runs fn against the current document and saves it when fn
// reports a change.
func (s *Store) mutate(ctx context.Context, fn func(doc *types.ContextDocument) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	prev := doc.LastUpdated
	changed, err := fn(doc)
	if err != nil || !changed {
		return err
	}
	return s.save(ctx, doc, prev)
}

func (s *Store) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: invalid %s", apperr.ErrValidation, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// --- Papers ---

// AddPaper validates and stores a new paper with a generated id.
func (s *Store) AddPaper(ctx context.Context, in types.NewPaper) (types.Paper, error) {
	if err := s.check(in); err != nil {
		return types.Paper{}, err
	}

	var added types.Paper
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		added = types.Paper{
			ID:        paperIDPrefix + uuid.NewString(),
			Title:     strings.TrimSpace(in.Title),
			Authors:   append([]types.Author{}, in.Authors...),
			Year:      in.Year,
			URL:       in.URL,
			Abstract:  in.Abstract,
			Tags:      dedupeTags(in.Tags),
			DateAdded: s.now().UTC(),
		}
		doc.Papers = append(doc.Papers, added)
		return true, nil
	})
	if err != nil {
		return types.Paper{}, err
	}
	return added, nil
}

// GetPaperByID returns the paper with id or apperr.ErrNotFound.
func (s *Store) GetPaperByID(ctx context.Context, id string) (types.Paper, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return types.Paper{}, err
	}
	for _, p := range doc.Papers {
		if p.ID == id {
			return p, nil
		}
	}
	return types.Paper{}, fmt.Errorf("paper %q: %w", id, apperr.ErrNotFound)
}

// GetAllPapers returns every stored paper in insertion order.
func (s *Store) GetAllPapers(ctx context.Context) ([]types.Paper, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Papers, nil
}

// UpdatePaper applies the non-nil fields of upd to the paper with id and
// stamps lastModified. The id and dateAdded never change.
func (s *Store) UpdatePaper(ctx context.Context, id string, upd types.PaperUpdate) (types.Paper, error) {
	if err := s.check(upd); err != nil {
		return types.Paper{}, err
	}

	var updated types.Paper
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		for i := range doc.Papers {
			p := &doc.Papers[i]
			if p.ID != id {
				continue
			}
			applyUpdate(p, upd)
			mod := s.now().UTC()
			p.LastModified = &mod
			updated = *p
			return true, nil
		}
		return false, fmt.Errorf("paper %q: %w", id, apperr.ErrNotFound)
	})
	if err != nil {
		return types.Paper{}, err
	}
	return updated, nil
}

func applyUpdate(p *types.Paper, upd types.PaperUpdate) {
	if upd.Title != nil {
		p.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.Authors != nil {
		p.Authors = append([]types.Author{}, (*upd.Authors)...)
	}
	if upd.Year != nil {
		y := *upd.Year
		p.Year = &y
	}
	if upd.URL != nil {
		p.URL = *upd.URL
	}
	if upd.Abstract != nil {
		p.Abstract = *upd.Abstract
	}
	if upd.Tags != nil {
		p.Tags = dedupeTags(*upd.Tags)
	}
}

// DeletePaper removes the paper with id and reports whether it existed.
func (s *Store) DeletePaper(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		kept := doc.Papers[:0]
		for _, p := range doc.Papers {
			if p.ID == id {
				deleted = true
				continue
			}
			kept = append(kept, p)
		}
		doc.Papers = kept
		return deleted, nil
	})
	return deleted, err
}

// SearchPapers returns papers whose title or any author name contains
// query, case-insensitively. An empty query matches every paper.
func (s *Store) SearchPapers(ctx context.Context, query string) ([]types.Paper, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	matches := []types.Paper{}
	for _, p := range doc.Papers {
		if paperMatches(p, q) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func paperMatches(p types.Paper, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) {
		return true
	}
	for _, a := range p.Authors {
		if strings.Contains(strings.ToLower(a.Name), q) {
			return true
		}
	}
	return false
}

// dedupeTags trims tags and drops empty and repeated ones, keeping the
// first occurrence's position.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// --- Chat history ---

// AddChatMessage validates and appends a chat message. An empty user id is
// stored as types.DefaultUserID.
func (s *Store) AddChatMessage(ctx context.Context, in types.NewChatMessage) (types.ChatMessage, error) {
	added, err := s.AddChatMessages(ctx, in)
	if err != nil {
		return types.ChatMessage{}, err
	}
	return added[0], nil
}

// AddChatMessages validates every message and appends them in one write.
// Either all of them are stored or none is.
func (s *Store) AddChatMessages(ctx context.Context, in ...types.NewChatMessage) ([]types.ChatMessage, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: no chat messages", apperr.ErrValidation)
	}
	for _, m := range in {
		if err := s.check(m); err != nil {
			return nil, err
		}
	}

	var added []types.ChatMessage
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		added = make([]types.ChatMessage, 0, len(in))
		ts := s.now().UTC()
		for _, m := range in {
			userID := strings.TrimSpace(m.UserID)
			if userID == "" {
				userID = types.DefaultUserID
			}
			added = append(added, types.ChatMessage{
				ID:        messageIDPrefix + uuid.NewString(),
				Role:      m.Role,
				Content:   m.Content,
				UserID:    userID,
				Timestamp: ts,
			})
		}
		doc.ChatHistory = append(doc.ChatHistory, added...)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// GetChatHistory returns every chat message in insertion order.
func (s *Store) GetChatHistory(ctx context.Context) ([]types.ChatMessage, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.ChatHistory, nil
}

// GetChatHistoryByUser returns the messages recorded for userID.
func (s *Store) GetChatHistoryByUser(ctx context.Context, userID string) ([]types.ChatMessage, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	msgs := []types.ChatMessage{}
	for _, m := range doc.ChatHistory {
		if m.UserID == userID {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// ClearChatHistory removes every chat message.
func (s *Store) ClearChatHistory(ctx context.Context) error {
	return s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		doc.ChatHistory = []types.ChatMessage{}
		return true, nil
	})
}

// DeleteChatMessage removes the message with id and reports whether it
// existed.
func (s *Store) DeleteChatMessage(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		kept := doc.ChatHistory[:0]
		for _, m := range doc.ChatHistory {
			if m.ID == id {
				deleted = true
				continue
			}
			kept = append(kept, m)
		}
		doc.ChatHistory = kept
		return deleted, nil
	})
	return deleted, err
}

// --- Search results ---

// AddSearchResult validates and appends a search record. An empty search
// type defaults to types.SearchTypeRecommendations.
func (s *Store) AddSearchResult(ctx context.Context, in types.NewSearchResult) (types.SearchResult, error) {
	if err := s.check(in); err != nil {
		return types.SearchResult{}, err
	}
	searchType := in.SearchType
	if searchType == "" {
		searchType = types.SearchTypeRecommendations
	}

	var added types.SearchResult
	err := s.mutate(ctx, func(doc *types.ContextDocument) (bool, error) {
		added = types.SearchResult{
			ID:         searchIDPrefix + uuid.NewString(),
			Query:      in.Query,
			Results:    append([]types.RecommendedPaper{}, in.Results...),
			PaperID:    in.PaperID,
			SearchType: searchType,
			Timestamp:  s.now().UTC(),
		}
		doc.SearchResults = append(doc.SearchResults, added)
		return true, nil
	})
	if err != nil {
		return types.SearchResult{}, err
	}
	return added, nil
}

// GetSearchResults returns every search record in insertion order.
func (s *Store) GetSearchResults(ctx context.Context) ([]types.SearchResult, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return nil, err
	}
	return doc.SearchResults, nil
}

// GetSearchResultByID returns the search record with id or
// apperr.ErrNotFound.
func (s *Store) GetSearchResultByID(ctx context.Context, id string) (types.SearchResult, error) {
	doc, err := s.Read(ctx)
	if err != nil {
		return types.SearchResult{}, err
	}
	for _, r := range doc.SearchResults {
		if r.ID == id {
			return r, nil
		}
	}
	return types.SearchResult{}, fmt.Errorf("search result %q: %w", id, apperr.ErrNotFound)
}
