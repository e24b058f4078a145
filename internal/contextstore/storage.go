// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package contextstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Storage loads and saves the whole context document. Load returns a nil
// document and no error when nothing has been saved yet.
type Storage interface {
	Load(ctx context.Context) (*types.ContextDocument, error)
	Save(ctx context.Context, doc *types.ContextDocument) error
	Close() error
}

// FileStorage keeps the document as indented JSON in a single file.
// Saves write a temporary file in the same directory and rename it over
// the target, so readers never see a partial document.
type FileStorage struct {
	path string
}

// NewFileStorage returns a FileStorage for path. The parent directory is
// created on first save.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the file the document is stored in.
func (f *FileStorage) Path() string {
	return f.path
}

// Load reads and decodes the document file.
func (f *FileStorage) Load(_ context.Context) (*types.ContextDocument, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}

	var doc types.ContextDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.path, err)
	}
	return &doc, nil
}

// Save writes doc atomically.
func (f *FileStorage) Save(_ context.Context, doc *types.ContextDocument) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling context document: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replacing %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op for file storage.
func (f *FileStorage) Close() error {
	return nil
}
