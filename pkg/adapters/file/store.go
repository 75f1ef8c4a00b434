package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
)

const ext = ".json"

// Store implements ports.DocumentStore using the local filesystem.
// Each document is a "<name>.json" file that can be imported as is.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".flowedit/documents".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".flowedit", "documents")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("document name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid document name %q", name)
	}
	return filepath.Join(s.BasePath, name+ext), nil
}

// Save writes the document atomically.
func (s *Store) Save(ctx context.Context, name string, doc document.Document) error {
	destPath, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure document directory: %w", err)
	}

	data, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	return WriteAtomic(destPath, data)
}

// WriteAtomic replaces destPath with data: temp file, fsync, then rename.
// Readers never observe a partially written file.
func WriteAtomic(destPath string, data []byte) error {
	dir := filepath.Dir(destPath)
	base := filepath.Base(destPath)

	// Same directory as the destination, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+base+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads and decodes the document file.
func (s *Store) Load(ctx context.Context, name string) (document.Document, error) {
	filePath, err := s.path(name)
	if err != nil {
		return document.Document{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return document.Document{}, domain.ErrDocumentNotFound
		}
		return document.Document{}, fmt.Errorf("failed to read document file: %w", err)
	}

	doc, err := document.Decode(data, document.FormatJSON)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(filePath), err)
	}
	return doc, nil
}

// Delete removes the document file.
func (s *Store) Delete(ctx context.Context, name string) error {
	filePath, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete document file: %w", err)
	}
	return nil
}

// List returns the names of all document files.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ext))
	}
	sort.Strings(names)
	return names, nil
}
