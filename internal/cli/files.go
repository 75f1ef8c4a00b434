package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/flowedit"
	"github.com/aretw0/flowedit/pkg/adapters/file"
	"github.com/aretw0/flowedit/pkg/document"
)

// OpenFile imports the flow document at path. The format follows the extension.
func OpenFile(ctx context.Context, path string, opts ...flowedit.Option) (*flowedit.Editor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow: %w", err)
	}
	defer f.Close()

	ed := flowedit.New(opts...)
	if err := ed.Import(ctx, f, document.FormatFor(path)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ed, nil
}

// SaveFile writes the editor's document to path in the format its extension names.
func SaveFile(ed *flowedit.Editor, path string) error {
	data, err := document.Marshal(ed.Snapshot(), document.FormatFor(path))
	if err != nil {
		return err
	}
	return file.WriteAtomic(path, data)
}
