package ports

import (
	"context"

	"github.com/aretw0/flowedit/pkg/document"
)

// DocumentStore persists whole flow documents under a name.
// Implementations must not share memory with callers: a saved document is
// unaffected by later changes to the value passed in, and vice versa.
type DocumentStore interface {
	// Save creates or replaces the document stored under name.
	Save(ctx context.Context, name string, doc document.Document) error

	// Load retrieves the document stored under name.
	// Returns domain.ErrDocumentNotFound if there is none.
	Load(ctx context.Context, name string) (document.Document, error)

	// Delete removes the document. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
}
