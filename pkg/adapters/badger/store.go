package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
)

var prefix = []byte("doc/")

// Store implements ports.DocumentStore on an embedded badger database.
// Values are the JSON encoding of the document.
type Store struct {
	db *badger.DB
}

// New wraps an open database. The caller keeps ownership of db.
func New(db *badger.DB) *Store {
	return &Store{db: db}
}

// Open opens (or creates) a database in dir with badger's logging silenced.
func Open(dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

func key(name string) []byte {
	return append(append([]byte(nil), prefix...), name...)
}

// Save creates or replaces the document.
func (s *Store) Save(ctx context.Context, name string, doc document.Document) error {
	data, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), data)
	}); err != nil {
		return fmt.Errorf("db: save %q: %w", name, err)
	}
	return nil
}

// Load retrieves the document.
func (s *Store) Load(ctx context.Context, name string) (document.Document, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return document.Document{}, domain.ErrDocumentNotFound
	} else if err != nil {
		return document.Document{}, fmt.Errorf("db: load %q: %w", name, err)
	}

	doc, err := document.Decode(data, document.FormatJSON)
	if err != nil {
		return document.Document{}, fmt.Errorf("decode stored document %q: %w", name, err)
	}
	return doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(name))
	}); err != nil {
		return fmt.Errorf("db: delete %q: %w", name, err)
	}
	return nil
}

// List returns the stored names in key order, which is ascending.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			k := it.Item().Key()
			names = append(names, string(k[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("db: list: %w", err)
	}
	return names, nil
}
