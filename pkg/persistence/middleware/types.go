// Package middleware wraps a DocumentStore with extra behavior applied on the
// way in and out of the underlying backend.
package middleware

import "github.com/aretw0/flowedit/pkg/ports"

// Middleware allows wrapping a DocumentStore to add behavior.
type Middleware func(ports.DocumentStore) ports.DocumentStore

// Chain applies mws so that the first one is the outermost.
func Chain(store ports.DocumentStore, mws ...Middleware) ports.DocumentStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
