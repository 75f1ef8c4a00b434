package domain

import "errors"

// ErrMalformedDocument is returned when a document lacks a "nodes" array or is not well-formed.
var ErrMalformedDocument = errors.New("malformed document")

// ErrParseFailure is returned when a free-form JSON field cannot be parsed.
var ErrParseFailure = errors.New("parse failure")

// ErrMissingRequiredField is returned when a node is saved without an id.
var ErrMissingRequiredField = errors.New("missing required field")

// ErrDuplicateID is returned when creating a node whose id is already taken.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrImmutableID is returned when an edit tries to change the id of an existing node.
var ErrImmutableID = errors.New("node id cannot be changed")

// ErrNodeNotFound is returned when an id does not address any node.
var ErrNodeNotFound = errors.New("node not found")

// ErrDocumentNotFound is returned when a named document cannot be found in a store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrExpansionLimit is returned when expanding a document would produce more
// tree branches than the caller allows.
var ErrExpansionLimit = errors.New("document expansion exceeds limit")
