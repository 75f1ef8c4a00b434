// Package form maps flow nodes to editor forms and back.
//
// The fields shown for a node come from a static schema keyed by the kind
// currently selected in the editor, not the kind the node was saved with.
// Switching kind therefore starts from a blank config.
//
// Structured fields (API headers and body) are parsed as JSON on save. A parse
// failure is not fatal there: the raw text is kept and the FieldResult reports
// OutcomeRaw. Kinds without a schema expose one raw JSON field instead, and a
// parse failure in that field blocks the save with domain.ErrParseFailure.
package form
