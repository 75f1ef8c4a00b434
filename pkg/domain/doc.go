/*
Package domain contains the core model of a flow document.

It is kept free of I/O and persistence. The editor, the analyzer and the
adapters all speak in these types.

# Key Entities

  - Node: one step of the flow, addressed by a string ID.
  - Kind: the closed set of step kinds (fixed, input, output, api, if-else, llm).
  - Config: the kind-specific action payload, one variant per kind.
  - Transition: a directed, optionally labeled edge derived by Resolve.
*/
package domain
