/*
Package ports defines the driven ports (interfaces) of flowedit.

These interfaces decouple the editing core from the storage that keeps documents
between requests, so the HTTP and MCP servers can run on memory, files, an
embedded database or Redis.

# Key Interfaces

  - DocumentStore: persists and loads whole documents by name.
  - DistributedLocker: serializes edits of one document across replicas.

RunDocumentStoreContract checks an implementation against the expected behavior.
*/
package ports
