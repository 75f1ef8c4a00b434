/*
Package workspace serializes edits of stored flow documents.

Servers keep documents in a ports.DocumentStore between requests. Manager loads a
document into a flowedit.Editor, runs the caller's edit and saves the result, all
while holding a per-document lock. An optional distributed locker extends that
lock across replicas.
*/
package workspace
