/*
Package flowedit is the editing core behind flow documents.

A flow document is a JSON (or YAML) object holding global environment variables
and an ordered list of typed nodes. Nodes point to each other through a next
pointer or, for conditional nodes, through TRUE and FALSE targets. The first node
in the list is where the flow starts.

# Concept

The Editor owns one document at a time. It projects the graph into a tree for
display, analyzes it for unreachable nodes, dangling references and loops, and
round-trips node edits through forms without losing unknown fields.
Nothing is executed: conditions and prompts are stored as written.

	ed := flowedit.New(flowedit.WithLogger(logger))
	if err := ed.Import(ctx, file, document.FormatJSON); err != nil {
		log.Fatal(err)
	}

	proj := ed.Tree(ctx)
	_ = tree.Text(os.Stdout, proj, tree.Style{})

	f := ed.NewNode(domain.KindOutput)
	d := f.Draft()
	d.ID = "bye"
	d.Values["message"] = "See you"
	if _, err := ed.SaveNode(ctx, d); errors.Is(err, domain.ErrDuplicateID) {
		// pick another id
	}

# Adapters

The cmd/flowedit binary exposes the same operations as a CLI, an HTTP API
(pkg/adapters/http) and an MCP server (pkg/adapters/mcp). Documents shared by
those servers are kept in a ports.DocumentStore and edited through
workspace.Manager, which serializes edits per document.
*/
package flowedit
