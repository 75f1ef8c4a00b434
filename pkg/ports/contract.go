package ports

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractDocument = `{
    "environments": {"user": "", "retries": 3},
    "nodes": [
        {"id": "ask", "type": "input", "action_config": {"variable": "user"}, "next": "check", "pre_update": {"user": null}},
        {"id": "check", "type": "if-else", "action_config": {"condition": "user", "true_node": "done", "false_node": "ghost"}},
        {"id": "done", "type": "webhook", "action_config": {"hook": {"url": "https://x"}}}
    ]
}`

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore
// implementation adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	name := "contract-" + time.Now().Format("20060102150405")

	sample, err := document.Decode([]byte(contractDocument), document.FormatJSON)
	require.NoError(t, err)

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")

		want, err := document.Marshal(sample, document.FormatJSON)
		require.NoError(t, err)
		got, err := document.Marshal(loaded, document.FormatJSON)
		require.NoError(t, err)
		assert.JSONEq(t, string(want), string(got))

		require.Len(t, loaded.Nodes, 3)
		assert.Equal(t, "ask", loaded.Nodes[0].ID)
		assert.Contains(t, loaded.Nodes[0].PreUpdate, "user")
	})

	t.Run("Isolation", func(t *testing.T) {
		doc := sample.Clone()
		require.NoError(t, store.Save(ctx, name, doc))
		doc.Environments["user"] = "mutated"
		doc.Nodes[0].ID = "mutated"

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "", loaded.Environments["user"])
		assert.Equal(t, "ask", loaded.Nodes[0].ID)

		loaded.Nodes[0].ID = "changed"
		again, err := store.Load(ctx, name)
		require.NoError(t, err)
		assert.Equal(t, "ask", again.Nodes[0].ID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		small := document.Document{Nodes: []domain.Node{domain.NewNode("only", domain.KindFixed)}}
		require.NoError(t, store.Save(ctx, name, small))
		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		require.Len(t, loaded.Nodes, 1)
		assert.Equal(t, "only", loaded.Nodes[0].ID)
		assert.NotNil(t, loaded.Environments)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, sample))
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")

		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound, "Load after Delete should return ErrDocumentNotFound")
		assert.NoError(t, store.Delete(ctx, name), "Deleting twice should not fail")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-b"
		id2 := name + "-a"
		require.NoError(t, store.Save(ctx, id1, sample))
		require.NoError(t, store.Save(ctx, id2, sample))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		names, err := store.List(ctx)
		require.NoError(t, err)
		var ours []string
		for _, n := range names {
			if strings.HasPrefix(n, name) {
				ours = append(ours, n)
			}
		}
		assert.Equal(t, []string{id2, id1}, ours)
	})
}
