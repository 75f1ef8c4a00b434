package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"

	"github.com/aretw0/flowedit/pkg/adapters/memory"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/persistence/middleware"
	"github.com/aretw0/flowedit/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sealedStore(t *testing.T, cfg middleware.EncryptionConfig, next ports.DocumentStore) ports.DocumentStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func sample() document.Document {
	return document.Document{
		Environments: map[string]any{"api_key": "s3cr3t"},
		Nodes: []domain.Node{
			{ID: "done", Kind: domain.KindOutput, Config: &domain.OutputConfig{Message: "bye"}},
		},
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := sealedStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore())
	ports.RunDocumentStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := sealedStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)

	require.NoError(t, store.Save(ctx, "demo", sample()))

	raw, err := underlying.Load(ctx, "demo")
	require.NoError(t, err)
	assert.NotContains(t, raw.Environments, "api_key")
	assert.Contains(t, raw.Environments, "__encrypted__")
	require.Len(t, raw.Nodes, 1)
	assert.Equal(t, "done", raw.Nodes[0].ID)

	loaded, err := store.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", loaded.Environments["api_key"])
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, sealedStore(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying).Save(ctx, "demo", sample()))

	_, err := sealedStore(t, middleware.EncryptionConfig{ActiveKey: newKey}, underlying).Load(ctx, "demo")
	assert.Error(t, err)

	rotated := sealedStore(t, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}}, underlying)
	loaded, err := rotated.Load(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", loaded.Environments["api_key"])
}

func TestEncryptionMiddleware_RejectsPlainDocuments(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "plain", sample()))

	_, err := sealedStore(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying).Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing its encrypted environments")
}

func TestNewEncryptionMiddleware_KeySize(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.Error(t, err)
}

func TestParseKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(generateKey(t))
	old := base64.StdEncoding.EncodeToString(generateKey(t))

	cfg, err := middleware.ParseKeys(active, old)
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, middleware.KeySize)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.Error(t, err)

	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorContains(t, err, "32 bytes")

	_, err = middleware.ParseKeys(active, "###")
	assert.ErrorContains(t, err, "fallback key 0")
}
