package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/flowedit/pkg/adapters/redis"
	"github.com/aretw0/flowedit/pkg/document"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() document.Document {
	return document.Document{
		Environments: map[string]any{"foo": "bar"},
		Nodes:        []domain.Node{domain.NewNode("node1", domain.KindFixed)},
	}
}

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	ports.RunDocumentStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	name := "doc-ttl"

	require.NoError(t, store.Save(ctx, name, sampleDocument()))

	names, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, names, name)

	// Key expiration is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, name)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	// Index pruning compares against the wall clock.
	time.Sleep(1200 * time.Millisecond)

	names, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, names)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-doc", sampleDocument()))

	assert.True(t, mr.Exists("custom:app:my-doc"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	raw, err := mr.Get("custom:app:my-doc")
	require.NoError(t, err)
	assert.Contains(t, raw, `"environments"`)

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"my-doc"}, list)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{"))

	_, err = store.Load(context.Background(), "broken")
	assert.ErrorIs(t, err, domain.ErrMalformedDocument)
}
