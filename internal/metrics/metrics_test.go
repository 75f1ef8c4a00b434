package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/flowedit/internal/metrics"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnDocumentLoad(ctx, &domain.DocumentEvent{Nodes: 2})
	hooks.OnDocumentLoad(ctx, &domain.DocumentEvent{Err: errors.New("bad")})
	hooks.OnNodeSave(ctx, &domain.NodeEvent{NodeID: "a", NodeKind: domain.KindAPI, Created: true})
	hooks.OnNodeSave(ctx, &domain.NodeEvent{NodeID: "a", NodeKind: domain.KindAPI})
	hooks.OnEnvironmentsSave(ctx, &domain.EnvironmentsEvent{Count: 1})
	hooks.OnProject(ctx, &domain.ProjectEvent{Duration: time.Millisecond})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsImported))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ImportFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesSaved.WithLabelValues("api", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NodesSaved.WithLabelValues("api", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnvironmentSaves))

	count, err := testutil.GatherAndCount(reg, "flowedit_projection_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
