package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/flowedit/pkg/adapters/memory"
	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/aretw0/flowedit/pkg/form"
	"github.com/aretw0/flowedit/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFlow = `{"environments":{"api_key":"k"},"nodes":[` +
	`{"id":"start","type":"output","action_config":{"message":"hi"},"next":"check"},` +
	`{"id":"check","type":"if-else","action_config":{"condition":"x > 1","true_node":"end","false_node":"gone"}},` +
	`{"id":"end","type":"fixed","action_config":{}}]}`

func newTestServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	h := NewHandler(workspace.NewManager(memory.NewStore()), opts...)
	rec := do(t, h, http.MethodPut, "/documents/demo", sampleFlow)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return h
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	h := NewHandler(workspace.NewManager(memory.NewStore()))
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestImportAndList(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"documents":["demo"]}`, rec.Body.String())
}

func TestImport_Malformed(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/documents/demo", `{"environments":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The previous document survives.
	rec = do(t, h, http.MethodGet, "/documents/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"start"`)
}

func TestImport_YAML(t *testing.T) {
	h := NewHandler(workspace.NewManager(memory.NewStore()))
	src := "nodes:\n  - id: a\n    type: output\n    action_config:\n      message: hello\n"
	rec := do(t, h, http.MethodPut, "/documents/y?format=yaml", src)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	decode(t, rec, &resp)
	assert.Equal(t, "a", resp["start"])
	assert.Equal(t, float64(1), resp["nodes"])
}

func TestExport(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="flow.json"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "{\n    \"environments\""))

	rec = do(t, h, http.MethodGet, "/documents/demo?filename=demo.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="demo.yaml"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "nodes:")
}

func TestMissingDocument(t *testing.T) {
	h := NewHandler(workspace.NewManager(memory.NewStore()))
	for _, target := range []string{"/documents/nope", "/documents/nope/tree", "/documents/nope/analysis"} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestTreeAndAnalysis(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents/demo/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p struct {
		Main struct {
			ID       string `json:"id"`
			Children []struct {
				ID       string `json:"id"`
				Children []struct {
					ID     string `json:"id"`
					Label  string `json:"label"`
					Status string `json:"status"`
				} `json:"children"`
			} `json:"children"`
		} `json:"main"`
	}
	decode(t, rec, &p)
	assert.Equal(t, "start", p.Main.ID)
	require.Len(t, p.Main.Children, 1)
	branches := p.Main.Children[0].Children
	require.Len(t, branches, 2)
	assert.Equal(t, "TRUE", branches[0].Label)
	assert.Equal(t, "gone", branches[1].ID)
	assert.Equal(t, "missing", branches[1].Status)

	rec = do(t, h, http.MethodGet, "/documents/demo/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var a struct {
		Clean  bool `json:"clean"`
		Report struct {
			Dangling []struct {
				To string `json:"to"`
			} `json:"dangling"`
		} `json:"report"`
	}
	decode(t, rec, &a)
	assert.False(t, a.Clean)
	require.Len(t, a.Report.Dangling, 1)
	assert.Equal(t, "gone", a.Report.Dangling[0].To)
}

func TestGraph(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents/demo/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "graph TD")

	rec = do(t, h, http.MethodGet, "/documents/demo/graph?format=dot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "digraph")

	rec = do(t, h, http.MethodGet, "/documents/demo/graph?format=png", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForms(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents/demo/nodes/start/form", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var f form.Form
	decode(t, rec, &f)
	assert.Equal(t, form.ModeEdit, f.Mode)
	assert.Equal(t, domain.KindOutput, f.Kind)
	assert.Equal(t, "check", f.Next)

	rec = do(t, h, http.MethodGet, "/documents/demo/nodes/start/form?kind=api", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &f)
	assert.Equal(t, domain.KindAPI, f.Kind)

	rec = do(t, h, http.MethodGet, "/documents/demo/nodes/ghost/form", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/documents/demo/form", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &f)
	assert.Equal(t, form.ModeCreate, f.Mode)
	assert.Equal(t, domain.KindFixed, f.Kind)
}

func TestCreateAndUpdateNode(t *testing.T) {
	h := newTestServer(t)

	create := `{"id":"greet","kind":"output","values":{"message":"hello"},"next":"end"}`
	rec := do(t, h, http.MethodPost, "/documents/demo/nodes", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res form.Result
	decode(t, rec, &res)
	assert.True(t, res.Created)
	assert.Equal(t, "greet", res.Node.ID)

	rec = do(t, h, http.MethodPost, "/documents/demo/nodes", create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/documents/demo/nodes", `{"kind":"output"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/documents/demo/nodes/greet", `{"kind":"output","values":{"message":"bye"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &res)
	assert.False(t, res.Created)

	rec = do(t, h, http.MethodPut, "/documents/demo/nodes/greet", `{"id":"renamed","kind":"output"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/documents/demo/nodes/ghost", `{"kind":"fixed"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/documents/demo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"bye"`)
}

func TestCreateNode_ParseFailure(t *testing.T) {
	h := newTestServer(t)

	body := `{"id":"raw","kind":"fixed","values":{"action_config":"{not json"}}`
	rec := do(t, h, http.MethodPost, "/documents/demo/nodes", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var e errorBody
	decode(t, rec, &e)
	assert.NotEmpty(t, e.Fields)

	rec = do(t, h, http.MethodGet, "/documents/demo/nodes/raw/form", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnvironments(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/documents/demo/environments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env environmentsBody
	decode(t, rec, &env)
	assert.Equal(t, map[string]any{"api_key": "k"}, env.Environments)

	body, err := json.Marshal(environmentsBody{Rows: []form.VarRow{{Key: "a", Value: "1"}, {Key: "", Value: "x"}}})
	require.NoError(t, err)
	rec = do(t, h, http.MethodPut, "/documents/demo/environments", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	var saved environmentsBody
	decode(t, rec, &saved)
	assert.Equal(t, map[string]any{"a": "1"}, saved.Environments)
}

func TestEnvironments_PutObject(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPut, "/documents/demo/environments", `{"environments":{"api_key":"k2","b":"2"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var saved environmentsBody
	decode(t, rec, &saved)
	assert.Equal(t, map[string]any{"api_key": "k2", "b": "2"}, saved.Environments)

	rec = do(t, h, http.MethodPut, "/documents/demo/environments", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/documents/demo/environments", "")
	var current environmentsBody
	decode(t, rec, &current)
	assert.Equal(t, map[string]any{"api_key": "k2", "b": "2"}, current.Environments, "a rejected body changes nothing")

	rec = do(t, h, http.MethodPut, "/documents/demo/environments", `{"rows":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var cleared environmentsBody
	decode(t, rec, &cleared)
	assert.Empty(t, cleared.Environments)
}

func TestDeleteDocument(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodDelete, "/documents/demo", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/documents/demo", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteLimit(t *testing.T) {
	h := NewHandler(workspace.NewManager(memory.NewStore()), WithWriteLimit(0.001, 1))

	rec := do(t, h, http.MethodPut, "/documents/a", sampleFlow)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/documents/a", sampleFlow)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Reads are never throttled.
	rec = do(t, h, http.MethodGet, "/documents/a/tree", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsHandler(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("flowedit_documents_imported_total 1\n"))
	})
	h := NewHandler(workspace.NewManager(memory.NewStore()), WithMetricsHandler(metrics))

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flowedit_documents_imported_total")
}

func TestCORS(t *testing.T) {
	h := NewHandler(workspace.NewManager(memory.NewStore()))
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestExpansionLimit(t *testing.T) {
	// start, check, end and the missing "gone" make four branches.
	h := newTestServer(t, WithExpansionLimit(4))
	rec := do(t, h, http.MethodGet, "/documents/demo/tree", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h = newTestServer(t, WithExpansionLimit(3))
	for _, target := range []string{"/documents/demo/tree", "/documents/demo/analysis", "/documents/demo/graph"} {
		rec := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
	}

	rec = do(t, h, http.MethodPut, "/documents/demo", sampleFlow)
	require.Equal(t, http.StatusOK, rec.Code, "imports are never expanded")
	var summary map[string]any
	decode(t, rec, &summary)
	assert.Equal(t, false, summary["clean"])

	h = newTestServer(t, WithExpansionLimit(0))
	rec = do(t, h, http.MethodGet, "/documents/demo/analysis", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusFor(t *testing.T) {
	agg := &form.AggregateError{Errors: []error{&form.FieldError{Key: "headers", Reason: "bad", Err: domain.ErrParseFailure}}}
	assert.Equal(t, http.StatusBadRequest, StatusFor(agg))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(bytes.ErrTooLarge))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(domain.ErrExpansionLimit))
}
