package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/pkg/adapters/execsvc"
	server "github.com/aretw0/magnetrade/pkg/adapters/http"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	results compiler.Results
	err     error
}

func (f *fakeExec) Evaluate(ctx context.Context, w compiler.Workflow) (compiler.Results, error) {
	return f.results, f.err
}

func (f *fakeExec) Balance(ctx context.Context) (*domain.Balance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Balance{Cash: 10, Equity: 20, OpenOrders: []string{}, ClosedOrders: []string{"Sell MSFT 1"}}, nil
}

const canvas = `{
  "nodes": [
    {"id": "1", "kind": "Condition Block", "position": {"x": 250, "y": 0},
     "menus": {"Operation 1": "Current Stock Price", "condition": "operator", "Operation 2": "Constant"},
     "menuSelections": {
       "Operation 1": {"Asset:": "AAPL"},
       "condition": {"Choose Operator:": ">"},
       "Operation 2": {"Value:": 180}
     }},
    {"id": "2", "kind": "Action Block", "position": {"x": 100, "y": 100},
     "menus": {"Actions": "Buy"},
     "menuSelections": {"Actions": {"Asset:": "AAPL", "Quantity:": "10"}}}
  ],
  "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
}`

const summary = "Current Stock Price AAPL > Constant 180"

func newServer(t *testing.T, exec *fakeExec) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	opts := []magnetrade.Option{magnetrade.WithMetrics(metrics)}
	if exec != nil {
		opts = append(opts, magnetrade.WithExecutionService(exec))
	}
	studio := magnetrade.New(opts...)
	return server.NewHandler(studio, server.WithMetrics(metrics, reg), server.WithVersion("test")), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func saveCanvas(t *testing.T, h http.Handler) *domain.Strategy {
	t.Helper()
	body := `{"uid": "alice", "name": "breakout", "frequency": "1hour", "strategy": ` + canvas + `}`
	rr := do(t, h, http.MethodPost, "/strategies", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var saved domain.Strategy
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &saved))
	return &saved
}

func TestHealth(t *testing.T) {
	h, _ := newServer(t, nil)
	rr := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["version"])
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetSchema(t *testing.T) {
	h, _ := newServer(t, nil)
	rr := do(t, h, http.MethodGet, "/schema", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Operation 1"`)
	assert.Contains(t, rr.Body.String(), `"Choose Operator:"`)
}

func TestCompile(t *testing.T) {
	h, _ := newServer(t, nil)
	rr := do(t, h, http.MethodPost, "/compile", canvas)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp server.CompileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, summary, resp.Nodes[0].Summary)
	assert.Equal(t, "Buy AAPL 10", resp.Nodes[1].Summary)
	assert.Equal(t, compiler.Workflow{{summary, "Buy AAPL 10"}}, resp.Workflow)
}

func TestCompile_BadRequests(t *testing.T) {
	h, _ := newServer(t, nil)

	rr := do(t, h, http.MethodPost, "/compile", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	cyclic := `{"nodes": [{"id": "0", "kind": "condition"}, {"id": "1", "kind": "condition"}, {"id": "2", "kind": "condition"}],
	  "edges": [{"source": "0", "target": "1"}, {"source": "1", "target": "2"}, {"source": "2", "target": "1"}]}`
	rr = do(t, h, http.MethodPost, "/compile", cyclic)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "cycle detected")
}

func TestStrategyLifecycle(t *testing.T) {
	h, _ := newServer(t, nil)
	saved := saveCanvas(t, h)

	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "alice", saved.Owner)
	assert.Equal(t, domain.FrequencyHour, saved.Frequency)
	assert.Equal(t, [][]string{{summary, "Buy AAPL 10"}}, saved.Workflow)

	rr := do(t, h, http.MethodGet, "/strategies?owner=alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []domain.Strategy
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, saved.Workflow, list[0].Workflow)

	rr = do(t, h, http.MethodGet, "/strategies/"+saved.ID, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/strategies/"+saved.ID+"/graph", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "graph TD\n"))
	assert.Contains(t, rr.Body.String(), "n1 --> n2")

	rr = do(t, h, http.MethodDelete, "/strategies/"+saved.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, h, http.MethodGet, "/strategies/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSaveStrategy_Validation(t *testing.T) {
	h, _ := newServer(t, nil)

	rr := do(t, h, http.MethodPost, "/strategies", `{"strategy": {"nodes": [], "edges": []}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/strategies", `{"uid": "a", "frequency": "weekly", "strategy": {}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/strategies", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestEvaluateStrategy(t *testing.T) {
	exec := &fakeExec{results: compiler.Results{
		summary: {LHS: "190.2", RHS: "180", Result: "true"},
	}}
	h, _ := newServer(t, exec)
	saved := saveCanvas(t, h)

	rr := do(t, h, http.MethodPost, "/strategies/"+saved.ID+"/evaluate", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp server.EvaluateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, []string{"1"}, resp.Bound)
	assert.Empty(t, resp.Missed)
	require.NotNil(t, resp.Strategy.Graph.Nodes[0].Result)
	assert.Equal(t, ">", resp.Strategy.Graph.Nodes[0].Result.Operator)

	rr = do(t, h, http.MethodPost, "/strategies/missing/evaluate", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEvaluateStrategy_UpstreamErrors(t *testing.T) {
	exec := &fakeExec{err: &execsvc.StatusError{Endpoint: "/commands", StatusCode: 500}}
	h, _ := newServer(t, exec)
	saved := saveCanvas(t, h)

	rr := do(t, h, http.MethodPost, "/strategies/"+saved.ID+"/evaluate", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	exec.err = errors.New("boom")
	rr = do(t, h, http.MethodPost, "/balance", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	noExec, _ := newServer(t, nil)
	rr = do(t, noExec, http.MethodPost, "/balance", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestBalance(t *testing.T) {
	h, _ := newServer(t, &fakeExec{})
	rr := do(t, h, http.MethodPost, "/balance", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var b domain.Balance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))
	assert.Equal(t, 10.0, b.Cash)
	assert.Equal(t, []string{"Sell MSFT 1"}, b.ClosedOrders)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newServer(t, nil)
	do(t, h, http.MethodGet, "/schema", "")

	rr := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `magnetrade_http_requests_total{code="200",method="GET",route="/schema"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newServer(t, nil)
	rr := do(t, h, http.MethodOptions, "/strategies", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}
