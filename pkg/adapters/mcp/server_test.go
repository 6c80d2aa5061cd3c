package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphJSON = `{
  "nodes": [
    {"id": "1", "kind": "condition", "menus": {"Operation 1": "Volume"},
     "menuSelections": {"Operation 1": {"Asset:": "GOOGL", "Look-back Period:": "5", "Aggregation:": "Hours"}}},
    {"id": "2", "kind": "action", "menus": {"Actions": "Sell"},
     "menuSelections": {"Actions": {"Asset:": "GOOGL", "Quantity:": "2"}}}
  ],
  "edges": [{"id": "e1-2", "source": "1", "target": "2"}]
}`

func TestServer_Compile(t *testing.T) {
	s := NewServer(magnetrade.New(), "test", nil)

	result, err := s.handleCompile(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"graph": graphJSON})
	require.NoError(t, err)
	assert.Equal(t, "Volume GOOGL 5 Hours", result.Nodes[0].Summary)
	assert.Equal(t, [][]string{{"Volume GOOGL 5 Hours", "Sell GOOGL 2"}}, result.Workflow)
	assert.Contains(t, result.Mermaid, "n1 --> n2")

	_, err = s.handleCompile(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"graph": "nope"})
	assert.Error(t, err)
}

func TestServer_Strategies(t *testing.T) {
	studio := magnetrade.New()
	ctx := context.Background()
	saved, err := studio.Save(ctx, &domain.Strategy{Owner: "carol", Name: "empty"})
	require.NoError(t, err)

	s := NewServer(studio, "test", nil)

	got, err := s.handleGetStrategy(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": saved.ID})
	require.NoError(t, err)
	assert.Equal(t, "empty", got.Name)

	_, err = s.handleGetStrategy(ctx, mcp.CallToolRequest{}, map[string]interface{}{"id": "missing"})
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)

	list, err := s.handleListStrategies(ctx, mcp.CallToolRequest{}, map[string]interface{}{"owner": "carol"})
	require.NoError(t, err)
	require.Len(t, list.Strategies, 1)
	assert.Equal(t, saved.ID, list.Strategies[0].ID)
}
