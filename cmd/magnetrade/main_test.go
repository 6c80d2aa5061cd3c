package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/internal/config"
	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/adapters/memory"
	"github.com/aretw0/magnetrade/pkg/adapters/sqlite"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentFile = "testdata/document.json"

func TestParseStrategy_Shapes(t *testing.T) {
	t.Run("Document", func(t *testing.T) {
		s, err := readStrategy(documentFile, nil)
		require.NoError(t, err)
		assert.Equal(t, "alice", s.Owner)
		assert.Equal(t, domain.FrequencyDay, s.Frequency)
		require.Len(t, s.Graph.Nodes, 2)
		assert.Equal(t, domain.KindCondition, s.Graph.Nodes[0].Kind)
	})

	t.Run("Strategy", func(t *testing.T) {
		s, err := parseStrategy([]byte(`{"uid":"bob","strategy":{"nodes":[],"edges":[]}}`))
		require.NoError(t, err)
		assert.Equal(t, "bob", s.Owner)
		assert.Equal(t, domain.FrequencyNow, s.Frequency)
	})

	t.Run("Bare Graph From Stdin", func(t *testing.T) {
		in := strings.NewReader(`{"nodes":[{"id":"1","kind":"action","position":{"x":0,"y":0},"summary":""}],"edges":[]}`)
		s, err := readStrategy("-", in)
		require.NoError(t, err)
		require.Len(t, s.Graph.Nodes, 1)
		assert.Equal(t, domain.KindAction, s.Graph.Nodes[0].Kind)
	})

	t.Run("Unrecognized", func(t *testing.T) {
		_, err := parseStrategy([]byte(`{"foo":1}`))
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := readStrategy("testdata/missing.json", nil)
		assert.Error(t, err)
	})
}

func TestRunCompile(t *testing.T) {
	studio := magnetrade.New()

	t.Run("Document", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runCompile(&out, nil, studio, documentFile, false))

		var doc domain.Document
		require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
		assert.Equal(t, `[["Current Stock Price MSFT < Constant 400","Buy MSFT 3"]]`, doc.OrderedWorkflow)
		assert.Equal(t, "Current Stock Price MSFT < Constant 400", doc.Strategy.Nodes[0].Summary)
		assert.Equal(t, "alice", doc.UID)
	})

	t.Run("Commands Only", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, runCompile(&out, nil, studio, documentFile, true))
		assert.Equal(t, "Current Stock Price MSFT < Constant 400 -> Buy MSFT 3\n", out.String())
	})

	t.Run("Cycle", func(t *testing.T) {
		var out bytes.Buffer
		err := runCompile(&out, nil, studio, "testdata/cycle.json", false)
		assert.ErrorIs(t, err, domain.ErrCycleDetected)
	})
}

func TestRunValidate(t *testing.T) {
	studio := magnetrade.New()

	var out bytes.Buffer
	require.NoError(t, runValidate(&out, nil, studio, documentFile))
	assert.Contains(t, out.String(), "Strategy is valid!")

	out.Reset()
	err := runValidate(&out, nil, studio, "testdata/cycle.json")
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out.String(), "[error]")
}

func TestRunGraph(t *testing.T) {
	studio := magnetrade.New()

	var out bytes.Buffer
	require.NoError(t, runGraph(&out, nil, studio, documentFile))
	assert.True(t, strings.HasPrefix(out.String(), "graph TD"))
	assert.Contains(t, out.String(), "n1 --> n2")

	// Cyclic graphs still render.
	out.Reset()
	require.NoError(t, runGraph(&out, nil, studio, "testdata/cycle.json"))
	assert.Contains(t, out.String(), "n2 --> n1")
}

func TestRunShow_Plain(t *testing.T) {
	studio := magnetrade.New()

	var out bytes.Buffer
	require.NoError(t, runShow(&out, nil, studio, documentFile, true))
	assert.Contains(t, out.String(), "Current Stock Price MSFT < Constant 400")
	assert.Contains(t, out.String(), "Buy MSFT 3")
}

func TestRunSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSchema(&out, schema.Default(), "yaml"))
	parsed, err := schema.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, schema.Default().Kinds(), parsed.Kinds())

	out.Reset()
	require.NoError(t, runSchema(&out, schema.Default(), "json"))
	assert.True(t, json.Valid(out.Bytes()))

	assert.Error(t, runSchema(&out, schema.Default(), "toml"))
}

func TestOpenStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		store, locker, closer, err := openStore(config.StoreConfig{Driver: config.DriverMemory})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &memory.Store{}, store)
		assert.Nil(t, locker)
	})

	t.Run("SQLite Creates Directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "strategies.db")
		store, _, closer, err := openStore(config.StoreConfig{Driver: config.DriverSQLite, Path: path})
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &sqlite.Store{}, store)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, _, _, err := openStore(config.StoreConfig{Driver: "mongo"})
		assert.Error(t, err)
	})
}

func TestOffline(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverRedis},
		Exec:  config.ExecConfig{URL: "http://exec"},
	}
	off := offline(cfg)
	assert.Equal(t, config.DriverMemory, off.Store.Driver)
	assert.Empty(t, off.Exec.URL)
	assert.Equal(t, config.DriverRedis, cfg.Store.Driver, "original config is untouched")

	studio, closer, err := newStudio(off, logging.NewNop(), nil)
	require.NoError(t, err)
	defer closer.Close()
	assert.NotNil(t, studio.Catalog())
}
