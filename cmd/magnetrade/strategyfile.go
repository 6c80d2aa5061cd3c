package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// readStrategy loads a strategy from path, or from stdin when path is "-".
// It accepts the stored document shape (orderedWorkflow as a string), the
// strategy shape, or a bare {nodes, edges} graph.
func readStrategy(path string, stdin io.Reader) (*domain.Strategy, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read strategy: %w", err)
	}
	return parseStrategy(data)
}

func parseStrategy(data []byte) (*domain.Strategy, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse strategy: %w", err)
	}

	switch {
	case has(probe, "orderedWorkflow"):
		var doc domain.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse strategy document: %w", err)
		}
		return domain.FromDocument(doc)
	case has(probe, "strategy"):
		var s domain.Strategy
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to parse strategy: %w", err)
		}
		if s.Frequency == "" {
			s.Frequency = domain.FrequencyNow
		}
		return &s, nil
	case has(probe, "nodes"):
		var g domain.Graph
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, fmt.Errorf("failed to parse graph: %w", err)
		}
		return &domain.Strategy{Graph: g, Frequency: domain.FrequencyNow}, nil
	}
	return nil, fmt.Errorf("unrecognized strategy file: expected nodes, strategy or orderedWorkflow")
}

func has(m map[string]json.RawMessage, key string) bool {
	_, ok := m[key]
	return ok
}
