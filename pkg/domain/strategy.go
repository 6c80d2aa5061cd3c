package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Frequency is how often the execution service should run a strategy.
type Frequency string

const (
	FrequencyNow    Frequency = "now"
	FrequencyMinute Frequency = "1min"
	FrequencyHour   Frequency = "1hour"
	FrequencyDay    Frequency = "1day"
)

// ParseFrequency validates a frequency string. Empty defaults to FrequencyNow.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case "":
		return FrequencyNow, nil
	case FrequencyNow, FrequencyMinute, FrequencyHour, FrequencyDay:
		return Frequency(s), nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// Strategy is the persisted unit: one user's graph plus its compiled workflow.
// It is created on first save and replaced wholesale on every later save.
type Strategy struct {
	ID        string     `json:"id"`
	Owner     string     `json:"uid"`
	Name      string     `json:"name,omitempty"`
	Graph     Graph      `json:"strategy"`
	Workflow  [][]string `json:"workflow"`
	Frequency Frequency  `json:"frequency"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the strategy.
func (s *Strategy) Clone() *Strategy {
	out := *s
	out.Graph = s.Graph.Clone()
	if s.Workflow != nil {
		out.Workflow = make([][]string, len(s.Workflow))
		for i, w := range s.Workflow {
			out.Workflow[i] = append([]string(nil), w...)
		}
	}
	return &out
}

// SortByCreation orders strategies oldest first, breaking ties by ID.
func SortByCreation(list []*Strategy) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// Document is the document-store record of a strategy.
// OrderedWorkflow holds the JSON encoding of the compiled workflow list.
type Document struct {
	ID              string    `json:"id,omitempty"`
	UID             string    `json:"uid"`
	Name            string    `json:"name,omitempty"`
	Strategy        Graph     `json:"strategy"`
	OrderedWorkflow string    `json:"orderedWorkflow"`
	Frequency       Frequency `json:"frequency"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// ToDocument converts the strategy to its stored form.
func (s *Strategy) ToDocument() (Document, error) {
	encoded, err := EncodeWorkflow(s.Workflow)
	if err != nil {
		return Document{}, err
	}
	return Document{
		ID:              s.ID,
		UID:             s.Owner,
		Name:            s.Name,
		Strategy:        s.Graph,
		OrderedWorkflow: encoded,
		Frequency:       s.Frequency,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}, nil
}

// EncodeWorkflow renders a workflow list as the orderedWorkflow JSON string.
// Unlike json.Marshal it leaves <, > and & unescaped, so commands read the same
// on the wire as in a summary.
func EncodeWorkflow(workflow [][]string) (string, error) {
	if workflow == nil {
		workflow = [][]string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(workflow); err != nil {
		return "", fmt.Errorf("failed to encode workflow: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// FromDocument rebuilds a strategy from its stored form.
func FromDocument(doc Document) (*Strategy, error) {
	s := &Strategy{
		ID:        doc.ID,
		Owner:     doc.UID,
		Name:      doc.Name,
		Graph:     doc.Strategy,
		Frequency: doc.Frequency,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	if s.Frequency == "" {
		s.Frequency = FrequencyNow
	}
	if doc.OrderedWorkflow != "" {
		if err := json.Unmarshal([]byte(doc.OrderedWorkflow), &s.Workflow); err != nil {
			return nil, fmt.Errorf("failed to decode orderedWorkflow: %w", err)
		}
	}
	return s, nil
}

// Balance is the account state reported by the execution service.
type Balance struct {
	Cash         float64  `json:"cash"`
	Equity       float64  `json:"equity"`
	OpenOrders   []string `json:"open_orders"`
	ClosedOrders []string `json:"closed_orders"`
}
