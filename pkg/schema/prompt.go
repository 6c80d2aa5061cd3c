package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// PromptKind is the wire name of a prompt kind.
type PromptKind string

const (
	KindSelect      PromptKind = "select"
	KindInput       PromptKind = "input"
	KindMultiSelect PromptKind = "selectMultiple"
)

// InputNumber is the value-type tag of numeric inputs.
const InputNumber = "number"

// Prompt is a single configurable parameter within a sub-menu.
type Prompt interface {
	// Label identifies the prompt; unique within its sub-menu.
	Label() string
	// Kind returns the wire kind.
	Kind() PromptKind
	// Validate checks a value against the prompt's constraints.
	// Shape mismatches wrap ErrValueShape; constraint misses are *ValidationError.
	Validate(v domain.Value) error
}

// Select picks one value out of Options.
type Select struct {
	label   string
	Options []string
}

// NewSelect creates a single-choice prompt.
func NewSelect(label string, options ...string) *Select {
	return &Select{label: label, Options: options}
}

func (p *Select) Label() string    { return p.label }
func (p *Select) Kind() PromptKind { return KindSelect }

func (p *Select) Validate(v domain.Value) error {
	if v.IsMulti() {
		return fmt.Errorf("prompt %q: %w", p.label, ErrValueShape)
	}
	if !slices.Contains(p.Options, v.String()) {
		return &ValidationError{Path: p.label, Reason: "not one of " + strings.Join(p.Options, ", "), Value: v.String()}
	}
	return nil
}

// NumericInput accepts a free numeric value. Ranges are not enforced.
type NumericInput struct {
	label string
}

// NewNumericInput creates a numeric input prompt.
func NewNumericInput(label string) *NumericInput {
	return &NumericInput{label: label}
}

func (p *NumericInput) Label() string    { return p.label }
func (p *NumericInput) Kind() PromptKind { return KindInput }

func (p *NumericInput) Validate(v domain.Value) error {
	if v.IsMulti() {
		return fmt.Errorf("prompt %q: %w", p.label, ErrValueShape)
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64); err != nil {
		return &ValidationError{Path: p.label, Reason: "expected number", Value: v.String()}
	}
	return nil
}

// TextInput accepts any single value.
type TextInput struct {
	label     string
	InputType string
}

// NewTextInput creates a free text prompt. inputType is kept for display only.
func NewTextInput(label, inputType string) *TextInput {
	return &TextInput{label: label, InputType: inputType}
}

func (p *TextInput) Label() string    { return p.label }
func (p *TextInput) Kind() PromptKind { return KindInput }

func (p *TextInput) Validate(v domain.Value) error {
	if v.IsMulti() {
		return fmt.Errorf("prompt %q: %w", p.label, ErrValueShape)
	}
	return nil
}

// MultiSelect picks a set of values out of Options.
type MultiSelect struct {
	label   string
	Options []string
}

// NewMultiSelect creates a multi-choice prompt.
func NewMultiSelect(label string, options ...string) *MultiSelect {
	return &MultiSelect{label: label, Options: options}
}

func (p *MultiSelect) Label() string    { return p.label }
func (p *MultiSelect) Kind() PromptKind { return KindMultiSelect }

func (p *MultiSelect) Validate(v domain.Value) error {
	if !v.IsMulti() {
		return fmt.Errorf("prompt %q: %w", p.label, ErrValueShape)
	}
	var unknown []string
	for _, it := range v.Items() {
		if !slices.Contains(p.Options, it) {
			unknown = append(unknown, it)
		}
	}
	if len(unknown) > 0 {
		return &ValidationError{Path: p.label, Reason: "unknown options", Value: strings.Join(unknown, ", ")}
	}
	return nil
}
