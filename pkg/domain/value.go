package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a saved prompt value: a single scalar for select and input prompts,
// or a set of strings for multi-select prompts.
type Value struct {
	scalar string
	items  []string
	multi  bool
}

// Scalar creates a single-valued prompt value.
func Scalar(s string) Value {
	return Value{scalar: s}
}

// Multi creates a multi-select prompt value. Order is preserved, duplicates dropped.
func Multi(items ...string) Value {
	v := Value{multi: true, items: make([]string, 0, len(items))}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		v.items = append(v.items, it)
	}
	return v
}

// IsMulti reports whether the value is a string set.
func (v Value) IsMulti() bool { return v.multi }

// String returns the scalar, or the items joined by a single space.
func (v Value) String() string {
	if v.multi {
		return strings.Join(v.items, " ")
	}
	return v.scalar
}

// Tokens renders the value as it appears in a compiled summary.
func (v Value) Tokens() string {
	return strings.TrimSpace(v.String())
}

// Items returns the selected options of a multi-select value.
// A scalar value yields a single item unless it is empty.
func (v Value) Items() []string {
	if v.multi {
		out := make([]string, len(v.items))
		copy(out, v.items)
		return out
	}
	if v.scalar == "" {
		return nil
	}
	return []string{v.scalar}
}

// IsZero reports whether the value carries nothing to render.
func (v Value) IsZero() bool {
	if v.multi {
		return len(v.items) == 0
	}
	return strings.TrimSpace(v.scalar) == ""
}

// Clone returns an independent copy.
func (v Value) Clone() Value {
	if !v.multi {
		return v
	}
	return Multi(v.items...)
}

// MarshalJSON encodes scalars as strings and sets as arrays.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		items := v.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.scalar)
}

// UnmarshalJSON accepts a string, a number, a boolean or an array of strings.
// Numbers arrive from numeric inputs in the canvas and are kept verbatim.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*v = Value{}
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("invalid multi-select value: %w", err)
		}
		*v = Multi(items...)
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = Scalar(n.String())
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("unsupported prompt value %s", trimmed)
	}
	*v = Scalar(fmt.Sprint(b))
	return nil
}
