package schema

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Well-known names of the built-in catalog.
const (
	MenuOperand1  = "Operation 1"
	MenuCondition = "condition"
	MenuOperand2  = "Operation 2"
	MenuActions   = "Actions"

	// SubMenuOperator is the sub-menu whose name is never rendered in a summary.
	SubMenuOperator = "operator"
	PromptOperator  = "Choose Operator:"
)

// Operators lists the comparison tokens a condition may use.
var Operators = []string{">", "<", "=="}

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("schema: built-in catalog is invalid: %v", err))
	}
	return c
})

// Default returns the built-in catalog.
func Default() *Catalog {
	return loadDefault()
}

// DefaultYAML returns the source of the built-in catalog.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultCatalogYAML))
	copy(out, defaultCatalogYAML)
	return out
}
