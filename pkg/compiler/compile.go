package compiler

import (
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// Compile recompiles every summary and extracts the workflow in one step.
// The returned graph is always the recompiled one, even when extraction fails.
func Compile(c *schema.Catalog, g domain.Graph, opts ...ExtractOption) (domain.Graph, Workflow, error) {
	fresh := Recompile(c, g)
	w, err := Extract(fresh, opts...)
	return fresh, w, err
}
