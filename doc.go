/*
Package magnetrade turns visual trading strategy graphs into executable workflows.

A strategy is a directed graph of Condition and Action blocks configured through
cascading menus. Every block compiles to a one-line summary, the graph compiles to
an ordered list of command paths (the workflow), and the results returned by the
execution service are bound back onto the Condition blocks that produced them.

# Usage

Studio is the high-level entry point. It wires the schema catalog, a strategy
store and, optionally, the execution service client.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/magnetrade"
		"github.com/aretw0/magnetrade/pkg/adapters/execsvc"
		"github.com/aretw0/magnetrade/pkg/domain"
		"github.com/aretw0/magnetrade/pkg/editor"
	)

	func main() {
		studio := magnetrade.New(
			magnetrade.WithExecutionService(execsvc.New("http://localhost:5000")),
		)

		ed := editor.New(studio.Catalog())
		cond := ed.AddNode(domain.KindCondition, domain.Position{X: 250})
		buy := ed.AddNode(domain.KindAction, domain.Position{X: 100, Y: 100})
		_ = ed.SelectSubMenu(buy, "Actions", "Buy")
		_, _ = ed.Connect(cond, buy)

		s, err := ed.Strategy()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		saved, err := studio.Save(ctx, s)
		if err != nil {
			log.Fatal(err)
		}
		evaluated, _, err := studio.Evaluate(ctx, saved.ID)
		if err != nil {
			log.Fatal(err)
		}
		log.Println(evaluated.Workflow)
	}

# Packages

  - pkg/schema: the menu catalog that drives configuration and compilation.
  - pkg/editor: the single owner of one strategy's graph while it is being edited.
  - pkg/compiler: summaries, workflow extraction and result binding.
  - pkg/adapters: stores, the execution service client, HTTP and MCP servers.
*/
package magnetrade
