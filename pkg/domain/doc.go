/*
Package domain contains the core models of the strategy graph.

It defines the blocks a user places on the canvas, the edges that connect them and
the persisted Strategy record. This package is kept pure and free of I/O; compilation,
extraction and binding live in the compiler package, persistence in the adapters.

# Key Entities

  - Node: a Condition or Action block with its menu selections and compiled summary.
  - Edge: a directed connection from one block to another.
  - Graph: the node and edge sets plus connectivity queries.
  - Strategy: the persisted unit (graph, compiled workflow, schedule frequency).
  - Document: the wire shape of a Strategy as stored by the document store.
*/
package domain
