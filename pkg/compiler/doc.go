/*
Package compiler turns a strategy graph into executable commands and binds the
execution service's answers back onto it.

The three stages are pure functions over in-memory data:

  - Summarize renders one node's configuration into its canonical command string.
  - Extract walks the graph from every entry node and linearizes each walk into an
    ordered list of command strings (the Workflow).
  - Bind attaches evaluation results to the Condition nodes whose summary equals the
    returned command key.

I/O (stores, the execution service) lives in the adapters.
*/
package compiler
