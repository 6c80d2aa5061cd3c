/*
Package observability provides Prometheus instrumentation for strategy compilation,
evaluation, strategy storage and the HTTP surface.

A nil *Metrics is valid and records nothing, so libraries can accept an optional
collector without branching at every call site.
*/
package observability
