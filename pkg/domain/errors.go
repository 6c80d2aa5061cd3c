package domain

import "errors"

// ErrStrategyNotFound is returned when a strategy ID cannot be found in the store.
var ErrStrategyNotFound = errors.New("strategy not found")

// ErrNodeNotFound is returned when an operation references a node that is not in the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidEdge is returned when an edge references a missing endpoint.
var ErrInvalidEdge = errors.New("invalid edge")

// ErrUnknownMenu is returned when a menu is not declared for the node's block kind.
var ErrUnknownMenu = errors.New("unknown menu")

// ErrUnknownSubMenu is returned when a sub-menu is not declared under the given menu.
var ErrUnknownSubMenu = errors.New("unknown sub-menu")

// ErrUnknownPrompt is returned when a prompt label is not declared by the active sub-menu.
var ErrUnknownPrompt = errors.New("unknown prompt")

// ErrNoSubMenu is returned when a prompt value is set before a sub-menu was chosen.
var ErrNoSubMenu = errors.New("no sub-menu selected")

// ErrCycleDetected is returned when workflow extraction meets a cycle.
var ErrCycleDetected = errors.New("cycle detected")

// ErrEmptyID is returned when a store operation receives a blank strategy ID.
var ErrEmptyID = errors.New("strategy id cannot be empty")

// ErrNoExecutionService is returned when evaluation is requested without an execution service.
var ErrNoExecutionService = errors.New("execution service not configured")
