// Package core defines the fundamental types and contracts of the TaskMesh
// runtime: the value objects exchanged between planner, orchestrator and tool
// engine (ToolCall, ToolResult, Span, ExecutionResult), the run-scoped
// ExecutionContext state machine, and the collaborator interfaces the
// orchestrator depends on (AgentExecutor, HistoryStore, Retriever).
//
// Everything in this package is transport and storage agnostic. Sibling
// packages provide concrete implementations (tool registry, execution engine,
// history stores, retrievers) while core stays dependency free apart from id
// generation.
package core
