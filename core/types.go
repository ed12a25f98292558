package core

import "time"

// AgentRef identifies an agent without prescribing how it reasons. The
// runtime treats agent execution as an external collaborator; an AgentRef is
// the only thing the planner and orchestrator ever hold.
type AgentRef struct {
	// ID is the stable identifier used for routing and metrics labels.
	ID string `json:"id"`
	// Name is the human readable agent name.
	Name string `json:"name"`
	// Role categorizes the agent (e.g. "lead", "researcher", "critic").
	Role string `json:"role,omitempty"`
	// Description is surfaced in plans and logs.
	Description string `json:"description,omitempty"`
}

// Task describes a unit of work submitted to the orchestrator.
type Task struct {
	// Name is a short label used in history records.
	Name string `json:"name"`
	// Description is the natural language task statement the planner
	// classifies.
	Description string `json:"description"`
	// Input is the payload handed to the first agent step. When empty the
	// Description doubles as input.
	Input string `json:"input,omitempty"`
	// Metadata carries caller supplied annotations.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// InputText returns the effective input for the first agent step.
func (t Task) InputText() string {
	if t.Input != "" {
		return t.Input
	}
	return t.Description
}

// ToolCall is a declared intent to invoke a registered tool. It is a pure
// value: created by agent output (or by the orchestrator when normalizing
// it), validated and executed by the engine, never self-executing.
type ToolCall struct {
	// ToolID references a registry entry.
	ToolID string `json:"tool_id"`
	// Arguments is the string-keyed argument map passed to the handler.
	Arguments map[string]any `json:"arguments,omitempty"`
	// CallID correlates the call with its result and span. Generated by the
	// engine when absent.
	CallID string `json:"call_id,omitempty"`
}

// ToolResult is the normalized outcome of one tool invocation.
//
// Invariant: Success == true implies Error == "", and vice versa.
type ToolResult struct {
	ToolID  string `json:"tool_id"`
	CallID  string `json:"call_id"`
	Success bool   `json:"success"`
	// Output is the handler's return value, opaque to the runtime.
	Output any `json:"output,omitempty"`
	// Error holds the failure message. Present iff Success is false.
	Error string `json:"error,omitempty"`
	// Metadata carries timing and correlation details (started_at,
	// finished_at, latency_ms, attempts, span_id, run_id).
	Metadata map[string]any `json:"metadata,omitempty"`
	// Retries is the number of retries performed (attempts made minus one).
	Retries int `json:"retries"`
}

// Span is a timed record of one tool invocation's lifecycle, kept on the
// ExecutionContext for observability.
type Span struct {
	SpanID     string    `json:"span_id"`
	CallID     string    `json:"call_id"`
	ToolID     string    `json:"tool_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	LatencyMS  int64     `json:"latency_ms"`
	// Status is "success" or "error".
	Status string `json:"status"`
}

// AgentOutput is what the agent-execution collaborator returns for one step.
type AgentOutput struct {
	// Output is the agent's textual result; it becomes the next step's input
	// in multi-agent plans.
	Output string `json:"output"`
	// ToolCalls are invocation intents declared by the agent. They are
	// collected into the ExecutionContext and executed after dispatch.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Result status values for ExecutionResult.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ExecutionResult is the orchestrator's output for one run.
type ExecutionResult struct {
	// Status is ResultSuccess or ResultError.
	Status string `json:"status"`
	// Output is the final agent output (the last step's output for
	// multi-agent runs).
	Output string `json:"output,omitempty"`
	// Error holds the run-fatal failure message when Status is ResultError.
	Error string `json:"error,omitempty"`
	// ChildResults holds per-step results for multi-agent runs.
	ChildResults []ExecutionResult `json:"child_results,omitempty"`
	// ToolResults are the merged batch results from the ExecutionContext.
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	// PlanReason carries the planner's human readable justification.
	PlanReason string `json:"plan_reason,omitempty"`
}

// RunRecord is the run summary handed to a HistoryStore after a run
// finishes. It deliberately excludes the full context: persistence is a
// collaborator concern and must never retain mutable runtime state.
type RunRecord struct {
	RunID      string    `json:"run_id" db:"run_id"`
	TaskName   string    `json:"task_name" db:"task_name"`
	Strategy   string    `json:"strategy" db:"strategy"`
	Status     string    `json:"status" db:"status"`
	Output     string    `json:"output" db:"output"`
	Error      string    `json:"error" db:"error"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	ToolCount  int       `json:"tool_count" db:"tool_count"`
}
