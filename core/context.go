package core

import (
	"errors"
	"time"

	"github.com/taskmesh/taskmesh/internal/util"
)

// ContextStatus enumerates the ExecutionContext lifecycle states.
type ContextStatus string

const (
	// StatusPending is the initial state of a freshly created context.
	StatusPending ContextStatus = "pending"
	// StatusRunning marks a context whose run has started.
	StatusRunning ContextStatus = "running"
	// StatusCompleted is the terminal success state.
	StatusCompleted ContextStatus = "completed"
	// StatusFailed is the terminal failure state.
	StatusFailed ContextStatus = "failed"
)

var (
	// ErrContextClosed is returned when a mutation is attempted on a context
	// that already reached a terminal state.
	ErrContextClosed = errors.New("execution context is closed")
	// ErrInvalidTransition is returned for lifecycle transitions that are not
	// part of the pending -> running -> {completed, failed} machine.
	ErrInvalidTransition = errors.New("invalid context state transition")
)

// ExecutionContext carries the mutable, run-scoped state of one orchestrator
// invocation: identifiers, lifecycle status, declared tool calls, the
// idempotency guard of already executed call ids, collected results and
// spans, plus free-form metadata.
//
// A context is created once per run, mutated only through its methods, and
// discarded when the run returns; persistence of run summaries is a
// HistoryStore concern. It is confined to the goroutine driving the run and
// therefore carries no internal locking; independent runs use independent
// contexts and share nothing.
//
// Lifecycle: pending -> running -> {completed, failed}. The terminal states
// are final: MarkCompleted and MarkFailed become idempotent no-ops once
// terminal, and every other mutation returns ErrContextClosed.
type ExecutionContext struct {
	runID      string
	status     ContextStatus
	failure    string
	startedAt  time.Time
	finishedAt time.Time

	toolCalls   []ToolCall
	executedIDs map[string]struct{}
	toolResults []ToolResult
	spans       []Span
	metadata    map[string]any
}

// NewExecutionContext creates a pending context with a fresh run id.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{
		runID:       util.NewID(),
		status:      StatusPending,
		executedIDs: map[string]struct{}{},
		metadata:    map[string]any{},
	}
}

// RunID returns the run identifier generated at context creation.
func (ec *ExecutionContext) RunID() string { return ec.runID }

// Status returns the current lifecycle state.
func (ec *ExecutionContext) Status() ContextStatus { return ec.status }

// Failure returns the message recorded by MarkFailed, or "".
func (ec *ExecutionContext) Failure() string { return ec.failure }

// StartedAt returns the MarkRunning timestamp (zero until the run starts).
func (ec *ExecutionContext) StartedAt() time.Time { return ec.startedAt }

// FinishedAt returns the terminal transition timestamp (zero until then).
func (ec *ExecutionContext) FinishedAt() time.Time { return ec.finishedAt }

// Terminal reports whether the context reached completed or failed.
func (ec *ExecutionContext) Terminal() bool {
	return ec.status == StatusCompleted || ec.status == StatusFailed
}

// MarkRunning transitions pending -> running and stamps StartedAt.
func (ec *ExecutionContext) MarkRunning() error {
	if ec.Terminal() {
		return ErrContextClosed
	}
	if ec.status != StatusPending {
		return ErrInvalidTransition
	}
	ec.status = StatusRunning
	ec.startedAt = time.Now().UTC()
	return nil
}

// MarkCompleted transitions running -> completed. Calling it on an already
// terminal context is a no-op.
func (ec *ExecutionContext) MarkCompleted() error {
	if ec.Terminal() {
		return nil
	}
	if ec.status != StatusRunning {
		return ErrInvalidTransition
	}
	ec.status = StatusCompleted
	ec.finishedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions running -> failed and records the failure message.
// Calling it on an already terminal context is a no-op.
func (ec *ExecutionContext) MarkFailed(msg string) error {
	if ec.Terminal() {
		return nil
	}
	if ec.status != StatusRunning {
		return ErrInvalidTransition
	}
	ec.status = StatusFailed
	ec.failure = msg
	ec.finishedAt = time.Now().UTC()
	return nil
}

// AddToolCall appends a declared tool call. Valid in any non-terminal state.
func (ec *ExecutionContext) AddToolCall(call ToolCall) error {
	if ec.Terminal() {
		return ErrContextClosed
	}
	ec.toolCalls = append(ec.toolCalls, call)
	return nil
}

// AddToolResult appends an execution result. Valid in any non-terminal state.
func (ec *ExecutionContext) AddToolResult(result ToolResult) error {
	if ec.Terminal() {
		return ErrContextClosed
	}
	ec.toolResults = append(ec.toolResults, result)
	return nil
}

// AddSpan appends an observability span. Valid in any non-terminal state.
func (ec *ExecutionContext) AddSpan(span Span) error {
	if ec.Terminal() {
		return ErrContextClosed
	}
	ec.spans = append(ec.spans, span)
	return nil
}

// HasExecuted reports whether a call id was already executed within this run.
func (ec *ExecutionContext) HasExecuted(callID string) bool {
	_, ok := ec.executedIDs[callID]
	return ok
}

// MarkExecuted records a call id in the idempotency guard.
func (ec *ExecutionContext) MarkExecuted(callID string) error {
	if ec.Terminal() {
		return ErrContextClosed
	}
	ec.executedIDs[callID] = struct{}{}
	return nil
}

// ToolCalls returns a copy of the declared calls in declaration order.
func (ec *ExecutionContext) ToolCalls() []ToolCall {
	out := make([]ToolCall, len(ec.toolCalls))
	copy(out, ec.toolCalls)
	return out
}

// ToolResults returns a copy of the collected results in execution order.
func (ec *ExecutionContext) ToolResults() []ToolResult {
	out := make([]ToolResult, len(ec.toolResults))
	copy(out, ec.toolResults)
	return out
}

// Spans returns a copy of the recorded spans in execution order.
func (ec *ExecutionContext) Spans() []Span {
	out := make([]Span, len(ec.spans))
	copy(out, ec.spans)
	return out
}

// SetMetadata stores a free-form annotation on the context. Metadata stays
// writable in terminal states so failure details can still be recorded.
func (ec *ExecutionContext) SetMetadata(key string, value any) {
	ec.metadata[key] = value
}

// Metadata returns the annotation stored under key.
func (ec *ExecutionContext) Metadata(key string) (any, bool) {
	v, ok := ec.metadata[key]
	return v, ok
}
