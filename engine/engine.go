// Package engine implements tool execution for the TaskMesh runtime: a
// single-call Executor with bounded retries and pluggable backoff, and a
// batch Engine that drives ordered tool-call batches through validation and
// execution with idempotency and fail-fast semantics.
package engine

import (
	"context"
	"time"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/internal/util"
	"github.com/taskmesh/taskmesh/logging"
	"github.com/taskmesh/taskmesh/tool"
)

// PreHook runs before a call is validated and executed. Hooks observe; they
// must not mutate the call.
type PreHook func(call core.ToolCall, ec *core.ExecutionContext)

// PostHook runs after a call produced its result (including short-circuited
// duplicate and validation-failure results).
type PostHook func(result core.ToolResult, ec *core.ExecutionContext)

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Validator checks calls before execution. Defaults to a validator over
	// the engine's registry.
	Validator *tool.Validator
	// Executor runs individual invocations. Defaults to a NoDelay executor
	// over the engine's registry.
	Executor *Executor
	// Logger receives batch progress records. Defaults to NoOpLogger.
	Logger logging.Logger
	// PreHooks run before each call.
	PreHooks []PreHook
	// PostHooks run after each result.
	PostHooks []PostHook
}

// Engine executes ordered batches of tool calls strictly sequentially:
// ordering and the per-run idempotency guard are part of the contract, and
// sequential execution keeps both without extra locking. Concurrency across
// independent runs (separate ExecutionContexts) is safe; the shared registry
// handles its own synchronization.
type Engine struct {
	registry  *tool.Registry
	validator *tool.Validator
	executor  *Executor
	logger    logging.Logger
	preHooks  []PreHook
	postHooks []PostHook
}

// New creates an Engine over a registry with optional overrides.
func New(registry *tool.Registry, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Validator == nil {
		opts.Validator = tool.NewValidator(registry)
	}
	if opts.Executor == nil {
		opts.Executor = NewExecutor(registry)
	}

	return &Engine{
		registry:  registry,
		validator: opts.Validator,
		executor:  opts.Executor,
		logger:    opts.Logger,
		preHooks:  opts.PreHooks,
		postHooks: opts.PostHooks,
	}
}

// ExecuteBatch runs calls in input order. For each call it generates a
// missing call id, short-circuits duplicates ("already executed") via the
// context's idempotency guard, validates against the registry, executes with
// the given retry budget and records a span. Results are appended to the
// context and the returned slice in call order.
//
// With failFast true, processing stops immediately after the first failure
// result: the returned slice is a prefix of the input ending at that
// failure, and the remaining calls are neither validated nor executed. With
// failFast false every call is processed and len(results) == len(calls).
func (e *Engine) ExecuteBatch(ctx context.Context, calls []core.ToolCall, ec *core.ExecutionContext, failFast bool, retries int) []core.ToolResult {
	results := make([]core.ToolResult, 0, len(calls))

	for _, call := range calls {
		if call.CallID == "" {
			call.CallID = util.NewID()
		}

		for _, hook := range e.preHooks {
			hook(call, ec)
		}

		var result core.ToolResult

		if ec.HasExecuted(call.CallID) {
			e.logger.Warn("engine.batch.duplicate_call", "tool_id", call.ToolID, "call_id", call.CallID)
			result = core.ToolResult{
				ToolID:  call.ToolID,
				CallID:  call.CallID,
				Success: false,
				Error:   "already executed",
			}
		} else if err := e.validator.Validate(call); err != nil {
			e.logger.Warn("engine.batch.validation_failed", "tool_id", call.ToolID, "call_id", call.CallID, "error", err.Error())
			result = core.ToolResult{
				ToolID:  call.ToolID,
				CallID:  call.CallID,
				Success: false,
				Error:   err.Error(),
			}
		} else {
			result = e.execute(ctx, call, ec, retries)
		}

		_ = ec.MarkExecuted(call.CallID)
		_ = ec.AddToolResult(result)
		results = append(results, result)

		for _, hook := range e.postHooks {
			hook(result, ec)
		}

		if failFast && !result.Success {
			e.logger.Info("engine.batch.fail_fast", "call_id", call.CallID, "processed", len(results), "total", len(calls))
			break
		}
	}

	return results
}

// execute runs one call through the executor and records its span on the
// context, enriching result metadata with run and span correlation ids.
func (e *Engine) execute(ctx context.Context, call core.ToolCall, ec *core.ExecutionContext, retries int) core.ToolResult {
	startedAt := time.Now().UTC()
	result := e.executor.Execute(ctx, call, nil, retries)
	finishedAt := time.Now().UTC()

	status := core.ResultSuccess
	if !result.Success {
		status = core.ResultError
	}

	span := core.Span{
		SpanID:     util.NewID(),
		CallID:     call.CallID,
		ToolID:     call.ToolID,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		LatencyMS:  finishedAt.Sub(startedAt).Milliseconds(),
		Status:     status,
	}
	_ = ec.AddSpan(span)

	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["span_id"] = span.SpanID
	result.Metadata["run_id"] = ec.RunID()

	return result
}
