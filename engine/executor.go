package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/logging"
	"github.com/taskmesh/taskmesh/metrics"
	"github.com/taskmesh/taskmesh/tool"
)

// HandlerError wraps a failure raised by a tool handler, annotated with the
// attempt that produced it.
type HandlerError struct {
	ToolID  string
	Attempt int
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("tool %q handler failed on attempt %d: %v", e.ToolID, e.Attempt, e.Err)
}

// Unwrap returns the underlying handler error.
func (e *HandlerError) Unwrap() error { return e.Err }

// ExecutorOptions holds overrides passed to NewExecutor.
type ExecutorOptions struct {
	// Backoff decides inter-retry delays. Defaults to NoDelay.
	Backoff Backoff
	// Logger receives per-invocation records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Executor runs a single validated tool invocation against its bound
// handler with bounded retries, timing and a normalized result. It is
// stateless apart from its configuration and safe for concurrent use.
type Executor struct {
	registry *tool.Registry
	backoff  Backoff
	logger   logging.Logger
}

// NewExecutor creates an Executor bound to a registry.
func NewExecutor(registry *tool.Registry, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		Backoff: NoDelay{},
		Logger:  logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{registry: registry, backoff: opts.Backoff, logger: opts.Logger}
}

// Execute runs one invocation. An explicit override handler takes precedence
// over the registry lookup; when neither resolves the result is a failure
// without any attempt made. Handler failures are retried until maxRetries+1
// total attempts have been made; the last error wins. Timing metadata
// (started_at, finished_at, latency_ms, attempts) is stamped regardless of
// outcome, and Retries always equals attempts made minus one.
//
// Context cancellation between attempts aborts retrying with a result whose
// error wraps ctx.Err(), keeping cancellation distinguishable from handler
// failure.
func (e *Executor) Execute(ctx context.Context, call core.ToolCall, override tool.Handler, maxRetries int) core.ToolResult {
	startedAt := time.Now().UTC()

	handler := override
	if handler == nil {
		if h, ok := e.registry.GetHandler(call.ToolID); ok {
			handler = h
		}
	}

	if handler == nil {
		result := e.finish(call, startedAt, 0, nil, fmt.Sprintf("no handler bound for tool %q", call.ToolID))
		e.logger.Warn("tool.execute.no_handler", "tool_id", call.ToolID, "call_id", call.CallID)
		return result
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = fmt.Errorf("tool execution cancelled: %w", err)
			break
		}

		attempts = attempt
		output, err := invoke(handler, call.Arguments)
		if err == nil {
			result := e.finish(call, startedAt, attempts, output, "")
			e.logger.Debug("tool.execute.success", "tool_id", call.ToolID, "call_id", call.CallID, "attempts", attempts)
			return result
		}

		lastErr = &HandlerError{ToolID: call.ToolID, Attempt: attempt, Err: err}
		e.logger.Warn("tool.execute.attempt_failed", "tool_id", call.ToolID, "call_id", call.CallID, "attempt", attempt, "error", err.Error())

		if attempt <= maxRetries {
			if err := e.wait(ctx, attempt); err != nil {
				lastErr = fmt.Errorf("tool execution cancelled: %w", err)
				break
			}
		}
	}

	return e.finish(call, startedAt, attempts, nil, lastErr.Error())
}

// invoke runs the handler, converting panics into errors so that callers
// always receive a structured result.
func invoke(handler tool.Handler, args map[string]any) (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(args)
}

// wait sleeps for the configured backoff delay, honoring cancellation.
func (e *Executor) wait(ctx context.Context, attempt int) error {
	delay := e.backoff.Delay(attempt)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Executor) finish(call core.ToolCall, startedAt time.Time, attempts int, output any, errMsg string) core.ToolResult {
	finishedAt := time.Now().UTC()
	latency := finishedAt.Sub(startedAt)

	metadata := map[string]any{
		"started_at":  startedAt.Format(time.RFC3339Nano),
		"finished_at": finishedAt.Format(time.RFC3339Nano),
		"latency_ms":  latency.Milliseconds(),
		"attempts":    attempts,
	}
	if meta, ok := e.registry.Get(call.ToolID); ok {
		metadata["tool_name"] = meta.Name
		metadata["tool_version"] = meta.Version
	}

	retries := 0
	if attempts > 0 {
		retries = attempts - 1
	}

	success := errMsg == ""

	status := core.ResultSuccess
	if !success {
		status = core.ResultError
	}
	metrics.ToolExecutions.WithLabelValues(call.ToolID, status).Inc()
	metrics.ToolExecutionDuration.WithLabelValues(call.ToolID).Observe(float64(latency.Milliseconds()))
	metrics.ToolRetries.Observe(float64(retries))

	return core.ToolResult{
		ToolID:   call.ToolID,
		CallID:   call.CallID,
		Success:  success,
		Output:   output,
		Error:    errMsg,
		Metadata: metadata,
		Retries:  retries,
	}
}
