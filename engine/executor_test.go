package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/tool"
)

func executorFixture(t *testing.T, handler tool.Handler) (*Executor, *tool.Registry) {
	t.Helper()

	r := tool.NewRegistry()
	err := r.Register(tool.Metadata{ToolID: "work", Name: "Work", Version: "1.0.0"}, handler, false)
	assert.NoError(t, err)

	return NewExecutor(r), r
}

// flakyHandler fails the first failures invocations, then succeeds.
func flakyHandler(failures int) tool.Handler {
	invocations := 0
	return func(args map[string]any) (any, error) {
		invocations++
		if invocations <= failures {
			return nil, fmt.Errorf("transient failure %d", invocations)
		}
		return "ok", nil
	}
}

func TestExecutor_SuccessFirstAttempt(t *testing.T) {
	e, _ := executorFixture(t, flakyHandler(0))

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, 3)
	assert.True(t, result.Success)
	assert.Equal(t, "ok", result.Output)
	assert.Empty(t, result.Error)
	assert.Equal(t, 0, result.Retries)
}

func TestExecutor_RetryBound(t *testing.T) {
	// Fails k times then succeeds: maxRetries=k recovers with retries=k.
	const k = 2
	e, _ := executorFixture(t, flakyHandler(k))

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, k)
	assert.True(t, result.Success)
	assert.Equal(t, k, result.Retries)
}

func TestExecutor_RetryBudgetExhausted(t *testing.T) {
	const k = 2
	e, _ := executorFixture(t, flakyHandler(k))

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, k-1)
	assert.False(t, result.Success)
	// maxRetries+1 total attempts, last error wins.
	assert.Contains(t, result.Error, "transient failure 2")
	assert.Equal(t, k-1, result.Retries)
}

func TestExecutor_NoHandlerBound(t *testing.T) {
	r := tool.NewRegistry()
	assert.NoError(t, r.Register(tool.Metadata{ToolID: "ghost", Name: "Ghost", Version: "1.0.0"}, nil, false))
	e := NewExecutor(r)

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "ghost", CallID: "c1"}, nil, 5)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no handler bound")
	assert.Equal(t, 0, result.Retries)
}

func TestExecutor_OverrideBeatsRegistry(t *testing.T) {
	registryInvoked := false
	e, _ := executorFixture(t, func(map[string]any) (any, error) {
		registryInvoked = true
		return "registry", nil
	})

	override := func(map[string]any) (any, error) { return "override", nil }
	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, override, 0)
	assert.True(t, result.Success)
	assert.Equal(t, "override", result.Output)
	assert.False(t, registryInvoked)
}

func TestExecutor_TimingMetadataAlwaysStamped(t *testing.T) {
	e, _ := executorFixture(t, func(map[string]any) (any, error) {
		return nil, errors.New("always fails")
	})

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Metadata, "started_at")
	assert.Contains(t, result.Metadata, "finished_at")
	assert.Contains(t, result.Metadata, "latency_ms")
	assert.Equal(t, 1, result.Metadata["attempts"])
	assert.Equal(t, "Work", result.Metadata["tool_name"])
	assert.Equal(t, "1.0.0", result.Metadata["tool_version"])
}

func TestExecutor_PanicBecomesFailureResult(t *testing.T) {
	e, _ := executorFixture(t, func(map[string]any) (any, error) {
		panic("handler bug")
	})

	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, 0)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "handler panic")
}

func TestExecutor_CancellationStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := executorFixture(t, flakyHandler(0))
	result := e.Execute(ctx, core.ToolCall{ToolID: "work", CallID: "c1"}, nil, 3)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "cancelled")
	assert.Contains(t, result.Error, context.Canceled.Error())
}

func TestExecutor_HandlerErrorWrapping(t *testing.T) {
	underlying := errors.New("io failure")
	handlerErr := &HandlerError{ToolID: "work", Attempt: 3, Err: underlying}

	assert.ErrorIs(t, handlerErr, underlying)
	assert.Contains(t, handlerErr.Error(), "attempt 3")
}

func TestExecutor_BackoffDelaysHonored(t *testing.T) {
	r := tool.NewRegistry()
	assert.NoError(t, r.Register(tool.Metadata{ToolID: "work", Name: "Work", Version: "1.0.0"}, flakyHandler(1), false))

	e := NewExecutor(r, func(o *ExecutorOptions) {
		o.Backoff = Exponential{Base: 10 * time.Millisecond}
	})

	start := time.Now()
	result := e.Execute(context.Background(), core.ToolCall{ToolID: "work", CallID: "c1"}, nil, 1)
	assert.True(t, result.Success)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}
