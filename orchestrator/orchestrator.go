// Package orchestrator coordinates one run of the TaskMesh pipeline: it
// requests a plan, validates the plan's structural invariants, dispatches
// agent execution (single or sequential multi-agent), drives declared tool
// calls through the execution engine and finalizes the run context. Run
// summaries are optionally handed to a history store whose failures never
// alter the computed run status.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/engine"
	"github.com/taskmesh/taskmesh/logging"
	"github.com/taskmesh/taskmesh/metrics"
	"github.com/taskmesh/taskmesh/planner"
)

// ValidationError reports a structurally invalid execution plan.
type ValidationError struct {
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid execution plan: %s", e.Message)
}

// AgentExecutionError wraps an opaque failure from the agent-execution
// collaborator, annotated with the step that raised it.
type AgentExecutionError struct {
	AgentID string
	Step    int
	Err     error
}

func (e *AgentExecutionError) Error() string {
	return fmt.Sprintf("agent %q failed at step %d: %v", e.AgentID, e.Step, e.Err)
}

// Unwrap returns the underlying collaborator error.
func (e *AgentExecutionError) Unwrap() error { return e.Err }

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Planner produces execution plans. Defaults to a keyword planner with
	// no retriever.
	Planner *planner.Planner
	// History receives run summaries after every run. Optional.
	History core.HistoryStore
	// Logger receives run lifecycle records. Defaults to NoOpLogger.
	Logger logging.Logger
	// FailFast controls whether tool batches halt on the first failure.
	// Defaults to true.
	FailFast bool
	// ToolRetries is the per-call retry budget for tool batches. Defaults
	// to 0: retries are a tool-level concern tuned per deployment, not an
	// agent-level one.
	ToolRetries int
}

// Orchestrator runs the planning -> dispatch -> tool execution pipeline.
// Public methods are safe for concurrent use; every run owns a fresh
// ExecutionContext and the only shared dependency, the tool registry inside
// the engine, synchronizes itself.
type Orchestrator struct {
	executor    core.AgentExecutor
	engine      *engine.Engine
	planner     *planner.Planner
	history     core.HistoryStore
	logger      logging.Logger
	failFast    bool
	toolRetries int
}

// New creates an Orchestrator around the required collaborators: the
// agent-execution collaborator and the tool execution engine.
func New(executor core.AgentExecutor, eng *engine.Engine, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Logger:   logging.NoOpLogger{},
		FailFast: true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Planner == nil {
		opts.Planner = planner.New()
	}

	return &Orchestrator{
		executor:    executor,
		engine:      eng,
		planner:     opts.Planner,
		history:     opts.History,
		logger:      opts.Logger,
		failFast:    opts.FailFast,
		toolRetries: opts.ToolRetries,
	}
}

// ValidatePlan checks a plan's structural invariants: single-agent plans
// carry exactly one step, multi-agent plans at least two, and the strategy
// must be one of the known values.
func (o *Orchestrator) ValidatePlan(plan planner.ExecutionPlan) error {
	switch plan.Strategy {
	case planner.StrategySingleAgent:
		if len(plan.Steps) != 1 {
			return &ValidationError{Message: fmt.Sprintf("single_agent plan requires exactly one step, got %d", len(plan.Steps))}
		}
	case planner.StrategyMultiAgent:
		if len(plan.Steps) < 2 {
			return &ValidationError{Message: fmt.Sprintf("multi_agent plan requires at least two steps, got %d", len(plan.Steps))}
		}
	default:
		return &ValidationError{Message: fmt.Sprintf("unknown strategy %q", plan.Strategy)}
	}
	return nil
}

// Run executes one task with the given lead agent. It always returns a
// structured ExecutionResult; the error return is non-nil for run-fatal
// failures (plan validation, agent execution) and for history-write
// failures, which never change the result's own status.
func (o *Orchestrator) Run(ctx context.Context, agent core.AgentRef, task core.Task) (core.ExecutionResult, error) {
	ec := core.NewExecutionContext()
	_ = ec.MarkRunning()

	metrics.RunsStarted.Inc()
	start := time.Now()

	o.logger.Info("orchestrator.run.start", "run_id", ec.RunID(), "agent_id", agent.ID, "task", task.Name)

	plan := o.planner.Plan(ctx, agent, task, ec)

	if err := o.ValidatePlan(plan); err != nil {
		return o.finalize(ctx, ec, plan, task, core.ExecutionResult{
			Status: core.ResultError,
			Error:  err.Error(),
		}, start, err)
	}

	// Planning-time tool intents are executed alongside the calls agents
	// declare later.
	for _, call := range plan.ToolCalls {
		_ = ec.AddToolCall(call)
	}

	result, runErr := o.dispatch(ctx, plan, task, ec)

	if runErr == nil && len(ec.ToolCalls()) > 0 {
		o.engine.ExecuteBatch(ctx, ec.ToolCalls(), ec, o.failFast, o.toolRetries)
		result.ToolResults = ec.ToolResults()
	}

	return o.finalize(ctx, ec, plan, task, result, start, runErr)
}

// dispatch routes the validated plan to its execution path.
func (o *Orchestrator) dispatch(ctx context.Context, plan planner.ExecutionPlan, task core.Task, ec *core.ExecutionContext) (core.ExecutionResult, error) {
	switch plan.Strategy {
	case planner.StrategyMultiAgent:
		return o.runMulti(ctx, plan, task, ec)
	default:
		return o.runSingle(ctx, plan.Steps[0], task, ec)
	}
}

// runSingle invokes the agent-execution collaborator once and normalizes
// its declared tool calls into the run context.
func (o *Orchestrator) runSingle(ctx context.Context, agent core.AgentRef, task core.Task, ec *core.ExecutionContext) (core.ExecutionResult, error) {
	out, err := o.executor.Execute(ctx, agent, task, ec)
	if err != nil {
		metrics.AgentSteps.WithLabelValues(agent.ID, core.ResultError).Inc()
		stepErr := &AgentExecutionError{AgentID: agent.ID, Step: 0, Err: err}
		return core.ExecutionResult{Status: core.ResultError, Error: stepErr.Error()}, stepErr
	}

	metrics.AgentSteps.WithLabelValues(agent.ID, core.ResultSuccess).Inc()

	for _, call := range out.ToolCalls {
		_ = ec.AddToolCall(call)
	}

	return core.ExecutionResult{Status: core.ResultSuccess, Output: out.Output}, nil
}

// runMulti executes the plan's steps sequentially, feeding each step's
// output into the next step's input. The first failing step stops the chain
// and its error result is returned; every step's declared tool calls are
// merged into the shared context before the chain can stop.
func (o *Orchestrator) runMulti(ctx context.Context, plan planner.ExecutionPlan, task core.Task, ec *core.ExecutionContext) (core.ExecutionResult, error) {
	input := task.InputText()
	childResults := make([]core.ExecutionResult, 0, len(plan.Steps))

	var lastOutput string

	for i, step := range plan.Steps {
		stepTask := core.Task{
			Name:        task.Name,
			Description: task.Description,
			Input:       input,
			Metadata:    task.Metadata,
		}

		out, err := o.executor.Execute(ctx, step, stepTask, ec)
		if err != nil {
			metrics.AgentSteps.WithLabelValues(step.ID, core.ResultError).Inc()
			stepErr := &AgentExecutionError{AgentID: step.ID, Step: i, Err: err}
			childResults = append(childResults, core.ExecutionResult{Status: core.ResultError, Error: err.Error()})
			return core.ExecutionResult{
				Status:       core.ResultError,
				Error:        stepErr.Error(),
				ChildResults: childResults,
			}, stepErr
		}

		metrics.AgentSteps.WithLabelValues(step.ID, core.ResultSuccess).Inc()

		for _, call := range out.ToolCalls {
			_ = ec.AddToolCall(call)
		}

		childResults = append(childResults, core.ExecutionResult{Status: core.ResultSuccess, Output: out.Output})
		lastOutput = out.Output
		input = out.Output
	}

	return core.ExecutionResult{
		Status:       core.ResultSuccess,
		Output:       lastOutput,
		ChildResults: childResults,
	}, nil
}

// finalize closes the context, records metrics and history, and shapes the
// returned result. A history-write failure surfaces through the returned
// error but never rewrites the result's status.
func (o *Orchestrator) finalize(ctx context.Context, ec *core.ExecutionContext, plan planner.ExecutionPlan, task core.Task, result core.ExecutionResult, start time.Time, runErr error) (core.ExecutionResult, error) {
	result.PlanReason = plan.Reason

	if runErr != nil {
		_ = ec.MarkFailed(runErr.Error())
	} else {
		_ = ec.MarkCompleted()
	}

	metrics.RunsCompleted.WithLabelValues(result.Status).Inc()
	metrics.RunDuration.Observe(time.Since(start).Seconds())

	o.logger.Info("orchestrator.run.finished",
		"run_id", ec.RunID(),
		"status", result.Status,
		"strategy", string(plan.Strategy),
		"tool_results", len(result.ToolResults),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if o.history != nil {
		rec := core.RunRecord{
			RunID:      ec.RunID(),
			TaskName:   task.Name,
			Strategy:   string(plan.Strategy),
			Status:     result.Status,
			Output:     result.Output,
			Error:      result.Error,
			StartedAt:  ec.StartedAt(),
			FinishedAt: ec.FinishedAt(),
			ToolCount:  len(result.ToolResults),
		}
		if err := o.history.SaveRun(ctx, rec); err != nil {
			metrics.HistoryWriteFailures.Inc()
			o.logger.Error("orchestrator.history.save_failed", "run_id", ec.RunID(), "error", err.Error())
			if runErr == nil {
				return result, fmt.Errorf("run %s finished with status %q but history write failed: %w", ec.RunID(), result.Status, err)
			}
		}
	}

	return result, runErr
}
