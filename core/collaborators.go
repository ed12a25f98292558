package core

import "context"

// AgentExecutor produces an agent's output for one plan step. The runtime
// treats reasoning as opaque: implementations may call a model, a remote
// service or a deterministic function.
//
// Implementations must be safe to call multiple times per run (once per plan
// step) and must not mutate the ExecutionContext except through their return
// value; the orchestrator owns all context mutation.
type AgentExecutor interface {
	Execute(ctx context.Context, agent AgentRef, task Task, ec *ExecutionContext) (AgentOutput, error)
}

// AgentExecutorFunc adapts a plain function to the AgentExecutor interface.
type AgentExecutorFunc func(ctx context.Context, agent AgentRef, task Task, ec *ExecutionContext) (AgentOutput, error)

// Execute implements AgentExecutor.
func (f AgentExecutorFunc) Execute(ctx context.Context, agent AgentRef, task Task, ec *ExecutionContext) (AgentOutput, error) {
	return f(ctx, agent, task, ec)
}

// HistoryStore persists run summaries after a run completes. Failures in a
// HistoryStore must never overwrite or mask the run's own status; the
// orchestrator reports them separately.
type HistoryStore interface {
	SaveRun(ctx context.Context, rec RunRecord) error
}

// Retriever is the optional knowledge-retrieval collaborator consulted by
// the planner. Errors from a Retriever are swallowed and recorded in context
// metadata, never propagated through planning.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]string, error)
}
