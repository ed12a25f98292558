// Package taskmesh provides a high-level façade over the planning,
// orchestration and tool-execution pipeline. Most applications interact with
// this package by:
//  1. Creating a TaskMesh via New() with an agent-execution collaborator
//  2. Registering tools (handlers and/or metadata manifests)
//  3. Submitting tasks with Run()
//
// The façade delegates orchestration to orchestrator.Orchestrator while
// keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// postgres history store, a redis-cached retriever and a structured logger.
package taskmesh

import (
	"context"

	"github.com/taskmesh/taskmesh/config"
	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/engine"
	"github.com/taskmesh/taskmesh/logging"
	"github.com/taskmesh/taskmesh/orchestrator"
	"github.com/taskmesh/taskmesh/planner"
	"github.com/taskmesh/taskmesh/tool"
)

// Options configures the TaskMesh instance.
type Options struct {
	// Settings tunes the engine, planner and logging. Defaults to
	// config.Default().
	Settings *config.Settings
	// Registry holds tool registrations. Defaults to a fresh registry.
	Registry *tool.Registry
	// History receives run summaries. Optional.
	History core.HistoryStore
	// Retriever enriches planning. Optional.
	Retriever core.Retriever
	// Logger is shared by all components. Defaults to NoOp logger.
	Logger logging.Logger
}

// TaskMesh aggregates the runtime's components behind a small surface.
type TaskMesh struct {
	registry     *tool.Registry
	engine       *engine.Engine
	planner      *planner.Planner
	orchestrator *orchestrator.Orchestrator
}

// New creates a TaskMesh around the required agent-execution collaborator
// with optional overrides.
func New(executor core.AgentExecutor, optFns ...func(o *Options)) *TaskMesh {
	opts := Options{
		Settings: config.Default(),
		Registry: tool.NewRegistry(),
		Logger:   logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var backoff engine.Backoff = engine.NoDelay{}
	if opts.Settings.Engine.Backoff == "exponential" {
		backoff = engine.Exponential{
			Base: opts.Settings.Engine.BackoffBase,
			Max:  opts.Settings.Engine.BackoffMax,
		}
	}

	executorOpts := func(o *engine.ExecutorOptions) {
		o.Backoff = backoff
		o.Logger = opts.Logger
	}

	eng := engine.New(opts.Registry, func(o *engine.Options) {
		o.Executor = engine.NewExecutor(opts.Registry, executorOpts)
		o.Logger = opts.Logger
	})

	pl := planner.New(func(o *planner.Options) {
		o.Keywords = opts.Settings.Planner.Keywords
		o.Retriever = opts.Retriever
		o.RetrievalTopK = opts.Settings.Planner.RetrievalTopK
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(executor, eng, func(o *orchestrator.Options) {
		o.Planner = pl
		o.History = opts.History
		o.Logger = opts.Logger
		o.FailFast = opts.Settings.Engine.FailFast
		o.ToolRetries = opts.Settings.Engine.MaxRetries
	})

	return &TaskMesh{
		registry:     opts.Registry,
		engine:       eng,
		planner:      pl,
		orchestrator: orch,
	}
}

// Registry exposes the tool registry for bootstrap registration.
func (tm *TaskMesh) Registry() *tool.Registry { return tm.registry }

// RegisterTool registers a tool with a bound handler.
func (tm *TaskMesh) RegisterTool(metadata tool.Metadata, handler tool.Handler) error {
	return tm.registry.Register(metadata, handler, false)
}

// LoadToolManifest registers metadata-only tool entries from a YAML
// manifest file.
func (tm *TaskMesh) LoadToolManifest(path string) error {
	m, err := tool.LoadManifestFile(path)
	if err != nil {
		return err
	}
	return m.Apply(tm.registry)
}

// Run submits a task for the given lead agent and returns its result.
func (tm *TaskMesh) Run(ctx context.Context, agent core.AgentRef, task core.Task) (core.ExecutionResult, error) {
	return tm.orchestrator.Run(ctx, agent, task)
}
