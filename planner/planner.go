// Package planner decides the execution strategy for a task: single agent
// for simple work, sequential multi-agent for tasks whose description
// signals analysis or research. Planning is deterministic, never fails, and
// records any knowledge-retrieval trouble in context metadata instead of
// propagating it.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/logging"
	"github.com/taskmesh/taskmesh/metrics"
)

// DefaultKeywords is the fixed classification set matched (case
// insensitively) against task descriptions. Any hit selects the multi-agent
// strategy.
var DefaultKeywords = []string{
	"analyze",
	"research",
	"compare",
	"summarize",
	"explain",
	"find",
	"search",
	"investigate",
	"evaluate",
	"review",
}

// MetadataRetrievalError is the context metadata key under which swallowed
// retrieval failures are recorded.
const MetadataRetrievalError = "retrieval_error"

// Options holds overrides passed to New.
type Options struct {
	// Keywords extends DefaultKeywords with deployment specific terms.
	Keywords []string
	// Retriever is the optional knowledge-retrieval collaborator. Its
	// errors are swallowed; its results only enrich the plan reason.
	Retriever core.Retriever
	// RetrievalTopK bounds how many knowledge items are requested.
	RetrievalTopK int
	// Logger receives classification records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Planner classifies tasks and produces execution plans.
type Planner struct {
	keywords  []string
	retriever core.Retriever
	topK      int
	logger    logging.Logger
}

// New creates a Planner with optional overrides.
func New(optFns ...func(o *Options)) *Planner {
	opts := Options{
		RetrievalTopK: 3,
		Logger:        logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	keywords := make([]string, 0, len(DefaultKeywords)+len(opts.Keywords))
	keywords = append(keywords, DefaultKeywords...)
	keywords = append(keywords, opts.Keywords...)

	return &Planner{
		keywords:  keywords,
		retriever: opts.Retriever,
		topK:      opts.RetrievalTopK,
		logger:    opts.Logger,
	}
}

// Plan classifies the task and returns an execution plan. A keyword match
// selects the multi-agent strategy with the lead agent duplicated as the
// second step; this placeholder roster keeps the dispatch contract stable
// until specialized agents are routed in. Without a match the plan is a
// single step carrying the lead agent.
//
// Planning never fails: retrieval errors are recorded on the context under
// MetadataRetrievalError and otherwise ignored.
func (p *Planner) Plan(ctx context.Context, agent core.AgentRef, task core.Task, ec *core.ExecutionContext) ExecutionPlan {
	matched, keyword := p.classify(task.Description)
	retrieved := p.retrieve(ctx, task.Description, ec)

	var plan ExecutionPlan
	if matched {
		plan = ExecutionPlan{
			Strategy: StrategyMultiAgent,
			Steps:    []core.AgentRef{agent, agent},
			Reason:   fmt.Sprintf("complex task: matched keyword %q; %d knowledge items considered", keyword, retrieved),
		}
	} else {
		plan = ExecutionPlan{
			Strategy: StrategySingleAgent,
			Steps:    []core.AgentRef{agent},
			Reason:   fmt.Sprintf("simple task: no classification keyword matched; %d knowledge items considered", retrieved),
		}
	}

	metrics.PlansCreated.WithLabelValues(string(plan.Strategy)).Inc()
	p.logger.Debug("planner.plan", "run_id", ec.RunID(), "strategy", string(plan.Strategy), "steps", len(plan.Steps), "reason", plan.Reason)

	return plan
}

// classify reports whether the description contains any classification
// keyword, returning the first match.
func (p *Planner) classify(description string) (bool, string) {
	lowered := strings.ToLower(description)
	for _, kw := range p.keywords {
		if strings.Contains(lowered, kw) {
			return true, kw
		}
	}
	return false, ""
}

// retrieve consults the optional Retriever and returns how many items it
// produced. Failures are swallowed into context metadata.
func (p *Planner) retrieve(ctx context.Context, query string, ec *core.ExecutionContext) int {
	if p.retriever == nil {
		return 0
	}

	items, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		ec.SetMetadata(MetadataRetrievalError, err.Error())
		p.logger.Warn("planner.retrieval_failed", "run_id", ec.RunID(), "error", err.Error())
		return 0
	}

	return len(items)
}
