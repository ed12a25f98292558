package planner

import "github.com/taskmesh/taskmesh/core"

// Strategy identifies how a plan's steps are dispatched.
type Strategy string

const (
	// StrategySingleAgent runs the lead agent once.
	StrategySingleAgent Strategy = "single_agent"
	// StrategyMultiAgent runs the plan's steps sequentially, chaining each
	// step's output into the next step's input.
	StrategyMultiAgent Strategy = "multi_agent"
)

// ExecutionPlan is the planner's decision for one run. A plan is immutable
// once produced; the orchestrator only reads it.
type ExecutionPlan struct {
	// Strategy selects the dispatch path.
	Strategy Strategy `json:"strategy"`
	// Steps is the ordered agent roster. Single-agent plans carry exactly
	// one step; multi-agent plans carry at least two.
	Steps []core.AgentRef `json:"steps"`
	// Reason is the human readable classification justification.
	Reason string `json:"reason,omitempty"`
	// ToolCalls are planning-time tool intents, declared before any agent
	// runs. Optional.
	ToolCalls []core.ToolCall `json:"tool_calls,omitempty"`
}
