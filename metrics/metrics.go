// Package metrics exposes the runtime's Prometheus instrumentation as
// package-level collectors registered with the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskmesh_runs_started_total",
			Help: "Total number of orchestrator runs started",
		},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmesh_runs_completed_total",
			Help: "Total number of orchestrator runs completed",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmesh_run_duration_seconds",
			Help:    "Orchestrator run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Plan metrics
	PlansCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmesh_plans_created_total",
			Help: "Total number of execution plans created",
		},
		[]string{"strategy"},
	)

	// Agent step metrics
	AgentSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmesh_agent_steps_total",
			Help: "Total number of agent steps executed",
		},
		[]string{"agent_id", "status"},
	)

	// Tool metrics
	ToolExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmesh_tool_executions_total",
			Help: "Total number of tool executions",
		},
		[]string{"tool_id", "status"},
	)

	ToolExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskmesh_tool_execution_duration_ms",
			Help:    "Tool execution duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		},
		[]string{"tool_id"},
	)

	ToolRetries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskmesh_tool_retries",
			Help:    "Number of retries performed per tool execution",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
	)

	// History metrics
	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskmesh_history_write_failures_total",
			Help: "Total number of failed run history writes",
		},
	)
)
