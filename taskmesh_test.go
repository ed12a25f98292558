package taskmesh

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmesh/taskmesh/config"
	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/history"
	"github.com/taskmesh/taskmesh/tool"
)

var lead = core.AgentRef{ID: "agent-1", Name: "Lead", Role: "assistant"}

func toolCallingExecutor() core.AgentExecutor {
	return core.AgentExecutorFunc(func(ctx context.Context, agent core.AgentRef, task core.Task, ec *core.ExecutionContext) (core.AgentOutput, error) {
		return core.AgentOutput{
			Output: "greeted",
			ToolCalls: []core.ToolCall{{
				ToolID:    "echo",
				Arguments: map[string]any{"message": task.InputText()},
			}},
		}, nil
	})
}

func TestTaskMesh_EchoRoundTrip(t *testing.T) {
	tm := New(toolCallingExecutor())
	require.NoError(t, tool.RegisterEcho(tm.Registry()))

	result, err := tm.Run(context.Background(), lead, core.Task{
		Name:        "greeting",
		Description: "Say hello",
		Input:       "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, core.ResultSuccess, result.Status)
	assert.Equal(t, "greeted", result.Output)
	require.Len(t, result.ToolResults, 1)
	assert.True(t, result.ToolResults[0].Success)
	assert.Equal(t, map[string]any{"echo": "hi"}, result.ToolResults[0].Output)
}

func TestTaskMesh_HistoryWiring(t *testing.T) {
	store := history.NewInMemoryStore()
	tm := New(toolCallingExecutor(), func(o *Options) {
		o.History = store
	})
	require.NoError(t, tool.RegisterEcho(tm.Registry()))

	_, err := tm.Run(context.Background(), lead, core.Task{Name: "greeting", Description: "Say hello"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestTaskMesh_SettingsControlRetries(t *testing.T) {
	settings := config.Default()
	settings.Engine.MaxRetries = 2

	tm := New(toolCallingExecutor(), func(o *Options) {
		o.Settings = settings
	})

	attempts := 0
	require.NoError(t, tm.RegisterTool(tool.EchoMetadata, func(args map[string]any) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, assert.AnError
		}
		return "recovered", nil
	}))

	result, err := tm.Run(context.Background(), lead, core.Task{Name: "greeting", Description: "Say hello", Input: "hi"})
	require.NoError(t, err)
	require.Len(t, result.ToolResults, 1)
	assert.True(t, result.ToolResults[0].Success)
	assert.Equal(t, 2, result.ToolResults[0].Retries)
	assert.Equal(t, 3, attempts)
}

func TestTaskMesh_LoadToolManifest(t *testing.T) {
	manifest := `
tools:
  - id: weather
    name: Weather
    version: 1.0.0
    description: Looks up the weather.
    schema:
      city:
        type: string
        required: true
`
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	tm := New(toolCallingExecutor())
	require.NoError(t, tm.LoadToolManifest(path))

	meta, ok := tm.Registry().Get("weather")
	require.True(t, ok)
	assert.Equal(t, "Weather", meta.Name)

	// Metadata-only entries have no bound handler.
	_, bound := tm.Registry().GetHandler("weather")
	assert.False(t, bound)
}

func TestTaskMesh_RetrieverEnrichesPlanning(t *testing.T) {
	retriever := core.Retriever(retrieverFunc(func(ctx context.Context, query string, topK int) ([]string, error) {
		return []string{"doc"}, nil
	}))

	tm := New(toolCallingExecutor(), func(o *Options) {
		o.Retriever = retriever
	})
	require.NoError(t, tool.RegisterEcho(tm.Registry()))

	result, err := tm.Run(context.Background(), lead, core.Task{Name: "report", Description: "Say hello"})
	require.NoError(t, err)
	assert.Contains(t, result.PlanReason, "1 knowledge items considered")
}

type retrieverFunc func(ctx context.Context, query string, topK int) ([]string, error)

func (f retrieverFunc) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	return f(ctx, query, topK)
}
