// Package tool implements the tool subsystem of the TaskMesh runtime: an
// in-memory registry of tool metadata and bound handlers, a validator that
// checks declared tool calls against registered schemas before execution,
// and a YAML manifest loader for metadata-only discovery registration.
//
// The package never executes anything; execution with retries, idempotency
// and fail-fast policy lives in the engine package.
package tool

// Handler is the fixed executable signature every registered tool binds to.
// Richer inputs are expected to adapt themselves to the argument map; the
// runtime does no reflection-based dispatch.
//
// Handlers may block (network I/O is expected) and must be safe for
// concurrent use when independent runs execute in parallel.
type Handler func(args map[string]any) (any, error)

// ArgumentSpec declares the expected type of a single schema field and
// whether it is required. Type names follow the JSON primitive set: string,
// integer, number, boolean, object, array.
type ArgumentSpec struct {
	Type     string `json:"type" yaml:"type"`
	Required bool   `json:"required" yaml:"required"`
}

// Schema maps argument names to their specs. A nil Schema means the tool
// accepts any argument map.
type Schema map[string]ArgumentSpec

// Metadata describes a registered tool. It is immutable after registration;
// re-registering a tool id replaces the entry wholesale.
type Metadata struct {
	// ToolID is the unique registry key.
	ToolID string `json:"tool_id" yaml:"id"`
	// Name is the human readable tool name.
	Name string `json:"name" yaml:"name"`
	// Version distinguishes revisions of the same tool id.
	Version string `json:"version" yaml:"version"`
	// Description explains what the tool does.
	Description string `json:"description" yaml:"description"`
	// InputSchema declares accepted arguments. Optional.
	InputSchema Schema `json:"input_schema,omitempty" yaml:"schema"`
}
