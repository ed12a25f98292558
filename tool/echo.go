package tool

// EchoMetadata describes the built-in echo tool used by examples and smoke
// tests: it returns its message argument unchanged.
var EchoMetadata = Metadata{
	ToolID:      "echo",
	Name:        "Echo",
	Version:     "1.0.0",
	Description: "Returns the message argument unchanged.",
	InputSchema: Schema{
		"message": {Type: "string", Required: true},
	},
}

// EchoHandler implements the echo tool.
func EchoHandler(args map[string]any) (any, error) {
	return map[string]any{"echo": args["message"]}, nil
}

// RegisterEcho registers the built-in echo tool.
func RegisterEcho(registry *Registry) error {
	return registry.Register(EchoMetadata, EchoHandler, false)
}
