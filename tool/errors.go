package tool

import "fmt"

// DuplicateRegistrationError is returned by Register when a tool id already
// holds an entry with the same version and overwrite was not requested.
type DuplicateRegistrationError struct {
	ToolID  string `json:"tool_id"`
	Version string `json:"version"`
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("tool %q version %q is already registered", e.ToolID, e.Version)
}

// UnknownToolError is returned when a call references a tool id with no
// registry entry.
type UnknownToolError struct {
	ToolID string `json:"tool_id"`
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q is not registered", e.ToolID)
}

// MissingArgumentError is returned when a required schema field is absent
// from a call's argument map.
type MissingArgumentError struct {
	ToolID string `json:"tool_id"`
	Field  string `json:"field"`
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("tool %q: required argument %q is missing", e.ToolID, e.Field)
}

// TypeMismatchError is returned when a supplied argument's runtime type does
// not conform to its declared schema type.
type TypeMismatchError struct {
	ToolID   string `json:"tool_id"`
	Field    string `json:"field"`
	Expected string `json:"expected"`
	Value    any    `json:"value,omitempty"`
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("tool %q: argument %q expected type %s, got %T", e.ToolID, e.Field, e.Expected, e.Value)
}
