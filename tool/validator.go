package tool

import (
	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/internal/util"
)

// Validator checks tool calls against the registry before execution. It
// enforces tool existence, required-argument presence and primitive type
// conformance; it never executes tools and never mutates calls.
//
// Unknown argument keys are tolerated on purpose: rejecting them would break
// forward compatibility whenever a handler learns a new optional argument
// before every caller's schema copy catches up.
type Validator struct {
	registry *Registry
}

// NewValidator creates a Validator bound to a registry.
func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks one call. It returns *UnknownToolError for unregistered
// ids, *MissingArgumentError for absent required fields and
// *TypeMismatchError for arguments whose runtime type does not conform to
// the declared schema type. A tool without a schema accepts any arguments.
func (v *Validator) Validate(call core.ToolCall) error {
	if !v.registry.Has(call.ToolID) {
		return &UnknownToolError{ToolID: call.ToolID}
	}

	schema, ok := v.registry.GetSchema(call.ToolID)
	if !ok {
		return nil
	}

	for field, spec := range schema {
		value, present := call.Arguments[field]
		if !present {
			if spec.Required {
				return &MissingArgumentError{ToolID: call.ToolID, Field: field}
			}
			continue
		}
		if spec.Type != "" && !util.MatchesType(value, spec.Type) {
			return &TypeMismatchError{ToolID: call.ToolID, Field: field, Expected: spec.Type, Value: value}
		}
	}

	return nil
}
