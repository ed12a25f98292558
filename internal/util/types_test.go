package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesType(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		typeName string
		want     bool
	}{
		{"string ok", "hello", "string", true},
		{"string wrong", 1, "string", false},
		{"integer int", 42, "integer", true},
		{"integer whole float64", float64(42), "integer", true},
		{"integer fractional float64", 42.5, "integer", false},
		{"integer string", "42", "integer", false},
		{"number int", 42, "number", true},
		{"number float", 42.5, "number", true},
		{"number string", "42.5", "number", false},
		{"boolean ok", true, "boolean", true},
		{"boolean wrong", "true", "boolean", false},
		{"object ok", map[string]any{"k": "v"}, "object", true},
		{"object wrong", []any{}, "object", false},
		{"array generic", []any{1, 2}, "array", true},
		{"array strings", []string{"a"}, "array", true},
		{"array bools", []bool{true, false}, "array", true},
		{"array int64s", []int64{1, 2}, "array", true},
		{"array fixed size", [2]int{1, 2}, "array", true},
		{"array wrong", map[string]any{}, "array", false},
		{"array nil", nil, "array", false},
		{"unknown type accepts anything", struct{}{}, "uuid", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesType(tt.value, tt.typeName))
		})
	}
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
