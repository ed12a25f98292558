package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func calcMetadata(version string) Metadata {
	return Metadata{
		ToolID:      "calc",
		Name:        "Calculator",
		Version:     version,
		Description: "Adds numbers.",
		InputSchema: Schema{
			"a": {Type: "number", Required: true},
			"b": {Type: "number", Required: true},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	err := r.Register(calcMetadata("1.0.0"), func(args map[string]any) (any, error) { return nil, nil }, false)
	assert.NoError(t, err)

	m, ok := r.Get("calc")
	assert.True(t, ok)
	assert.Equal(t, "Calculator", m.Name)

	_, ok = r.GetHandler("calc")
	assert.True(t, ok)

	schema, ok := r.GetSchema("calc")
	assert.True(t, ok)
	assert.Contains(t, schema, "a")

	assert.True(t, r.Has("calc"))
	assert.False(t, r.Has("missing"))
}

func TestRegistry_DuplicateSameVersionRejected(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))

	err := r.Register(calcMetadata("1.0.0"), nil, false)
	assert.Error(t, err)
	dup, ok := err.(*DuplicateRegistrationError)
	assert.True(t, ok)
	assert.Equal(t, "calc", dup.ToolID)
	assert.Equal(t, "1.0.0", dup.Version)
}

func TestRegistry_NewVersionReplaces(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))
	assert.NoError(t, r.Register(calcMetadata("2.0.0"), nil, false))

	m, _ := r.Get("calc")
	assert.Equal(t, "2.0.0", m.Version)
}

func TestRegistry_OverwriteForcesReplacement(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, true))
}

func TestRegistry_MetadataOnlyRegistration(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))

	assert.True(t, r.Has("calc"))
	_, ok := r.GetHandler("calc")
	assert.False(t, ok)
}

func TestRegistry_OverwriteWithoutHandlerUnbinds(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), func(map[string]any) (any, error) { return nil, nil }, false))
	assert.NoError(t, r.Register(calcMetadata("2.0.0"), nil, false))

	// Replacement is wholesale: the old handler does not survive.
	_, ok := r.GetHandler("calc")
	assert.False(t, ok)
}

func TestRegistry_List(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))
	assert.NoError(t, RegisterEcho(r))

	list := r.List()
	assert.Len(t, list, 2)
	ids := []string{list[0].ToolID, list[1].ToolID}
	assert.ElementsMatch(t, []string{"calc", "echo"}, ids)
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Register(calcMetadata("1.0.0"), nil, false))

	r.Remove("calc")
	assert.False(t, r.Has("calc"))
	r.Remove("calc") // no-op
	r.Remove("never-registered")
}

func TestRegistry_GetSchemaAbsent(t *testing.T) {
	r := NewRegistry()
	meta := calcMetadata("1.0.0")
	meta.InputSchema = nil
	assert.NoError(t, r.Register(meta, nil, false))

	_, ok := r.GetSchema("calc")
	assert.False(t, ok)
	_, ok = r.GetSchema("missing")
	assert.False(t, ok)
}
