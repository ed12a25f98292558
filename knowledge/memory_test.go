package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryRetriever_TermOverlap(t *testing.T) {
	r := NewMemoryRetriever(
		"Redis caching guide",
		"Postgres schema migrations",
		"Redis and Postgres deployment checklist",
	)

	items, err := r.Retrieve(context.Background(), "redis postgres", 10)
	assert.NoError(t, err)
	// Best match first: the checklist shares both terms.
	assert.Equal(t, []string{
		"Redis and Postgres deployment checklist",
		"Redis caching guide",
		"Postgres schema migrations",
	}, items)
}

func TestMemoryRetriever_ExcludesZeroScores(t *testing.T) {
	r := NewMemoryRetriever("Redis caching guide", "Unrelated cooking recipe")

	items, err := r.Retrieve(context.Background(), "redis", 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"Redis caching guide"}, items)
}

func TestMemoryRetriever_TopKCap(t *testing.T) {
	r := NewMemoryRetriever("redis one", "redis two", "redis three")

	items, err := r.Retrieve(context.Background(), "redis", 2)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestMemoryRetriever_EmptyInputs(t *testing.T) {
	r := NewMemoryRetriever("redis")

	items, err := r.Retrieve(context.Background(), "", 5)
	assert.NoError(t, err)
	assert.Empty(t, items)

	items, err = r.Retrieve(context.Background(), "redis", 0)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryRetriever_Add(t *testing.T) {
	r := NewMemoryRetriever()
	r.Add("redis basics")

	items, err := r.Retrieve(context.Background(), "redis", 5)
	assert.NoError(t, err)
	assert.Equal(t, []string{"redis basics"}, items)
}
