package knowledge

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRetriever scores ingested documents by query term overlap. It is
// deliberately simple: planning only needs a count and a few snippets, not
// semantic similarity.
type MemoryRetriever struct {
	mu   sync.RWMutex
	docs []string
}

// NewMemoryRetriever creates a retriever seeded with the given documents.
func NewMemoryRetriever(docs ...string) *MemoryRetriever {
	return &MemoryRetriever{docs: docs}
}

// Add ingests additional documents.
func (r *MemoryRetriever) Add(docs ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.docs = append(r.docs, docs...)
}

// Retrieve implements core.Retriever. Documents sharing no terms with the
// query are excluded; the rest are returned best-match first, capped at
// topK.
func (r *MemoryRetriever) Retrieve(_ context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		return nil, nil
	}

	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type scored struct {
		doc   string
		score int
	}

	matches := make([]scored, 0, len(r.docs))
	for _, doc := range r.docs {
		lowered := strings.ToLower(doc)
		score := 0
		for _, term := range terms {
			if strings.Contains(lowered, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	if len(matches) > topK {
		matches = matches[:topK]
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.doc
	}
	return out, nil
}
