// Package knowledge provides implementations of the core.Retriever
// collaborator consulted during planning: a term-overlap in-memory retriever
// and a redis-backed caching decorator. Embedding-based retrieval lives
// outside the runtime; these implementations exist so planning enrichment
// works end to end without an external knowledge service.
package knowledge
