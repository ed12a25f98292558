// Package history provides run-history persistence implementations of the
// core.HistoryStore collaborator: an in-memory store for development and
// tests, and a postgres store for durable deployments.
package history
