// Package storage provides the session store contract and its backends.
package storage

import (
	"context"

	"content-brainstorm/internal/models"
)

// SessionStore is the narrow store/retrieve contract consumed by the
// orchestrator and the monitoring layer. Retention semantics (eviction, TTL)
// are a backend concern; the contract only guarantees last-write-wins.
type SessionStore interface {
	Store(ctx context.Context, session *models.AnalysisSession) error
	Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error)
	List(ctx context.Context) ([]*models.AnalysisSession, error)
	Stats(ctx context.Context) map[string]interface{}
}
