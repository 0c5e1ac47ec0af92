package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "content-brainstorm/internal/common/errors"
	"content-brainstorm/internal/common/logger"
	"content-brainstorm/internal/common/metrics"
	"content-brainstorm/internal/models"
)

// PostgresStore persists sessions in an analysis_sessions table with the
// full aggregate as a JSONB payload. Upsert on session_id gives the
// last-write-wins semantics the contract requires; no eviction.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS analysis_sessions (
	session_id TEXT PRIMARY KEY,
	url        TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
)`

func NewPostgresStore(db *sql.DB, log logger.Logger) (*PostgresStore, error) {
	if _, err := db.Exec(createSessionsTable); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return &PostgresStore{
		db: db,
		logger: log.With(map[string]interface{}{
			"store": "postgres",
		}),
	}, nil
}

func (s *PostgresStore) Store(ctx context.Context, session *models.AnalysisSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_sessions (session_id, url, created_at, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE
		SET url = EXCLUDED.url, created_at = EXCLUDED.created_at, payload = EXCLUDED.payload`,
		session.SessionID, session.URL, session.CreatedAt, payload,
	)
	if err != nil {
		return apperrors.NewSessionStoreFailedError(err)
	}

	metrics.SessionsStored.WithLabelValues("postgres").Inc()
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analysis_sessions WHERE session_id = $1`, sessionID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewSessionNotFoundError(sessionID)
	}
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return &session, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.AnalysisSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analysis_sessions ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	defer rows.Close()

	var sessions []*models.AnalysisSession
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.NewSessionStoreFailedError(err)
		}
		var session models.AnalysisSession
		if err := json.Unmarshal(payload, &session); err != nil {
			return nil, apperrors.NewSessionStoreFailedError(err)
		}
		sessions = append(sessions, &session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewSessionStoreFailedError(err)
	}
	return sessions, nil
}

func (s *PostgresStore) Stats(ctx context.Context) map[string]interface{} {
	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM analysis_sessions`).Scan(&total); err != nil {
		total = -1
	}
	return map[string]interface{}{
		"implementation": "postgres",
		"totalSessions":  total,
	}
}
