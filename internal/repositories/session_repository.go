package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/chatJS-main/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository reads the session records of participant shards. Rows
// are issued by the identity layer at login; this service verifies tokens
// against them and enumerates them during fan-out, but never writes them.
type SessionRepository interface {
	ListByUID(ctx context.Context, uid string) ([]models.Session, error)
	FindBySID(ctx context.Context, sid string) (models.Session, error)
}

// SessionRepo is a sqlx implementation of SessionRepository.
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo constructs a SessionRepo.
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// ListByUID enumerates all sessions inside one participant's shard.
func (r *SessionRepo) ListByUID(ctx context.Context, uid string) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.SelectContext(ctx, &sessions, `SELECT sid, shard_uid FROM sessions WHERE shard_uid=$1`, uid)
	return sessions, err
}

// FindBySID verifies a session token against its shard.
func (r *SessionRepo) FindBySID(ctx context.Context, sid string) (models.Session, error) {
	var session models.Session
	err := r.db.GetContext(ctx, &session, `SELECT sid, shard_uid FROM sessions WHERE sid=$1`, sid)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	return session, err
}
