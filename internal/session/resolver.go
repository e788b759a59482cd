package session

import (
	"context"
	"errors"
	"strings"

	"github.com/fossabot/chatJS-main/internal/repositories"
)

var ErrInvalidToken = errors.New("invalid session token")

// Session tokens are issued by the identity layer as "<uid>.<secret>". The
// uid prefix makes the owning shard derivable from the token alone; the full
// token is then verified against that shard's session records where a
// registered session is required.
type Resolver struct {
	sessions repositories.SessionRepository
}

// NewResolver builds a Resolver.
func NewResolver(sessions repositories.SessionRepository) *Resolver {
	return &Resolver{sessions: sessions}
}

// UIDFromToken extracts the owning uid from a session token without touching
// the store.
func UIDFromToken(token string) (string, error) {
	uid, _, found := strings.Cut(token, ".")
	if !found || uid == "" {
		return "", ErrInvalidToken
	}
	return uid, nil
}

// Verify checks that the token corresponds to a registered session in the
// owner's shard and returns the uid.
func (r *Resolver) Verify(ctx context.Context, token string) (string, error) {
	uid, err := UIDFromToken(token)
	if err != nil {
		return "", err
	}
	sess, err := r.sessions.FindBySID(ctx, token)
	if err != nil {
		return "", err
	}
	if sess.UID != uid {
		return "", ErrInvalidToken
	}
	return uid, nil
}
