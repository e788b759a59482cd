package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/chatJS-main/internal/models"
)

var ErrChannelKeyNotFound = errors.New("channel key not found")

// ChannelKeyRepository accesses the channel-key records inside participant
// shards. Every operation is scoped to a single shard; no call spans shards.
type ChannelKeyRepository interface {
	Resolve(ctx context.Context, shardUID, channelID string) (models.ChannelKeyRecord, error)
	FindByCounterpart(ctx context.Context, shardUID, counterpart string) (models.ChannelKeyRecord, error)
	MarkOpenUnread(ctx context.Context, shardUID string, rec models.ChannelKeyRecord) error
	ClearUnread(ctx context.Context, shardUID, counterpart string) error
}

// ChannelKeyRepo is a sqlx implementation of ChannelKeyRepository.
type ChannelKeyRepo struct {
	db *sqlx.DB
}

// NewChannelKeyRepo constructs a ChannelKeyRepo.
func NewChannelKeyRepo(db *sqlx.DB) *ChannelKeyRepo {
	return &ChannelKeyRepo{db: db}
}

// Resolve looks up a channel-key record by channel id in the given shard.
func (r *ChannelKeyRepo) Resolve(ctx context.Context, shardUID, channelID string) (models.ChannelKeyRecord, error) {
	var rec models.ChannelKeyRecord
	err := r.db.GetContext(ctx, &rec, `SELECT channel_id, is_group, members, open, unread
        FROM channel_keys WHERE shard_uid=$1 AND channel_id=$2`, shardUID, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChannelKeyRecord{}, ErrChannelKeyNotFound
	}
	return rec, err
}

// FindByCounterpart looks up a record by its encoded member field. Direct
// records store the single counterparty uid there, so this resolves a direct
// channel from the other participant's uid.
func (r *ChannelKeyRepo) FindByCounterpart(ctx context.Context, shardUID, counterpart string) (models.ChannelKeyRecord, error) {
	var rec models.ChannelKeyRecord
	err := r.db.GetContext(ctx, &rec, `SELECT channel_id, is_group, members, open, unread
        FROM channel_keys WHERE shard_uid=$1 AND members=$2`, shardUID, counterpart)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ChannelKeyRecord{}, ErrChannelKeyNotFound
	}
	return rec, err
}

// MarkOpenUnread flags the shard owner's record for rec.ChannelID as open and
// unread, creating the record on first delivery.
func (r *ChannelKeyRepo) MarkOpenUnread(ctx context.Context, shardUID string, rec models.ChannelKeyRecord) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO channel_keys (shard_uid, channel_id, is_group, members, open, unread)
        VALUES ($1, $2, $3, $4, TRUE, TRUE)
        ON CONFLICT (shard_uid, channel_id) DO UPDATE SET open = TRUE, unread = TRUE`,
		shardUID, rec.ChannelID, rec.IsGroup, rec.Members)
	return err
}

// ClearUnread clears the unread flag on the shard owner's record pointing at
// the given counterparty. Group records are keyed by the full member set and
// are deliberately not matched here.
func (r *ChannelKeyRepo) ClearUnread(ctx context.Context, shardUID, counterpart string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE channel_keys SET unread = FALSE
        WHERE shard_uid=$1 AND members=$2`, shardUID, counterpart)
	return err
}
