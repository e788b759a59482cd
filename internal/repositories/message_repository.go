package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/fossabot/chatJS-main/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// MessageRepository accesses the shared per-channel message collections.
// Authorization is the caller's concern; these methods perform none.
type MessageRepository interface {
	Insert(ctx context.Context, namespace, channelID string, msg models.Message) error
	FindByID(ctx context.Context, namespace, channelID, messageID string) (models.Message, error)
	ListActive(ctx context.Context, namespace, channelID string) ([]models.Message, error)
	MarkDeleted(ctx context.Context, namespace, channelID, messageID string) error
	UpdateContent(ctx context.Context, namespace, channelID, messageID string, content json.RawMessage) error
	FindConfig(ctx context.Context, namespace, channelID string) (json.RawMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

type messageRow struct {
	ID         string         `db:"id"`
	AuthorUID  string         `db:"author_uid"`
	AuthorName string         `db:"author_name"`
	Timestamp  string         `db:"ts"`
	Content    sql.NullString `db:"content"`
	Deleted    bool           `db:"deleted"`
}

func (row messageRow) toModel() models.Message {
	msg := models.Message{
		ID:        row.ID,
		Author:    models.Author{UID: row.AuthorUID, Username: row.AuthorName},
		Timestamp: row.Timestamp,
		Deleted:   row.Deleted,
	}
	if row.Content.Valid {
		msg.Content = json.RawMessage(row.Content.String)
	}
	return msg
}

// Insert appends a message to the channel's collection. The channel id is
// carried by the collection key, not the stored body.
func (r *MessageRepo) Insert(ctx context.Context, namespace, channelID string, msg models.Message) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO messages (namespace, channel_id, id, author_uid, author_name, ts, content, deleted)
        VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`,
		namespace, channelID, msg.ID, msg.Author.UID, msg.Author.Username, msg.Timestamp, nullableJSON(msg.Content))
	return err
}

// FindByID retrieves a single message.
func (r *MessageRepo) FindByID(ctx context.Context, namespace, channelID, messageID string) (models.Message, error) {
	var row messageRow
	err := r.db.GetContext(ctx, &row, `SELECT id, author_uid, author_name, ts, content, deleted
        FROM messages WHERE namespace=$1 AND channel_id=$2 AND id=$3`, namespace, channelID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	return row.toModel(), nil
}

// ListActive returns all non-deleted messages of a channel in insertion
// order, excluding the reserved configs entry.
func (r *MessageRepo) ListActive(ctx context.Context, namespace, channelID string) ([]models.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT id, author_uid, author_name, ts, content, deleted
        FROM messages
        WHERE namespace=$1 AND channel_id=$2 AND deleted = FALSE AND id <> $3
        ORDER BY ts ASC`, namespace, channelID, models.ConfigsID)
	if err != nil {
		return nil, err
	}
	msgs := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toModel())
	}
	return msgs, nil
}

// MarkDeleted soft-deletes a message. Idempotent.
func (r *MessageRepo) MarkDeleted(ctx context.Context, namespace, channelID, messageID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET deleted = TRUE
        WHERE namespace=$1 AND channel_id=$2 AND id=$3`, namespace, channelID, messageID)
	return err
}

// UpdateContent replaces a message's content. Blind write, last writer wins.
func (r *MessageRepo) UpdateContent(ctx context.Context, namespace, channelID, messageID string, content json.RawMessage) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages SET content=$4
        WHERE namespace=$1 AND channel_id=$2 AND id=$3`, namespace, channelID, messageID, nullableJSON(content))
	return err
}

// FindConfig loads the reserved configs entry of a channel, if present.
func (r *MessageRepo) FindConfig(ctx context.Context, namespace, channelID string) (json.RawMessage, error) {
	var content sql.NullString
	err := r.db.GetContext(ctx, &content, `SELECT content FROM messages
        WHERE namespace=$1 AND channel_id=$2 AND id=$3`, namespace, channelID, models.ConfigsID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	if !content.Valid {
		return nil, nil
	}
	return json.RawMessage(content.String), nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
