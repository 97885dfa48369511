package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"messego/internal/models"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	// ErrNotMessageOwner means the actor is not the sender of the message.
	// Only the sender may soft-delete.
	ErrNotMessageOwner = errors.New("message not owned by actor")
	// ErrPartialOwnership rejects a bulk delete when any requested id is
	// missing, already deleted, or owned by someone else.
	ErrPartialOwnership = errors.New("some messages not found or not owned by actor")
)

const messageColumns = `m.id, m.from_id, m.to_id, m.type, m.text, m.image_url, m.image_public_id,
        m.is_read, m.read_at, m.created_at,
        f.id AS "from.id", f.name AS "from.name", f.email AS "from.email",
        t.id AS "to.id", t.name AS "to.name", t.email AS "to.email"`

// MessageRepository defines persistence for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	ListConversation(ctx context.Context, viewerID, otherID, limit, offset int) ([]models.Message, error)
	CountConversation(ctx context.Context, viewerID, otherID int) (int, error)
	MarkConversationRead(ctx context.Context, viewerID, otherID int) (int, error)
	CountUnread(ctx context.Context, viewerID, otherID int) (int, error)
	SoftDelete(ctx context.Context, messageID, actorID int) (models.Message, error)
	SoftDeleteMany(ctx context.Context, messageIDs []int, actorID int) (int, error)
	SoftDeleteConversationSide(ctx context.Context, actorID, otherID int) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create stores a new message and returns it enriched with sender and
// receiver summaries.
func (r *MessageRepo) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	var id int
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (from_id, to_id, type, text, image_url, image_public_id)
         VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		msg.FromID, msg.ToID, msg.Type, msg.Text, msg.ImageURL, msg.ImagePublicID).Scan(&id)
	if err != nil {
		return models.Message{}, err
	}
	return r.getByID(ctx, id)
}

func (r *MessageRepo) getByID(ctx context.Context, messageID int) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT `+messageColumns+`
         FROM messages m
         JOIN users f ON f.id = m.from_id
         JOIN users t ON t.id = m.to_id
         WHERE m.id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// ListConversation returns the non-deleted messages exchanged between the two
// users, oldest first, page-sliced.
func (r *MessageRepo) ListConversation(ctx context.Context, viewerID, otherID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT `+messageColumns+`
         FROM messages m
         JOIN users f ON f.id = m.from_id
         JOIN users t ON t.id = m.to_id
         WHERE m.deleted_at IS NULL
           AND ((m.from_id=$1 AND m.to_id=$2) OR (m.from_id=$2 AND m.to_id=$1))
         ORDER BY m.created_at ASC
         LIMIT $3 OFFSET $4`, viewerID, otherID, limit, offset)
	return msgs, err
}

// CountConversation counts the non-deleted messages between the two users.
func (r *MessageRepo) CountConversation(ctx context.Context, viewerID, otherID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE deleted_at IS NULL
           AND ((from_id=$1 AND to_id=$2) OR (from_id=$2 AND to_id=$1))`, viewerID, otherID)
	return count, err
}

// MarkConversationRead flips every unread message other->viewer to read in a
// single conditional update. read_at is written only on this transition and
// never reset. Returns the number of rows changed.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, viewerID, otherID int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE, read_at = NOW()
         WHERE from_id=$1 AND to_id=$2 AND is_read = FALSE AND deleted_at IS NULL`,
		otherID, viewerID)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}

// CountUnread counts unread live messages addressed to the viewer from the
// other user.
func (r *MessageRepo) CountUnread(ctx context.Context, viewerID, otherID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages
         WHERE from_id=$1 AND to_id=$2 AND is_read = FALSE AND deleted_at IS NULL`,
		otherID, viewerID)
	return count, err
}

// SoftDelete marks a message deleted in one conditional update so two
// concurrent deletes cannot double-apply. Returns the deleted row so the
// caller can clean up any attached media. A zero-row update is classified
// into not-found vs not-owner with a follow-up read.
func (r *MessageRepo) SoftDelete(ctx context.Context, messageID, actorID int) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`UPDATE messages SET deleted_at = NOW()
         WHERE id=$1 AND from_id=$2 AND deleted_at IS NULL
         RETURNING id, from_id, to_id, type, text, image_url, image_public_id, is_read, read_at, created_at, deleted_at`,
		messageID, actorID).StructScan(&msg)
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, err
	}

	var fromID int
	err = r.db.GetContext(ctx, &fromID,
		`SELECT from_id FROM messages WHERE id=$1 AND deleted_at IS NULL`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{}, ErrNotMessageOwner
}

// SoftDeleteMany deletes a batch of the actor's messages all-or-nothing. If
// any requested id is not a live message owned by the actor the transaction
// rolls back and nothing changes.
func (r *MessageRepo) SoftDeleteMany(ctx context.Context, messageIDs []int, actorID int) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE messages SET deleted_at = NOW()
         WHERE id = ANY($1) AND from_id=$2 AND deleted_at IS NULL`,
		pq.Array(messageIDs), actorID)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if int(count) != len(messageIDs) {
		return 0, ErrPartialOwnership
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(count), nil
}

// SoftDeleteConversationSide deletes every live message the actor sent to the
// other user and reports how many rows changed.
func (r *MessageRepo) SoftDeleteConversationSide(ctx context.Context, actorID, otherID int) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE messages SET deleted_at = NOW()
         WHERE from_id=$1 AND to_id=$2 AND deleted_at IS NULL`, actorID, otherID)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}
