package models

import "time"

// Message types.
const (
	MessageTypeText  = "TEXT"
	MessageTypeImage = "IMAGE"
)

// Message is a direct message between two users. Exactly one of Text or the
// image reference pair is set, matching Type. A non-nil DeletedAt hides the
// row from every listing and count; the row itself is never removed.
type Message struct {
	ID            int        `db:"id" json:"id"`
	FromID        int        `db:"from_id" json:"fromId"`
	ToID          int        `db:"to_id" json:"toId"`
	Type          string     `db:"type" json:"type"`
	Text          *string    `db:"text" json:"text"`
	ImageURL      *string    `db:"image_url" json:"imageUrl"`
	ImagePublicID *string    `db:"image_public_id" json:"imagePublicId,omitempty"`
	IsRead        bool       `db:"is_read" json:"isRead"`
	ReadAt        *time.Time `db:"read_at" json:"readAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	DeletedAt     *time.Time `db:"deleted_at" json:"-"`

	From UserSummary `db:"from" json:"from"`
	To   UserSummary `db:"to" json:"to"`
}
