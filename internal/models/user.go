package models

import (
	"fmt"
	"net/url"
	"time"
)

// User is a registered account. The password hash never leaves the service.
type User struct {
	ID           int       `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// UserSummary is the public view of a user embedded in message payloads
// and contact listings.
type UserSummary struct {
	ID    int    `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// Contact is a directory entry returned by the user listing.
type Contact struct {
	ID         int       `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	ProfileURL string    `json:"profileUrl"`
}

// AvatarURL derives a deterministic avatar image URL from a display name.
func AvatarURL(name string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=6366f1&color=ffffff&size=128", url.QueryEscape(name))
}
