// Package models defines the records persisted by the gateway's stores and
// the views derived from them.
package models

import "time"

// User is an account known to the gateway. The core treats it as read-only.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
