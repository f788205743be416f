package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that can sell, bid and hold tokens. The account ID
// doubles as the token ledger account.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Password  string     `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}
