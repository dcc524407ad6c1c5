package user

import (
	"time"

	"github.com/google/uuid"
)

// Account statuses. New registrations start pending until an
// administrator approves them.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is a committee member account.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	FullName     string    `db:"full_name" json:"full_name"`
	Specialty    *string   `db:"specialty" json:"specialty,omitempty"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsApproved reports whether the account may log in.
func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}
