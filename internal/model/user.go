package model

import "time"

// Role is the kind of account a user holds.
type Role string

const (
	RoleTrainee    Role = "trainee"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainee, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus tracks admin approval. Only supervisors start out pending.
type AccountStatus string

const (
	StatusPending  AccountStatus = "pending"
	StatusApproved AccountStatus = "approved"
	StatusRejected AccountStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// InitialStatus is the status a freshly registered account of role r gets.
func InitialStatus(r Role) AccountStatus {
	if r == RoleSupervisor {
		return StatusPending
	}
	return StatusApproved
}

// User is an account that can sign in.
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Phone        string        `json:"phone,omitempty"`
	Role         Role          `json:"role"`
	Status       AccountStatus `json:"status"`
	PasswordHash string        `json:"-"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
}

// PasswordReset is a single-use reset token. Only the token's SHA-256 is stored.
type PasswordReset struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
