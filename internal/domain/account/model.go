package account

import (
	"time"
)

// User maps to the users table. PasswordHash never leaves the package: API
// responses carry the Public view.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PublicUser is the sanitized view returned by the API.
type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserUpdate carries the only fields the profile-update path may change.
// Anything else a client posts is dropped before it gets here.
type UserUpdate struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
}

// RefreshToken maps to the refresh_tokens table. A user may hold any number
// of concurrent tokens; rows are deleted on logout and otherwise left to go
// stale past expires_at.
type RefreshToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Token     string    `db:"token" json:"-"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TokenExpired reports whether a token's expiry has passed. Kept as a pure
// helper so callers can tell "found but expired" from "not found" in logs,
// even though both collapse to the same client-visible error.
func TokenExpired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}

// Session is the result of a successful register or login.
type Session struct {
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
	User         PublicUser `json:"user"`
}
