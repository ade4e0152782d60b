package account

import (
	"context"
	"time"
)

// UserRepository is the persistence boundary for user records. Lookups return
// (nil, nil) when no row matches, so callers can tell "absent" from "broken"
// without sentinel errors.
type UserRepository interface {
	// Create inserts the user and fills in ID, CreatedAt and UpdatedAt.
	// Duplicate email or username surfaces as a conflict error; the unique
	// constraints in the schema are what make concurrent registration safe.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// Update applies the non-nil fields of upd and reports whether a row
	// was touched.
	Update(ctx context.Context, id int64, upd UserUpdate) (bool, error)
	// List returns users in insertion order plus the total count.
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Count(ctx context.Context) (int, error)
}

// TokenRepository is the persistence boundary for refresh tokens.
type TokenRepository interface {
	Insert(ctx context.Context, userID int64, token string, expiresAt time.Time) (*RefreshToken, error)
	// FindActive returns the newest row matching userID and token whose
	// expiry is still in the future, or (nil, nil) when there is none.
	FindActive(ctx context.Context, userID int64, token string, now time.Time) (*RefreshToken, error)
	// Delete removes the row holding token and reports whether one existed.
	Delete(ctx context.Context, token string) (bool, error)
}
