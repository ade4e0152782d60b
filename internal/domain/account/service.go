package account

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/medrec/medrec/internal/platform/apperr"
	"github.com/medrec/medrec/internal/platform/auth"
	"github.com/medrec/medrec/pkg/pagination"
)

// Service owns the credential and session lifecycle: registration, login,
// access-token refresh and logout.
type Service struct {
	users      UserRepository
	tokens     TokenRepository
	issuer     *auth.TokenIssuer
	bcryptCost int
	logger     zerolog.Logger

	now func() time.Time
}

func NewService(users UserRepository, tokens TokenRepository, issuer *auth.TokenIssuer, bcryptCost int, logger zerolog.Logger) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("component", "account").Logger(),
		now:        time.Now,
	}
}

const (
	minUsernameLen = 2
	minPasswordLen = 6
)

// RegisterInput is what a registration needs. Role defaults to the ordinary
// user role when empty.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

func validateRegister(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if len(in.Username) < minUsernameLen {
		return apperr.Validation("username must be at least 2 characters")
	}
	if !strings.Contains(in.Email, "@") {
		return apperr.Validation("a valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return apperr.Validation("password must be at least 6 characters")
	}
	if in.Role == "" {
		in.Role = auth.RoleUser
	}
	if !auth.ValidRole(in.Role) {
		return apperr.Validation("role must be user or admin")
	}
	return nil
}

// Register creates a user and opens a session for it. The pre-insert email
// check gives friendly errors in the common case; the unique constraints in
// the store are what make the operation safe under concurrent registration,
// so a constraint violation surfaces as the same conflict error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateRegister(&in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, apperr.Internal("looking up user", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal("hashing password", err)
	}

	user := &User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Internal("creating user", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return s.openSession(ctx, user)
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password are logged apart but reported to the client identically, so the
// response cannot be used to probe which emails exist.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("looking up user", err)
	}
	if user == nil {
		s.logger.Warn().Str("email", email).Msg("login failed: unknown email")
		return nil, apperr.Auth("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Int64("user_id", user.ID).Msg("login failed: wrong password")
		return nil, apperr.Auth("invalid credentials")
	}

	return s.openSession(ctx, user)
}

func (s *Service) openSession(ctx context.Context, user *User) (*Session, error) {
	now := s.now()
	access, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Role, now)
	if err != nil {
		return nil, apperr.Internal("signing access token", err)
	}
	refresh, err := s.issuer.IssueRefreshToken(user.ID, user.Email, user.Role, now)
	if err != nil {
		return nil, apperr.Internal("signing refresh token", err)
	}
	if _, err := s.tokens.Insert(ctx, user.ID, refresh, now.Add(s.issuer.RefreshTTL())); err != nil {
		return nil, apperr.Internal("persisting refresh token", err)
	}
	return &Session{Token: access, RefreshToken: refresh, User: user.Public()}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token itself is not rotated: the caller keeps presenting the same
// one until it expires or is revoked by logout. Changing that would silently
// invalidate sessions held by existing clients.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", apperr.Validation("refresh token is required")
	}

	now := s.now()
	claims, err := s.issuer.VerifyRefreshToken(refreshToken, now)
	if err != nil {
		return "", apperr.Auth("invalid or expired refresh token")
	}

	rec, err := s.tokens.FindActive(ctx, claims.UserID, refreshToken, now)
	if err != nil {
		return "", apperr.Internal("looking up refresh token", err)
	}
	if rec == nil {
		s.logger.Warn().Int64("user_id", claims.UserID).Msg("refresh rejected: token not on record")
		return "", apperr.Auth("invalid or expired refresh token")
	}
	if TokenExpired(rec.ExpiresAt, now) {
		s.logger.Warn().Int64("user_id", claims.UserID).Msg("refresh rejected: stored token expired")
		return "", apperr.Auth("invalid or expired refresh token")
	}

	access, err := s.issuer.IssueAccessToken(claims.UserID, claims.Email, claims.Role, now)
	if err != nil {
		return "", apperr.Internal("signing access token", err)
	}
	return access, nil
}

// Logout revokes a refresh token. Access tokens already issued stay valid
// until they expire; revocation only cuts off the ability to mint new ones.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperr.Validation("refresh token is required")
	}
	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return apperr.Internal("revoking refresh token", err)
	}
	if !deleted {
		return apperr.Auth("invalid refresh token")
	}
	return nil
}

// Profile returns the sanitized view of a single user.
func (s *Service) Profile(ctx context.Context, id int64) (*PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("looking up user", err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	pub := user.Public()
	return &pub, nil
}

// UpdateProfile applies a partial update to a user record.
func (s *Service) UpdateProfile(ctx context.Context, id int64, upd UserUpdate) (*PublicUser, error) {
	if upd.Username == nil && upd.Email == nil && upd.Role == nil {
		return nil, apperr.Validation("nothing to update")
	}
	if upd.Username != nil && len(strings.TrimSpace(*upd.Username)) < minUsernameLen {
		return nil, apperr.Validation("username must be at least 2 characters")
	}
	if upd.Email != nil && !strings.Contains(*upd.Email, "@") {
		return nil, apperr.Validation("a valid email is required")
	}
	if upd.Role != nil && !auth.ValidRole(*upd.Role) {
		return nil, apperr.Validation("role must be user or admin")
	}

	ok, err := s.users.Update(ctx, id, upd)
	if err != nil {
		if apperr.IsKind(err, apperr.KindConflict) {
			return nil, err
		}
		return nil, apperr.Internal("updating user", err)
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return s.Profile(ctx, id)
}

// ListUsers returns a page of sanitized users in insertion order.
func (s *Service) ListUsers(ctx context.Context, p pagination.Params) ([]PublicUser, int, error) {
	users, total, err := s.users.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, apperr.Internal("listing users", err)
	}
	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, total, nil
}

// CountUsers returns the total number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, apperr.Internal("counting users", err)
	}
	return n, nil
}
