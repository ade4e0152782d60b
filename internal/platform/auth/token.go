package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid covers bad signatures and malformed payloads.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when the token is well-formed and correctly
	// signed but its expiry has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the payload embedded in both access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// TokenIssuer mints and verifies HS256 tokens. Access and refresh tokens are
// signed with distinct secrets so possession of one never lets an attacker
// forge the other kind. Verification is stateless; refresh-token revocation is
// the session service's concern, not this type's.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// AccessTTL returns the configured access-token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssueAccessToken signs an access token for the given identity.
// Deterministic given its inputs and now.
func (i *TokenIssuer) IssueAccessToken(userID int64, email, role string, now time.Time) (string, error) {
	return i.sign(userID, email, role, now, i.accessTTL, i.accessSecret)
}

// IssueRefreshToken signs a refresh token with the refresh secret.
func (i *TokenIssuer) IssueRefreshToken(userID int64, email, role string, now time.Time) (string, error) {
	return i.sign(userID, email, role, now, i.refreshTTL, i.refreshSecret)
}

func (i *TokenIssuer) sign(userID int64, email, role string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyAccessToken validates signature and expiry against the access secret
// and returns the decoded claims. It never touches any store.
func (i *TokenIssuer) VerifyAccessToken(tokenStr string, now time.Time) (*Claims, error) {
	return verify(tokenStr, i.accessSecret, now)
}

// VerifyRefreshToken validates signature and expiry against the refresh
// secret. Callers must additionally confirm the token against the refresh
// token store before trusting it; the signature alone proves issuance, not
// that the token is still active.
func (i *TokenIssuer) VerifyRefreshToken(tokenStr string, now time.Time) (*Claims, error) {
	return verify(tokenStr, i.refreshSecret, now)
}

func verify(tokenStr string, secret []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
