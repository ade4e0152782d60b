package auth

import (
	"errors"
	"testing"
	"time"
)

var (
	testAccessSecret  = []byte("access-secret-for-unit-tests-0123456789")
	testRefreshSecret = []byte("refresh-secret-for-unit-tests-0123456789")
)

func testIssuer() *TokenIssuer {
	return NewTokenIssuer(testAccessSecret, testRefreshSecret, 24*time.Hour, 168*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	issuer := testIssuer()
	now := time.Now()

	tokenStr, err := issuer.IssueAccessToken(42, "a@x.com", "admin", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.VerifyAccessToken(tokenStr, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user_id 42, got %d", claims.UserID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %s", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("expected role admin, got %s", claims.Role)
	}
	exp := claims.ExpiresAt.Time
	if want := now.Add(24 * time.Hour); exp.Sub(want) > time.Second || want.Sub(exp) > time.Second {
		t.Errorf("expected exp ~%v, got %v", want, exp)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	issuer := testIssuer()
	issued := time.Now().Add(-25 * time.Hour)

	tokenStr, err := issuer.IssueAccessToken(1, "u@x.com", "user", issued)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Expired at any verification time past exp, no matter how small the margin.
	for _, now := range []time.Time{
		issued.Add(24*time.Hour + time.Second),
		time.Now(),
		time.Now().Add(365 * 24 * time.Hour),
	} {
		if _, err := issuer.VerifyAccessToken(tokenStr, now); !errors.Is(err, ErrTokenExpired) {
			t.Errorf("at %v: expected ErrTokenExpired, got %v", now, err)
		}
	}
}

func TestAccessToken_NotYetExpired(t *testing.T) {
	issuer := testIssuer()
	now := time.Now()
	tokenStr, _ := issuer.IssueAccessToken(1, "u@x.com", "user", now)

	if _, err := issuer.VerifyAccessToken(tokenStr, now.Add(23*time.Hour)); err != nil {
		t.Fatalf("expected token still valid, got %v", err)
	}
}

func TestKeySeparation(t *testing.T) {
	issuer := testIssuer()
	now := time.Now()

	accessStr, _ := issuer.IssueAccessToken(7, "u@x.com", "user", now)
	refreshStr, _ := issuer.IssueRefreshToken(7, "u@x.com", "user", now)

	// A refresh token must not pass access verification, and vice versa.
	if _, err := issuer.VerifyAccessToken(refreshStr, now); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("refresh token accepted as access token: %v", err)
	}
	if _, err := issuer.VerifyRefreshToken(accessStr, now); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("access token accepted as refresh token: %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	issuer := testIssuer()
	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.VerifyAccessToken(tt.token, now); !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("expected ErrTokenInvalid, got %v", err)
			}
		})
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	issuer := testIssuer()
	other := NewTokenIssuer([]byte("a-completely-different-secret-0123456789"), testRefreshSecret, time.Hour, time.Hour)
	now := time.Now()

	tokenStr, _ := other.IssueAccessToken(9, "u@x.com", "user", now)
	if _, err := issuer.VerifyAccessToken(tokenStr, now); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestRefreshToken_ExpiryWindow(t *testing.T) {
	issuer := testIssuer()
	now := time.Now()
	tokenStr, _ := issuer.IssueRefreshToken(3, "u@x.com", "user", now)

	if _, err := issuer.VerifyRefreshToken(tokenStr, now.Add(167*time.Hour)); err != nil {
		t.Fatalf("expected refresh token valid inside 7d window, got %v", err)
	}
	if _, err := issuer.VerifyRefreshToken(tokenStr, now.Add(169*time.Hour)); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired past 7d window, got %v", err)
	}
}
