package services

import (
	"errors"
	"testing"
	"time"

	"shopbe/internal/apperr"
	"shopbe/internal/config"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewTokenService(testTokenConfig())

	token, err := s.SignAccessToken(7, 3, 1, "Client")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	claims, err := s.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != 7 || claims.DeviceID != 3 || claims.RoleID != 1 || claims.RoleName != "Client" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > 15*time.Minute {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestRefreshTokensForSameUserAreUnique(t *testing.T) {
	t.Parallel()

	s := NewTokenService(testTokenConfig())

	// Back-to-back signing lands in the same second, so iat/exp alone would
	// produce identical tokens; the jti must keep them distinct.
	first, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	second, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if first == second {
		t.Fatal("two refresh tokens for the same user are identical")
	}
	for _, token := range []string{first, second} {
		claims, err := s.VerifyRefreshToken(token)
		if err != nil {
			t.Fatalf("verify refresh: %v", err)
		}
		if claims.ID == "" {
			t.Fatal("refresh claims missing jti")
		}
	}
}

func TestTokenKindsCannotCross(t *testing.T) {
	t.Parallel()

	s := NewTokenService(testTokenConfig())

	access, err := s.SignAccessToken(7, 3, 1, "Client")
	if err != nil {
		t.Fatalf("sign access: %v", err)
	}
	refresh, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}

	if _, err := s.VerifyRefreshToken(access); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("access token passed refresh verification: %v", err)
	}
	if _, err := s.VerifyAccessToken(refresh); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("refresh token passed access verification: %v", err)
	}
}

func TestExpiredAndMalformedCollapseToInvalidToken(t *testing.T) {
	t.Parallel()

	cfg := testTokenConfig()
	cfg.RefreshExpiresIn = -time.Minute
	s := NewTokenService(cfg)

	expired, err := s.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := s.VerifyRefreshToken(expired); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
	if _, err := s.VerifyRefreshToken("not-a-jwt"); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	s := NewTokenService(testTokenConfig())
	other := NewTokenService(config.TokenConfig{
		AccessSecret:     "different-access",
		AccessExpiresIn:  15 * time.Minute,
		RefreshSecret:    "different-refresh",
		RefreshExpiresIn: time.Hour,
	})

	token, err := other.SignRefreshToken(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := s.VerifyRefreshToken(token); !errors.Is(err, apperr.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign secret, got %v", err)
	}
}
