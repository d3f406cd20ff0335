package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shopbe/internal/apperr"
	"shopbe/internal/config"
)

type AccessTokenClaims struct {
	UserID   int    `json:"user_id"`
	DeviceID int    `json:"device_id"`
	RoleID   int    `json:"role_id"`
	RoleName string `json:"role_name"`
	jwt.RegisteredClaims
}

type RefreshTokenClaims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the two token kinds. Access and refresh use
// independent secrets, so one kind can never pass verification as the other.
type TokenService interface {
	SignAccessToken(userID, deviceID, roleID int, roleName string) (string, error)
	SignRefreshToken(userID int) (string, error)
	VerifyAccessToken(token string) (*AccessTokenClaims, error)
	VerifyRefreshToken(token string) (*RefreshTokenClaims, error)
}

type tokenService struct {
	cfg config.TokenConfig
}

func NewTokenService(cfg config.TokenConfig) TokenService {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) SignAccessToken(userID, deviceID, roleID int, roleName string) (string, error) {
	now := time.Now()
	claims := &AccessTokenClaims{
		UserID:   userID,
		DeviceID: deviceID,
		RoleID:   roleID,
		RoleName: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessExpiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessSecret))
}

func (s *tokenService) SignRefreshToken(userID int) (string, error) {
	now := time.Now()
	claims := &RefreshTokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// ID keeps tokens unique even when two logins for the same user
			// land within the same second; iat/exp alone would collide.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshExpiresIn)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.RefreshSecret))
}

func (s *tokenService) VerifyAccessToken(token string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	if err := s.parse(token, claims, s.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *tokenService) VerifyRefreshToken(token string) (*RefreshTokenClaims, error) {
	claims := &RefreshTokenClaims{}
	if err := s.parse(token, claims, s.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse collapses every verification failure (expiry, bad signature, wrong
// method) into apperr.ErrInvalidToken; callers get one failure kind.
func (s *tokenService) parse(token string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return apperr.ErrInvalidToken
	}
	return nil
}
