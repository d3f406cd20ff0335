package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type PasswordService interface {
	Hash(plain string) (string, error)
	// Compare reports whether plain matches the stored hash. bcrypt's own
	// comparison is constant-time over the digest.
	Compare(hash, plain string) bool
}

type passwordService struct {
	cost int
}

func NewPasswordService() PasswordService {
	return &passwordService{cost: bcrypt.DefaultCost}
}

func (s *passwordService) Hash(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *passwordService) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
