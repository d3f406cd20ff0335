package models

import "time"

// VerificationCode — at most one active row per email, overwritten on every send.
type VerificationCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	Type      string    `json:"type"`
	ExpiresAt time.Time `json:"expires_at"`
}

const (
	VerificationCodeRegister       = "REGISTER"
	VerificationCodeForgotPassword = "FORGOT_PASSWORD"
	VerificationCodeLogin          = "LOGIN"
)

func IsVerificationCodeType(t string) bool {
	switch t {
	case VerificationCodeRegister, VerificationCodeForgotPassword, VerificationCodeLogin:
		return true
	}
	return false
}
