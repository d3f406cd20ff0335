package services

import (
	"context"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"shopbe/internal/apperr"
	"shopbe/internal/models"
	"shopbe/internal/repositories"
	"shopbe/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	SendOTP(ctx context.Context, email, codeType string) error
	Login(ctx context.Context, email, password, userAgent, ip string) (*models.TokenPair, error)
	GenerateTokens(ctx context.Context, userID, deviceID, roleID int, roleName string) (*models.TokenPair, error)
	RefreshToken(ctx context.Context, token, userAgent, ip string) (*models.TokenPair, error)
	Logout(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error
	Profile(ctx context.Context, userID int) (*models.User, error)
}

type authService struct {
	users     repositories.UserRepository
	codes     repositories.VerificationCodeRepository
	devices   repositories.DeviceRepository
	refresh   repositories.RefreshTokenRepository
	roles     RoleService
	tokens    TokenService
	passwords PasswordService
	emails    EmailService
	otpTTL    time.Duration
}

func NewAuthService(
	users repositories.UserRepository,
	codes repositories.VerificationCodeRepository,
	devices repositories.DeviceRepository,
	refresh repositories.RefreshTokenRepository,
	roles RoleService,
	tokens TokenService,
	passwords PasswordService,
	emails EmailService,
	otpTTL time.Duration,
) AuthService {
	return &authService{
		users:     users,
		codes:     codes,
		devices:   devices,
		refresh:   refresh,
		roles:     roles,
		tokens:    tokens,
		passwords: passwords,
		emails:    emails,
		otpTTL:    otpTTL,
	}
}

// Register creates a user after checking the REGISTER verification code.
// The code is checked, not consumed; the one-row-per-email upsert keeps stale
// codes from piling up.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := s.checkCode(ctx, req.Email, req.Code, models.VerificationCodeRegister); err != nil {
		return nil, err
	}

	roleID, err := s.roles.ClientRoleID(ctx)
	if err != nil {
		return nil, err
	}
	hashed, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       req.Email,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Password:    hashed,
		RoleID:      roleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, apperr.ErrEmailTaken
		}
		return nil, err
	}
	log.Printf("[auth][register] user created id=%d", user.ID)
	return user, nil
}

// SendOTP persists the code before dispatching the email. A delivery failure
// does not roll the row back, so a later resend or a delayed email still works.
func (s *authService) SendOTP(ctx context.Context, email, codeType string) error {
	if !models.IsVerificationCodeType(codeType) {
		return apperr.Validation("type", "Loại mã OTP không hợp lệ")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	switch codeType {
	case models.VerificationCodeRegister:
		if user != nil {
			return apperr.Validation("email", "Email đã tồn tại")
		}
	case models.VerificationCodeForgotPassword:
		if user == nil {
			return apperr.Validation("email", "Email không tồn tại")
		}
	default:
		// LOGIN codes have no consumer yet; refuse to mint them here.
		return apperr.Validation("type", "Loại mã OTP không hợp lệ")
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	vc := &models.VerificationCode{
		Email:     email,
		Code:      code,
		Type:      codeType,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.codes.Upsert(ctx, vc); err != nil {
		return err
	}

	if err := s.emails.SendOTP(email, code); err != nil {
		log.Printf("[auth][otp] delivery failed for %s: %v", email, err)
		return apperr.External("Gửi mã OTP thất bại", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, email, password, userAgent, ip string) (*models.TokenPair, error) {
	user, err := s.users.GetByEmailWithRole(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Validation("email", "Email không tồn tại")
	}
	if !s.passwords.Compare(user.Password, password) {
		return nil, apperr.Validation("password", "Mật khẩu không đúng")
	}

	device, err := s.devices.Create(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, err
	}
	log.Printf("[auth][login] userID=%d deviceID=%d", user.ID, device.ID)

	return s.GenerateTokens(ctx, user.ID, device.ID, user.RoleID, user.Role.Name)
}

// GenerateTokens signs both tokens concurrently, then persists the refresh
// token with the expiry decoded from the freshly signed string. If persistence
// fails the pair is never returned to the caller.
func (s *authService) GenerateTokens(ctx context.Context, userID, deviceID, roleID int, roleName string) (*models.TokenPair, error) {
	var accessToken, refreshToken string
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accessToken, err = s.tokens.SignAccessToken(userID, deviceID, roleID, roleName)
		return err
	})
	g.Go(func() error {
		var err error
		refreshToken, err = s.tokens.SignRefreshToken(userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	decoded, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	rt := &models.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: decoded.ExpiresAt.Time,
	}
	if err := s.refresh.Create(ctx, rt); err != nil {
		return nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken rotates: the old row is deleted, the device row is refreshed
// with the current client context, and a new pair is issued. The three steps
// have no data dependency and run concurrently; rotation is destructive, not
// sliding. Every failure surfaces as ErrUnauthorized so a probing caller
// cannot tell a fabricated token from an already-rotated one.
func (s *authService) RefreshToken(ctx context.Context, token, userAgent, ip string) (*models.TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(token)
	if err != nil {
		return nil, apperr.ErrUnauthorized
	}

	stored, err := s.refresh.GetWithUserRole(ctx, token)
	if err != nil {
		log.Printf("[auth][refresh] lookup failed: %v", err)
		return nil, apperr.ErrUnauthorized
	}
	if stored == nil {
		return nil, apperr.ErrUnauthorized
	}

	var pair *models.TokenPair
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.devices.Update(gctx, stored.DeviceID, userAgent, ip)
	})
	g.Go(func() error {
		deleted, err := s.refresh.Delete(gctx, token)
		if err != nil {
			return err
		}
		if !deleted {
			// lost the race against a concurrent rotation
			return apperr.ErrUnauthorized
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pair, err = s.GenerateTokens(gctx, claims.UserID, stored.DeviceID, stored.User.RoleID, stored.User.Role.Name)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("[auth][refresh] rotation failed for userID=%d: %v", claims.UserID, err)
		return nil, apperr.ErrUnauthorized
	}
	return pair, nil
}

// Logout deletes the refresh-token row. A valid signature over a missing row
// is reported distinctly: the token was already used, very likely stolen.
func (s *authService) Logout(ctx context.Context, token string) error {
	if _, err := s.tokens.VerifyRefreshToken(token); err != nil {
		return apperr.ErrUnauthorized
	}
	deleted, err := s.refresh.Delete(ctx, token)
	if err != nil {
		return apperr.ErrUnauthorized
	}
	if !deleted {
		return apperr.ErrTokenRevoked
	}
	return nil
}

// ResetPassword verifies a FORGOT_PASSWORD code, replaces the password hash
// and revokes every outstanding refresh token for the user.
func (s *authService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	if err := s.checkCode(ctx, req.Email, req.Code, models.VerificationCodeForgotPassword); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.Validation("email", "Email không tồn tại")
	}

	hashed, err := s.passwords.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.refresh.DeleteByUser(ctx, user.ID); err != nil {
		return err
	}
	log.Printf("[auth][reset-password] userID=%d sessions revoked", user.ID)
	return nil
}

// Profile returns the authenticated user; the password hash stays out of the
// JSON via struct tags.
func (s *authService) Profile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.ErrUnauthorized
	}
	return user, nil
}

func (s *authService) checkCode(ctx context.Context, email, code, codeType string) error {
	vc, err := s.codes.Find(ctx, email, code, codeType)
	if err != nil {
		return err
	}
	if vc == nil {
		return apperr.Validation("code", "Mã OTP không hợp lệ")
	}
	if vc.ExpiresAt.Before(time.Now()) {
		return apperr.Validation("code", "Mã OTP đã hết hạn")
	}
	return nil
}
