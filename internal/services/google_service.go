package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"shopbe/internal/apperr"
	"shopbe/internal/config"
	"shopbe/internal/models"
	"shopbe/internal/repositories"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleService exchanges an authorization code with Google and maps the
// resulting identity onto a local user.
type GoogleService interface {
	AuthorizationURL(userAgent, ip string) string
	Callback(ctx context.Context, code, state string) (*models.TokenPair, error)
}

// googleAuthState rides through the provider redirect as base64 JSON. It is
// reversible encoding, not encrypted: never treat it as tamper-proof.
type googleAuthState struct {
	UserAgent string `json:"userAgent"`
	IP        string `json:"ip"`
}

type googleProfile struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type googleService struct {
	oauth       *oauth2.Config
	userInfoURL string

	users     repositories.UserRepository
	devices   repositories.DeviceRepository
	roles     RoleService
	passwords PasswordService
	auth      AuthService
}

func NewGoogleService(
	cfg config.GoogleConfig,
	users repositories.UserRepository,
	devices repositories.DeviceRepository,
	roles RoleService,
	passwords PasswordService,
	auth AuthService,
) GoogleService {
	return &googleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		userInfoURL: googleUserInfoURL,
		users:       users,
		devices:     devices,
		roles:       roles,
		passwords:   passwords,
		auth:        auth,
	}
}

func (s *googleService) AuthorizationURL(userAgent, ip string) string {
	raw, _ := json.Marshal(googleAuthState{UserAgent: userAgent, IP: ip})
	state := base64.StdEncoding.EncodeToString(raw)
	return s.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Callback exchanges the code, fetches the profile and logs the user in,
// creating the account on first sign-in. State decoding is best-effort: a
// broken state is logged and replaced with placeholders, never fatal.
func (s *googleService) Callback(ctx context.Context, code, state string) (*models.TokenPair, error) {
	userAgent, ip := decodeState(state)

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Printf("[auth][google] code exchange failed: %v", err)
		return nil, apperr.External("Lỗi đăng nhập Google", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		log.Printf("[auth][google] userinfo failed: %v", err)
		return nil, apperr.External("Lỗi đăng nhập Google", err)
	}
	if profile.Email == "" {
		return nil, apperr.External("Lỗi đăng nhập Google", fmt.Errorf("profile has no email"))
	}

	user, err := s.users.GetByEmailWithRole(ctx, profile.Email)
	if err != nil {
		return nil, apperr.External("Lỗi đăng nhập Google", err)
	}
	if user == nil {
		user, err = s.createUser(ctx, profile)
		if err != nil {
			return nil, apperr.External("Lỗi đăng nhập Google", err)
		}
		log.Printf("[auth][google] user created id=%d", user.ID)
	}

	device, err := s.devices.Create(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, apperr.External("Lỗi đăng nhập Google", err)
	}
	pair, err := s.auth.GenerateTokens(ctx, user.ID, device.ID, user.RoleID, user.Role.Name)
	if err != nil {
		return nil, apperr.External("Lỗi đăng nhập Google", err)
	}
	return pair, nil
}

// createUser provisions a local account for a first-time Google sign-in with
// the client role and a random throwaway password.
func (s *googleService) createUser(ctx context.Context, profile *googleProfile) (*models.User, error) {
	roleID, err := s.roles.ClientRoleID(ctx)
	if err != nil {
		return nil, err
	}
	hashed, err := s.passwords.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       profile.Email,
		Name:        profile.Name,
		PhoneNumber: "",
		Password:    hashed,
		RoleID:      roleID,
	}
	if profile.Picture != "" {
		avatar := profile.Picture
		user.Avatar = &avatar
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	// re-read with the role joined for token claims
	return s.users.GetByEmailWithRole(ctx, profile.Email)
}

func (s *googleService) fetchProfile(ctx context.Context, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}
	profile := &googleProfile{}
	if err := json.NewDecoder(resp.Body).Decode(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func decodeState(state string) (userAgent, ip string) {
	userAgent, ip = "Unknown", "Unknown"
	if state == "" {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		log.Printf("[auth][google] bad state encoding: %v", err)
		return
	}
	var decoded googleAuthState
	if err := json.Unmarshal(raw, &decoded); err != nil {
		log.Printf("[auth][google] bad state payload: %v", err)
		return
	}
	if decoded.UserAgent != "" {
		userAgent = decoded.UserAgent
	}
	if decoded.IP != "" {
		ip = decoded.IP
	}
	return
}
