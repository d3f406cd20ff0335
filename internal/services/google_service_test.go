package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"shopbe/internal/apperr"
)

func TestAuthorizationURLCarriesDecodableState(t *testing.T) {
	t.Parallel()

	f := newGoogleFixture(t, googleProfile{})

	raw := f.google.AuthorizationURL("test-agent", "9.9.9.9")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	q := u.Query()
	if q.Get("client_id") != "client-id" {
		t.Fatalf("missing client_id: %s", raw)
	}
	if q.Get("access_type") != "offline" {
		t.Fatalf("expected offline access: %s", raw)
	}

	decoded, err := base64.StdEncoding.DecodeString(q.Get("state"))
	if err != nil {
		t.Fatalf("state is not base64: %v", err)
	}
	var state googleAuthState
	if err := json.Unmarshal(decoded, &state); err != nil {
		t.Fatalf("state is not json: %v", err)
	}
	if state.UserAgent != "test-agent" || state.IP != "9.9.9.9" {
		t.Fatalf("state mismatch: %+v", state)
	}
}

func TestDecodeStateFallsBackToPlaceholders(t *testing.T) {
	t.Parallel()

	ua, ip := decodeState("%%%not-base64%%%")
	if ua != "Unknown" || ip != "Unknown" {
		t.Fatalf("expected placeholders, got %q %q", ua, ip)
	}
	ua, ip = decodeState("")
	if ua != "Unknown" || ip != "Unknown" {
		t.Fatalf("expected placeholders for empty state, got %q %q", ua, ip)
	}
}

func TestCallbackCreatesUserOnFirstSignIn(t *testing.T) {
	t.Parallel()

	f := newGoogleFixture(t, googleProfile{
		Email:   "new@gmail.com",
		Name:    "New User",
		Picture: "https://lh3.example/p.jpg",
	})

	state := encodeTestState("cb-agent", "5.5.5.5")
	pair, err := f.google.Callback(context.Background(), "auth-code", state)
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", pair)
	}

	user, err := f.users.GetByEmailWithRole(context.Background(), "new@gmail.com")
	if err != nil || user == nil {
		t.Fatalf("user not created: %v", err)
	}
	if user.RoleID != f.clientRole.ID {
		t.Fatalf("expected client role, got %d", user.RoleID)
	}
	if user.Avatar == nil || *user.Avatar != "https://lh3.example/p.jpg" {
		t.Fatalf("avatar not stored: %+v", user.Avatar)
	}
	if d := f.devices.first(); d == nil || d.UserAgent != "cb-agent" || d.IP != "5.5.5.5" {
		t.Fatalf("device not created from state: %+v", d)
	}
	if f.refresh.get(pair.RefreshToken) == nil {
		t.Fatalf("refresh token row not persisted")
	}
}

func TestCallbackLogsInExistingUser(t *testing.T) {
	t.Parallel()

	f := newGoogleFixture(t, googleProfile{Email: "known@gmail.com", Name: "Known"})
	f.seedUser("known@gmail.com", "pw123456", f.clientRole)

	pair, err := f.google.Callback(context.Background(), "auth-code", "")
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token pair for existing user, got %+v", pair)
	}
	if f.devices.count() != 1 {
		t.Fatalf("expected one device row, got %d", f.devices.count())
	}
}

func TestCallbackFailsWithoutProfileEmail(t *testing.T) {
	t.Parallel()

	f := newGoogleFixture(t, googleProfile{Name: "No Email"})

	_, err := f.google.Callback(context.Background(), "auth-code", "")
	var extErr *apperr.ExternalServiceError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if f.devices.count() != 0 {
		t.Fatalf("device created despite failed callback")
	}
}

// ---- fixture ----

type googleFixture struct {
	*fixture
	google GoogleService
}

func encodeTestState(userAgent, ip string) string {
	raw, _ := json.Marshal(googleAuthState{UserAgent: userAgent, IP: ip})
	return base64.StdEncoding.EncodeToString(raw)
}

// newGoogleFixture runs a stub provider: the token endpoint always exchanges
// successfully, the userinfo endpoint serves the given profile.
func newGoogleFixture(t *testing.T, profile googleProfile) *googleFixture {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "provider-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), "provider-access-token") {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	provider := httptest.NewServer(mux)
	t.Cleanup(provider.Close)

	base := newFixture(t)
	svc := &googleService{
		oauth: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://api.example.com/auth/google/callback",
			Scopes:       []string{"email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  provider.URL + "/auth",
				TokenURL: provider.URL + "/token",
			},
		},
		userInfoURL: provider.URL + "/userinfo",
		users:       base.users,
		devices:     base.devices,
		roles:       &fakeRoleService{id: base.clientRole.ID},
		passwords:   base.passwords,
		auth:        base.auth,
	}
	return &googleFixture{fixture: base, google: svc}
}
