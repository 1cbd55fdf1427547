// Package session holds the signed-in user of the admin web app in an scs session and
// gates routes on it. A fresh browser session starts anonymous.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"winelabel/internal/client"
	"winelabel/internal/dto"
	applog "winelabel/internal/log"
	"winelabel/internal/notify"
	"winelabel/models"
)

const (
	authenticatedKey = "auth:authenticated"
	userIDKey        = "auth:user:id"
	userEmailKey     = "auth:user:email"
	userNameKey      = "auth:user:name"
	userAvatarKey    = "auth:user:avatar"
	tokenKey         = "auth:token"
	verifiedAtKey    = "auth:verified_at"
	flashKey         = "flash"

	// DefaultVerifyInterval is how long a stored token is trusted before the gate asks
	// the backend again.
	DefaultVerifyInterval = 5 * time.Minute
)

var (
	ErrPasswordMismatch   = errors.New("session: passwords do not match")
	ErrMissingCredentials = errors.New("session: email and password are required")
	ErrInvalidCredentials = errors.New("session: invalid email or password")
	ErrEmailTaken         = errors.New("session: an account with that email already exists")
	ErrSessionExpired     = errors.New("session: the backend no longer accepts the token")
)

// Authenticator verifies credentials. The API client satisfies it.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (dto.AuthResponse, error)
	Register(ctx context.Context, input dto.RegisterRequest) (dto.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.Profile, error)
}

// User is the verified identity stored in the session.
type User struct {
	ID        string
	Email     string
	FullName  string
	AvatarURL string
	Token     string
}

// DisplayName falls back to the email's local part when no name is set.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// RegisterInput is the content of the registration form.
type RegisterInput struct {
	Email           string
	FullName        string
	Password        string
	ConfirmPassword string
}

// Manager owns the session lifecycle. It holds no global state; construct one per
// server and pass it to the handlers that need it.
type Manager struct {
	auth     Authenticator
	sessions *scs.SessionManager
	// VerifyInterval bounds how stale the stored profile and token may get.
	VerifyInterval time.Duration
	now            func() time.Time
}

func New(auth Authenticator, sessions *scs.SessionManager) *Manager {
	return &Manager{auth: auth, sessions: sessions, VerifyInterval: DefaultVerifyInterval, now: time.Now}
}

// Sessions exposes the underlying scs manager for LoadAndSave wiring.
func (m *Manager) Sessions() *scs.SessionManager {
	return m.sessions
}

// Login verifies the credentials with the backend and stores the identity.
func (m *Manager) Login(ctx context.Context, email, password string) (User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	resp, err := m.auth.Login(ctx, email, password)
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) || client.IsStatus(err, http.StatusBadRequest) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("login: %w", err)
	}
	return m.establish(ctx, resp)
}

// Register checks the password confirmation before contacting the backend.
func (m *Manager) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.Password != input.ConfirmPassword {
		return User{}, ErrPasswordMismatch
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return User{}, ErrMissingCredentials
	}

	resp, err := m.auth.Register(ctx, dto.RegisterRequest{
		Email:    email,
		Password: input.Password,
		FullName: strings.TrimSpace(input.FullName),
	})
	if err != nil {
		if client.IsStatus(err, http.StatusConflict) {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("register: %w", err)
	}
	return m.establish(ctx, resp)
}

func (m *Manager) establish(ctx context.Context, resp dto.AuthResponse) (User, error) {
	if err := m.sessions.RenewToken(ctx); err != nil {
		return User{}, fmt.Errorf("renew session token: %w", err)
	}
	user := User{
		ID:        resp.Profile.ID,
		Email:     resp.Profile.Email,
		FullName:  resp.Profile.FullName,
		AvatarURL: resp.Profile.AvatarURL,
		Token:     resp.Token,
	}
	m.sessions.Put(ctx, authenticatedKey, true)
	m.sessions.Put(ctx, userIDKey, user.ID)
	m.sessions.Put(ctx, userEmailKey, user.Email)
	m.sessions.Put(ctx, userNameKey, user.FullName)
	m.sessions.Put(ctx, userAvatarKey, user.AvatarURL)
	m.sessions.Put(ctx, tokenKey, user.Token)
	m.sessions.Put(ctx, verifiedAtKey, m.now().Unix())
	return user, nil
}

// Refresh reloads the profile with the stored token. A token the backend rejects ends
// the session with ErrSessionExpired; other backend failures keep it.
func (m *Manager) Refresh(ctx context.Context) error {
	user, ok := m.Current(ctx)
	if !ok {
		return nil
	}
	profile, err := m.auth.Me(client.WithToken(ctx, user.Token))
	switch {
	case client.IsStatus(err, http.StatusUnauthorized):
		applog.Info(ctx, "session token rejected by backend", "user", user.ID)
		if err := m.sessions.Destroy(ctx); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
		return ErrSessionExpired
	case err != nil:
		applog.Error(ctx, "profile refresh failed", "error", err)
		return nil
	}

	m.sessions.Put(ctx, userEmailKey, profile.Email)
	m.sessions.Put(ctx, userNameKey, profile.FullName)
	m.sessions.Put(ctx, userAvatarKey, profile.AvatarURL)
	m.sessions.Put(ctx, verifiedAtKey, m.now().Unix())
	return nil
}

// stale reports whether the stored identity is due for a Refresh.
func (m *Manager) stale(ctx context.Context) bool {
	if m.VerifyInterval <= 0 {
		return false
	}
	verifiedAt := time.Unix(m.sessions.GetInt64(ctx, verifiedAtKey), 0)
	return m.now().Sub(verifiedAt) >= m.VerifyInterval
}

// Logout tells the backend and destroys the session. The session is destroyed even
// when the backend call fails.
func (m *Manager) Logout(ctx context.Context) error {
	if user, ok := m.Current(ctx); ok {
		if err := m.auth.Logout(client.WithToken(ctx, user.Token)); err != nil {
			applog.Error(ctx, "backend logout failed", "error", err)
		}
	}
	if err := m.sessions.Destroy(ctx); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Current returns the signed-in user.
func (m *Manager) Current(ctx context.Context) (User, bool) {
	if !m.sessions.GetBool(ctx, authenticatedKey) {
		return User{}, false
	}
	user := User{
		ID:        m.sessions.GetString(ctx, userIDKey),
		Email:     m.sessions.GetString(ctx, userEmailKey),
		FullName:  m.sessions.GetString(ctx, userNameKey),
		AvatarURL: m.sessions.GetString(ctx, userAvatarKey),
		Token:     m.sessions.GetString(ctx, tokenKey),
	}
	if user.ID == "" {
		return User{}, false
	}
	return user, true
}

// IsAuthenticated is true exactly when a current user is present.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.Current(ctx)
	return ok
}

// APIContext returns ctx carrying the signed-in user's bearer token.
func (m *Manager) APIContext(ctx context.Context) context.Context {
	user, ok := m.Current(ctx)
	if !ok {
		return ctx
	}
	return client.WithToken(ctx, user.Token)
}

// Flash stores a notification for the next rendered page.
func (m *Manager) Flash(ctx context.Context, n notify.Notification) {
	encoded, err := json.Marshal(n)
	if err != nil {
		applog.Error(ctx, "failed to encode flash", "error", err)
		return
	}
	m.sessions.Put(ctx, flashKey, string(encoded))
}

// PopFlash returns and clears the pending notification.
func (m *Manager) PopFlash(ctx context.Context) (notify.Notification, bool) {
	encoded := m.sessions.PopString(ctx, flashKey)
	if encoded == "" {
		return notify.Notification{}, false
	}
	var n notify.Notification
	if err := json.Unmarshal([]byte(encoded), &n); err != nil {
		applog.Error(ctx, "failed to decode flash", "error", err)
		return notify.Notification{}, false
	}
	return n, true
}
