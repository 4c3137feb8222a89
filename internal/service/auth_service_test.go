package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NishantDakua/charaks/internal/models"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	byEmail   map[string]string
	tokens    map[string]*models.RefreshToken
	revoked   []string
	auditLogs []models.AuditLog
	lastLogin map[string]time.Time
	passwords map[string]string
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:     make(map[string]*models.User),
		byEmail:   make(map[string]string),
		tokens:    make(map[string]*models.RefreshToken),
		lastLogin: make(map[string]time.Time),
		passwords: make(map[string]string),
	}
}

func (m *mockAuthRepo) addUser(user *models.User) {
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		cp := *m.users[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLogin[id] = ts
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	m.passwords[id] = passwordHash
	if user, ok := m.users[id]; ok {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := m.tokens[token]; ok {
		cp := *rt
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, token := range m.tokens {
		if token.ID == id {
			token.Revoked = true
			token.RevokedAt = &revokedAt
		}
	}
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, *log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "charaks-admin-api",
	}
}

func seedAdmin(t *testing.T, repo *mockAuthRepo, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "u1",
		Email:        "admin@charaks.in",
		PasswordHash: string(hash),
		FullName:     "Admin One",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	repo.addUser(user)
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "charaks-admin-api", claims.Issuer)

	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)
	assert.Contains(t, repo.lastLogin, "u1")
}

func TestAuthServiceLoginFailures(t *testing.T) {
	repo := newMockAuthRepo()
	user := seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@charaks.in", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "wrong"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	user.Active = false
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInactiveAccount))

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "not-an-email", Password: "secret123"})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token is revoked, replaying it fails.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))

	// The rotated token still works.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestAuthServiceRefreshExpired(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	repo.tokens["old"] = &models.RefreshToken{
		ID:        "rt1",
		UserID:    "u1",
		Token:     "old",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "old"})
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceLogout(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else", models.LoginRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "u1", models.LoginRequest{}))
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newsecret"})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "secret123", NewPassword: "newsecret"}))

	// Existing sessions are revoked.
	assert.True(t, repo.tokens[login.RefreshToken].Revoked)

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := newMockAuthRepo()
	seedAdmin(t, repo, "secret123")
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@charaks.in", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(login.AccessToken)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}
