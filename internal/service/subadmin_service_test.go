package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/NishantDakua/charaks/internal/models"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
)

type mockSubAdminRepo struct {
	items      map[string]*models.User
	emailIndex map[string]string
	listResult []models.User
	listTotal  int
	lastFilter models.UserFilter
	deleted    []string
}

func (m *mockSubAdminRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	m.lastFilter = filter
	return m.listResult, m.listTotal, nil
}

func (m *mockSubAdminRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.items[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubAdminRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	owner, ok := m.emailIndex[email]
	if !ok {
		return false, nil
	}
	return excludeID == "" || owner != excludeID, nil
}

func (m *mockSubAdminRepo) Create(ctx context.Context, user *models.User) error {
	if m.items == nil {
		m.items = make(map[string]*models.User)
	}
	cp := *user
	m.items[user.ID] = &cp
	return nil
}

func (m *mockSubAdminRepo) Update(ctx context.Context, user *models.User) error {
	cp := *user
	m.items[user.ID] = &cp
	return nil
}

func (m *mockSubAdminRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.items, id)
	return nil
}

func TestSubAdminServiceListForcesRole(t *testing.T) {
	repo := &mockSubAdminRepo{listResult: []models.User{{ID: "u1", Role: models.RoleSubAdmin}}, listTotal: 1}
	svc := NewSubAdminService(repo, nil, nil)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleSubAdmin, *repo.lastFilter.Role)
}

func TestSubAdminServiceCreate(t *testing.T) {
	repo := &mockSubAdminRepo{}
	svc := NewSubAdminService(repo, nil, nil)

	user, err := svc.Create(context.Background(), CreateSubAdminRequest{
		Email:    "sub@charaks.in",
		FullName: "  Sub Admin  ",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Sub Admin", user.FullName)
	assert.Equal(t, models.RoleSubAdmin, user.Role)
	assert.True(t, user.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestSubAdminServiceCreateValidation(t *testing.T) {
	svc := NewSubAdminService(&mockSubAdminRepo{}, nil, nil)

	cases := []CreateSubAdminRequest{
		{Email: "", FullName: "Sub", Password: "secret123"},
		{Email: "not-an-email", FullName: "Sub", Password: "secret123"},
		{Email: "sub@charaks.in", FullName: "", Password: "secret123"},
		{Email: "sub@charaks.in", FullName: "Sub", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Create(context.Background(), req)
		assert.True(t, appErrors.Is(err, appErrors.ErrValidation), "expected validation error for %+v", req)
	}
}

func TestSubAdminServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockSubAdminRepo{emailIndex: map[string]string{"sub@charaks.in": "u1"}}
	svc := NewSubAdminService(repo, nil, nil)

	_, err := svc.Create(context.Background(), CreateSubAdminRequest{
		Email:    "sub@charaks.in",
		FullName: "Sub Admin",
		Password: "secret123",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
}

func TestSubAdminServiceUpdateAndToggle(t *testing.T) {
	repo := &mockSubAdminRepo{items: map[string]*models.User{
		"u1": {ID: "u1", FullName: "Old Name", Role: models.RoleSubAdmin, Active: true},
	}}
	svc := NewSubAdminService(repo, nil, nil)

	inactive := false
	user, err := svc.Update(context.Background(), "u1", UpdateSubAdminRequest{FullName: "New Name", Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.FullName)
	assert.False(t, user.Active)

	user, err = svc.ToggleStatus(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, user.Active)
}

func TestSubAdminServiceRoleMismatchIsNotFound(t *testing.T) {
	repo := &mockSubAdminRepo{items: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleSuperAdmin},
	}}
	svc := NewSubAdminService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "u1", UpdateSubAdminRequest{FullName: "Name"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	err = svc.Delete(context.Background(), "u1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, repo.deleted)
}

func TestSubAdminServiceDelete(t *testing.T) {
	repo := &mockSubAdminRepo{items: map[string]*models.User{
		"u1": {ID: "u1", Role: models.RoleSubAdmin},
	}}
	svc := NewSubAdminService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.deleted)
}
