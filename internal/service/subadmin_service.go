package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/NishantDakua/charaks/internal/models"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
)

type subAdminRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// CreateSubAdminRequest represents payload for adding a sub-admin.
type CreateSubAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateSubAdminRequest represents payload for updating a sub-admin.
type UpdateSubAdminRequest struct {
	FullName string `json:"name" validate:"required"`
	Active   *bool  `json:"active"`
}

// SubAdminService manages the sub-admin accounts a super admin can delegate
// verification work to.
type SubAdminService struct {
	repo      subAdminRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubAdminService constructs a SubAdminService.
func NewSubAdminService(repo subAdminRepository, validate *validator.Validate, logger *zap.Logger) *SubAdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubAdminService{repo: repo, validator: validate, logger: logger}
}

// List returns sub-admin accounts plus pagination data.
func (s *SubAdminService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	role := models.RoleSubAdmin
	filter.Role = &role

	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sub-admins")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return users, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create registers a new sub-admin account.
func (s *SubAdminService) Create(ctx context.Context, req CreateSubAdminRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sub-admin payload")
	}

	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleSubAdmin,
		Active:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create sub-admin")
	}
	return user, nil
}

// Update modifies an existing sub-admin account.
func (s *SubAdminService) Update(ctx context.Context, id string, req UpdateSubAdminRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sub-admin payload")
	}

	user, err := s.getSubAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FullName = strings.TrimSpace(req.FullName)
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sub-admin")
	}
	return user, nil
}

// ToggleStatus flips the active flag of a sub-admin account.
func (s *SubAdminService) ToggleStatus(ctx context.Context, id string) (*models.User, error) {
	user, err := s.getSubAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Active = !user.Active
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to toggle sub-admin status")
	}
	return user, nil
}

// Delete removes a sub-admin account.
func (s *SubAdminService) Delete(ctx context.Context, id string) error {
	if _, err := s.getSubAdmin(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sub-admin")
	}
	return nil
}

func (s *SubAdminService) getSubAdmin(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sub-admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sub-admin")
	}
	if user.Role != models.RoleSubAdmin {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "sub-admin not found")
	}
	return user, nil
}
