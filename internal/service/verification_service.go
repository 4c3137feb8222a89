package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NishantDakua/charaks/internal/models"
	"github.com/NishantDakua/charaks/internal/repository"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
)

// CountsCacheKey is the cache key for the dashboard status counters.
const CountsCacheKey = "doctors:counts"

type doctorRepository interface {
	ListByStatus(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error)
	FindByID(ctx context.Context, id string) (*models.Doctor, error)
	UpdateTransition(ctx context.Context, doctor *models.Doctor, entry *models.RemarkHistory) error
	ListHistory(ctx context.Context, doctorID string) ([]models.RemarkHistory, error)
	CountByStatus(ctx context.Context) (*models.StatusCounts, error)
}

// Actor identifies the admin performing a transition. Identity is supplied
// by the session layer and trusted as given.
type Actor struct {
	ID   string
	Name string
}

// VerificationService owns the doctor application lifecycle: pending
// applications can be approved or rejected exactly once, each transition
// appends a remark history entry, and approved/rejected are final.
type VerificationService struct {
	repo    doctorRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(repo doctorRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{repo: repo, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// List returns one status bucket, optionally narrowed by a search term,
// plus pagination data. Blank search returns the bucket unfiltered.
func (s *VerificationService) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, *models.Pagination, error) {
	if !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status bucket")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	doctors, total, err := s.repo.ListByStatus(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list doctors")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return doctors, pagination, nil
}

// Get returns a doctor application by id.
func (s *VerificationService) Get(ctx context.Context, id string) (*models.Doctor, error) {
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "doctor application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load doctor")
	}
	return doctor, nil
}

// History returns the append-only remark trail for an application.
func (s *VerificationService) History(ctx context.Context, id string) ([]models.RemarkHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load remark history")
	}
	return entries, nil
}

// Counts returns per-state totals. pending + approved + rejected == total.
func (s *VerificationService) Counts(ctx context.Context) (*models.StatusCounts, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count doctors")
	}
	return counts, nil
}

// Approve moves a pending application to approved. The remark is optional;
// an empty remark is stored as an empty string.
func (s *VerificationService) Approve(ctx context.Context, id string, actor Actor, remark string) (*models.Doctor, error) {
	doctor, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	remark = strings.TrimSpace(remark)
	now := s.now().UTC()

	doctor.Status = models.StatusApproved
	doctor.ApprovedAt = &now
	doctor.ApprovedBy = &actor.Name
	doctor.ApprovalRemarks = &remark
	doctor.UpdatedAt = now

	entry := &models.RemarkHistory{
		DoctorID: doctor.ID,
		Action:   models.ActionApprove,
		Remark:   remark,
		ActedBy:  actor.Name,
		ActedAt:  now,
	}

	if err := s.applyTransition(ctx, doctor, entry); err != nil {
		s.metrics.RecordTransition(string(models.ActionApprove), false)
		return nil, err
	}
	s.metrics.RecordTransition(string(models.ActionApprove), true)

	s.logger.Info("doctor approved",
		zap.String("doctor_id", doctor.ID),
		zap.String("admin_id", actor.ID),
	)
	return doctor, nil
}

// Reject moves a pending application to rejected. The remark is mandatory
// and must be non-empty after trimming.
func (s *VerificationService) Reject(ctx context.Context, id string, actor Actor, remark string) (*models.Doctor, error) {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection remark is required")
	}

	doctor, err := s.loadPending(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	doctor.Status = models.StatusRejected
	doctor.RejectedAt = &now
	doctor.RejectedBy = &actor.Name
	doctor.RejectionRemarks = &remark
	doctor.UpdatedAt = now

	entry := &models.RemarkHistory{
		DoctorID: doctor.ID,
		Action:   models.ActionReject,
		Remark:   remark,
		ActedBy:  actor.Name,
		ActedAt:  now,
	}

	if err := s.applyTransition(ctx, doctor, entry); err != nil {
		s.metrics.RecordTransition(string(models.ActionReject), false)
		return nil, err
	}
	s.metrics.RecordTransition(string(models.ActionReject), true)

	s.logger.Info("doctor rejected",
		zap.String("doctor_id", doctor.ID),
		zap.String("admin_id", actor.ID),
	)
	return doctor, nil
}

func (s *VerificationService) loadPending(ctx context.Context, id string) (*models.Doctor, error) {
	doctor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doctor.Status != models.StatusPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "application already "+string(doctor.Status))
	}
	return doctor, nil
}

func (s *VerificationService) applyTransition(ctx context.Context, doctor *models.Doctor, entry *models.RemarkHistory) error {
	if err := s.repo.UpdateTransition(ctx, doctor, entry); err != nil {
		if errors.Is(err, repository.ErrNotPending) {
			// Another admin completed a transition between our read and write.
			return appErrors.Clone(appErrors.ErrInvalidTransition, "application is no longer pending")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
	}

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, CountsCacheKey); err != nil {
			s.logger.Warn("failed to invalidate counts cache", zap.Error(err))
		}
	}
	return nil
}
