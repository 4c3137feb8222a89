package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NishantDakua/charaks/internal/models"
)

type statusCounter interface {
	Counts(ctx context.Context) (*models.StatusCounts, error)
}

// DashboardService serves the admin console's verification counters,
// backed by a short-lived cache so the landing page does not hit the
// database on every refresh.
type DashboardService struct {
	verification statusCounter
	cache        *CacheService
	logger       *zap.Logger
	ttl          time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(verification statusCounter, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{verification: verification, cache: cache, logger: logger, ttl: ttl}
}

// Counts returns per-state totals and whether the cache served them.
func (s *DashboardService) Counts(ctx context.Context) (*models.StatusCounts, bool, error) {
	var cached models.StatusCounts
	if hit, err := s.cache.Get(ctx, CountsCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	counts, err := s.verification.Counts(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, CountsCacheKey, counts, s.ttl); err != nil {
		s.logger.Warn("failed to cache counts", zap.Error(err))
	}
	return counts, false, nil
}
