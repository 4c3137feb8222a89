package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	internalmiddleware "github.com/NishantDakua/charaks/internal/middleware"
	"github.com/NishantDakua/charaks/internal/models"
	"github.com/NishantDakua/charaks/internal/service"
)

type doctorRepoStub struct {
	items   map[string]*models.Doctor
	history map[string][]models.RemarkHistory
}

func (s *doctorRepoStub) ListByStatus(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, int, error) {
	var out []models.Doctor
	for _, d := range s.items {
		if d.Status == filter.Status {
			out = append(out, *d)
		}
	}
	return out, len(out), nil
}

func (s *doctorRepoStub) FindByID(ctx context.Context, id string) (*models.Doctor, error) {
	if d, ok := s.items[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *doctorRepoStub) UpdateTransition(ctx context.Context, doctor *models.Doctor, entry *models.RemarkHistory) error {
	cp := *doctor
	s.items[doctor.ID] = &cp
	if s.history == nil {
		s.history = make(map[string][]models.RemarkHistory)
	}
	s.history[doctor.ID] = append(s.history[doctor.ID], *entry)
	return nil
}

func (s *doctorRepoStub) ListHistory(ctx context.Context, doctorID string) ([]models.RemarkHistory, error) {
	return s.history[doctorID], nil
}

func (s *doctorRepoStub) CountByStatus(ctx context.Context) (*models.StatusCounts, error) {
	counts := &models.StatusCounts{}
	for _, d := range s.items {
		switch d.Status {
		case models.StatusPending:
			counts.Pending++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	counts.Total = counts.Pending + counts.Approved + counts.Rejected
	return counts, nil
}

func seedDoctorStub() *doctorRepoStub {
	return &doctorRepoStub{items: map[string]*models.Doctor{
		"doc-1": {
			ID:          "doc-1",
			FullName:    "Dr. Asha Rao",
			Email:       "asha@example.com",
			PhoneNumber: "+911234567890",
			Status:      models.StatusPending,
			CreatedAt:   time.Now().UTC(),
			UpdatedAt:   time.Now().UTC(),
		},
	}}
}

func buildDoctorRouter(repo *doctorRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(internalmiddleware.ContextUserKey, &models.JWTClaims{
				UserID:   "admin-1",
				FullName: "Admin One",
				Role:     models.UserRole(role),
			})
		}
		c.Next()
	})

	verification := service.NewVerificationService(repo, nil, nil, nil)
	dashboard := service.NewDashboardService(verification, nil, time.Minute, nil)
	exports := service.NewExportService(verification, nil)
	h := NewDoctorHandler(verification, dashboard, exports)

	verifiers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleSubAdmin)
	doctors := router.Group("/doctors", verifiers)
	{
		doctors.GET("", h.List)
		doctors.GET("/counts", h.Counts)
		doctors.GET("/export", h.Export)
		doctors.GET("/:id", h.Get)
		doctors.GET("/:id/history", h.History)
		doctors.POST("/:id/approve", h.Approve)
		doctors.POST("/:id/reject", h.Reject)
	}
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestDoctorRoutesIntegration(t *testing.T) {
	repo := seedDoctorStub()
	router := buildDoctorRouter(repo)

	t.Run("list requires auth", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("list pending", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors", nil)
		req.Header.Set("X-Test-Role", string(models.RoleSubAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"fullName":"Dr. Asha Rao"`)
		require.Contains(t, resp.Body.String(), `"total_count":1`)
	})

	t.Run("list invalid bucket", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors?status=archived", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Contains(t, resp.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("counts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors/counts", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"pending":1`)
		require.Contains(t, resp.Body.String(), `"total":1`)
	})

	t.Run("reject without remarks", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/doctors/doc-1/reject", bytes.NewBufferString(`{"remarks":"   "}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Contains(t, resp.Body.String(), "VALIDATION_ERROR")
	})

	t.Run("approve with empty body", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/doctors/doc-1/approve", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)

		var envelope struct {
			Data models.Doctor `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		require.Equal(t, models.StatusApproved, envelope.Data.Status)
		require.NotNil(t, envelope.Data.ApprovedBy)
		require.Equal(t, "Admin One", *envelope.Data.ApprovedBy)
	})

	t.Run("approve already approved conflicts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/doctors/doc-1/approve", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
		require.Contains(t, resp.Body.String(), "INVALID_TRANSITION")
	})

	t.Run("reject after approve conflicts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/doctors/doc-1/reject", bytes.NewBufferString(`{"remarks":"too late"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("history records the approval", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors/doc-1/history", nil)
		req.Header.Set("X-Test-Role", string(models.RoleSubAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"action":"approve"`)
		require.Contains(t, resp.Body.String(), `"by":"Admin One"`)
	})

	t.Run("unknown id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/doctors/nope/approve", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("export csv", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/doctors/export?status=approved&format=csv", nil)
		req.Header.Set("X-Test-Role", string(models.RoleAdmin))
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
		require.Contains(t, resp.Header().Get("Content-Disposition"), "doctors-approved.csv")
		require.Contains(t, resp.Body.String(), "Dr. Asha Rao")
	})
}
