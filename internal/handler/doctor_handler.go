package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NishantDakua/charaks/internal/models"
	"github.com/NishantDakua/charaks/internal/service"
	appErrors "github.com/NishantDakua/charaks/pkg/errors"
	"github.com/NishantDakua/charaks/pkg/response"
)

// TransitionRequest is the JSON body for approve/reject calls.
type TransitionRequest struct {
	Remarks string `json:"remarks"`
}

// DoctorHandler wires the verification service to HTTP routes.
type DoctorHandler struct {
	verification *service.VerificationService
	dashboard    *service.DashboardService
	exports      *service.ExportService
}

// NewDoctorHandler constructs a new DoctorHandler.
func NewDoctorHandler(verification *service.VerificationService, dashboard *service.DashboardService, exports *service.ExportService) *DoctorHandler {
	return &DoctorHandler{verification: verification, dashboard: dashboard, exports: exports}
}

// List godoc
// @Summary List doctor applications in one status bucket
// @Tags Doctors
// @Produce json
// @Param status query string true "Bucket (pending/approved/rejected)"
// @Param search query string false "Search by name/registration/specialization/phone"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /doctors [get]
func (h *DoctorHandler) List(c *gin.Context) {
	filter := models.DoctorFilter{
		Status: models.DoctorStatus(strings.ToLower(c.DefaultQuery("status", string(models.StatusPending)))),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	doctors, pagination, err := h.verification.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctors, pagination, map[string]interface{}{"count": pagination.TotalCount})
}

// Counts godoc
// @Summary Per-status application totals
// @Tags Doctors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /doctors/counts [get]
func (h *DoctorHandler) Counts(c *gin.Context) {
	counts, cached, err := h.dashboard.Counts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, counts, nil, map[string]interface{}{"cached": cached})
}

// Get godoc
// @Summary Get doctor application detail
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id} [get]
func (h *DoctorHandler) Get(c *gin.Context) {
	doctor, err := h.verification.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// History godoc
// @Summary Remark history for a doctor application
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Envelope
// @Router /doctors/{id}/history [get]
func (h *DoctorHandler) History(c *gin.Context) {
	entries, err := h.verification.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Approve godoc
// @Summary Approve a pending doctor application
// @Tags Doctors
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param payload body TransitionRequest false "Optional remarks"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /doctors/{id}/approve [post]
func (h *DoctorHandler) Approve(c *gin.Context) {
	var req TransitionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
			return
		}
	}

	doctor, err := h.verification.Approve(c.Request.Context(), c.Param("id"), actorFromContext(c), req.Remarks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Reject godoc
// @Summary Reject a pending doctor application
// @Tags Doctors
// @Accept json
// @Produce json
// @Param id path string true "Doctor ID"
// @Param payload body TransitionRequest true "Mandatory remarks"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /doctors/{id}/reject [post]
func (h *DoctorHandler) Reject(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
		return
	}

	doctor, err := h.verification.Reject(c.Request.Context(), c.Param("id"), actorFromContext(c), req.Remarks)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doctor, nil)
}

// Export godoc
// @Summary Export one status bucket as CSV or PDF
// @Tags Doctors
// @Produce octet-stream
// @Param status query string true "Bucket (pending/approved/rejected)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /doctors/export [get]
func (h *DoctorHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	status := models.DoctorStatus(strings.ToLower(c.DefaultQuery("status", string(models.StatusPending))))
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.FormatCSV))))

	result, err := h.exports.Render(c.Request.Context(), status, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Body)
}
