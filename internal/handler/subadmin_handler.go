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

// SubAdminHandler wires sub-admin management to HTTP routes.
type SubAdminHandler struct {
	subAdmins *service.SubAdminService
}

// NewSubAdminHandler constructs a new SubAdminHandler.
func NewSubAdminHandler(subAdmins *service.SubAdminService) *SubAdminHandler {
	return &SubAdminHandler{subAdmins: subAdmins}
}

// List godoc
// @Summary List sub-admin accounts
// @Tags Sub-Admins
// @Produce json
// @Param search query string false "Search by name/email"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /sub-admins [get]
func (h *SubAdminHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, pagination, err := h.subAdmins.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Create godoc
// @Summary Add a sub-admin account
// @Tags Sub-Admins
// @Accept json
// @Produce json
// @Param payload body service.CreateSubAdminRequest true "Sub-admin payload"
// @Success 201 {object} response.Envelope
// @Router /sub-admins [post]
func (h *SubAdminHandler) Create(c *gin.Context) {
	var req service.CreateSubAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sub-admin payload"))
		return
	}
	user, err := h.subAdmins.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Update godoc
// @Summary Update a sub-admin account
// @Tags Sub-Admins
// @Accept json
// @Produce json
// @Param id path string true "Sub-admin ID"
// @Param payload body service.UpdateSubAdminRequest true "Sub-admin payload"
// @Success 200 {object} response.Envelope
// @Router /sub-admins/{id} [put]
func (h *SubAdminHandler) Update(c *gin.Context) {
	var req service.UpdateSubAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid sub-admin payload"))
		return
	}
	user, err := h.subAdmins.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ToggleStatus godoc
// @Summary Toggle a sub-admin's active status
// @Tags Sub-Admins
// @Produce json
// @Param id path string true "Sub-admin ID"
// @Success 200 {object} response.Envelope
// @Router /sub-admins/{id}/status [patch]
func (h *SubAdminHandler) ToggleStatus(c *gin.Context) {
	user, err := h.subAdmins.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Delete godoc
// @Summary Remove a sub-admin account
// @Tags Sub-Admins
// @Param id path string true "Sub-admin ID"
// @Success 204
// @Router /sub-admins/{id} [delete]
func (h *SubAdminHandler) Delete(c *gin.Context) {
	if err := h.subAdmins.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
