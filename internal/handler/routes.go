package handler

import (
	"github.com/gin-gonic/gin"

	internalmiddleware "github.com/NishantDakua/charaks/internal/middleware"
	"github.com/NishantDakua/charaks/internal/models"
	"github.com/NishantDakua/charaks/internal/repository"
	"github.com/NishantDakua/charaks/internal/service"
)

// Handlers groups the HTTP handlers registered on the API.
type Handlers struct {
	Auth      *AuthHandler
	Doctors   *DoctorHandler
	SubAdmins *SubAdminHandler
	Metrics   *MetricsHandler
}

// RegisterRoutes mounts all API routes under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, users *repository.UserRepository) {
	api := r.Group(prefix)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", internalmiddleware.JWT(auth), h.Auth.Logout)
		authGroup.POST("/change-password", internalmiddleware.JWT(auth), h.Auth.ChangePassword)
		authGroup.GET("/me", internalmiddleware.JWT(auth), h.Auth.Me)
	}

	verifiers := internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleSubAdmin)

	doctors := api.Group("/doctors", internalmiddleware.JWT(auth), verifiers)
	{
		doctors.GET("", h.Doctors.List)
		doctors.GET("/counts", h.Doctors.Counts)
		doctors.GET("/export", h.Doctors.Export)
		doctors.GET("/:id", h.Doctors.Get)
		doctors.GET("/:id/history", h.Doctors.History)
		doctors.POST("/:id/approve",
			internalmiddleware.Audit(users, models.AuditActionDoctorApprove, "doctors"),
			h.Doctors.Approve)
		doctors.POST("/:id/reject",
			internalmiddleware.Audit(users, models.AuditActionDoctorReject, "doctors"),
			h.Doctors.Reject)
	}

	subAdmins := api.Group("/sub-admins", internalmiddleware.JWT(auth), internalmiddleware.RequireRoles(models.RoleSuperAdmin))
	{
		subAdmins.GET("", h.SubAdmins.List)
		subAdmins.POST("",
			internalmiddleware.Audit(users, models.AuditActionAdminCreate, "sub-admins"),
			h.SubAdmins.Create)
		subAdmins.PUT("/:id",
			internalmiddleware.Audit(users, models.AuditActionAdminUpdate, "sub-admins"),
			h.SubAdmins.Update)
		subAdmins.PATCH("/:id/status",
			internalmiddleware.Audit(users, models.AuditActionAdminUpdate, "sub-admins"),
			h.SubAdmins.ToggleStatus)
		subAdmins.DELETE("/:id",
			internalmiddleware.Audit(users, models.AuditActionAdminDelete, "sub-admins"),
			h.SubAdmins.Delete)
	}

	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
}
