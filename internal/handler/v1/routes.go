package v1

import (
	"github.com/eyualpha/HealthLink/internal/domain"
	"github.com/eyualpha/HealthLink/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Appointments  *AppointmentHandler
	Patients      *PatientHandler
	Prescriptions *PrescriptionHandler
	Vitals        *VitalsHandler
}

var (
	everyone = []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin, domain.RolePatient}
	staff    = []domain.Role{domain.RoleDoctor, domain.RoleNurse, domain.RoleAdmin}
	clinical = []domain.Role{domain.RoleDoctor, domain.RoleNurse}
)

// Register mounts the v1 API on api. Every route requires a valid token.
func Register(api *gin.RouterGroup, h *Handlers, tokens middleware.TokenValidator) {
	api.Use(middleware.Authenticate(tokens))

	appointments := api.Group("/appointments")
	{
		appointments.GET("", middleware.RequireRoles(everyone...), h.Appointments.List)
		appointments.GET("/:id", middleware.RequireRoles(everyone...), h.Appointments.Get)
		appointments.POST("", middleware.RequireRoles(staff...), h.Appointments.Create)
		appointments.PATCH("/:id", middleware.RequireRoles(staff...), h.Appointments.Reschedule)
		appointments.POST("/:id/cancel", middleware.RequireRoles(staff...), h.Appointments.Cancel)
		appointments.PATCH("/:id/status", middleware.RequireRoles(staff...), h.Appointments.UpdateStatus)
	}

	patients := api.Group("/patients")
	{
		patients.GET("", middleware.RequireRoles(staff...), h.Patients.List)
		patients.GET("/draft", middleware.RequireRoles(clinical...), h.Patients.Draft)
		patients.GET("/:id", middleware.RequireRoles(staff...), h.Patients.Get)
		patients.POST("/validate", middleware.RequireRoles(clinical...), h.Patients.Validate)
		patients.POST("", middleware.RequireRoles(clinical...), h.Patients.Create)
		patients.PUT("/:id", middleware.RequireRoles(clinical...), h.Patients.Update)
		patients.POST("/:id/lists/:key", middleware.RequireRoles(clinical...), h.Patients.AddListItem)
		patients.DELETE("/:id/lists/:key/:index", middleware.RequireRoles(clinical...), h.Patients.RemoveListItem)
	}

	prescriptions := api.Group("/prescriptions")
	{
		prescriptions.GET("", middleware.RequireRoles(staff...), h.Prescriptions.List)
		prescriptions.POST("", middleware.RequireRoles(domain.RoleDoctor), h.Prescriptions.Create)
		prescriptions.POST("/check", middleware.RequireRoles(domain.RoleDoctor), h.Prescriptions.Check)
		prescriptions.PATCH("/:id/status", middleware.RequireRoles(domain.RoleDoctor), h.Prescriptions.UpdateStatus)
	}

	vitalsGroup := api.Group("/vitals", middleware.RequireRoles(clinical...))
	{
		vitalsGroup.GET("", h.Vitals.List)
		vitalsGroup.POST("", h.Vitals.Record)
	}
}
