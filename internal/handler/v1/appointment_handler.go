package v1

import (
	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
	log *zap.Logger
}

func NewAppointmentHandler(svc *service.AppointmentService, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, log: log}
}

type createAppointmentRequest struct {
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Type        string `json:"type"`
	Notes       string `json:"notes"`
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// List handles GET /appointments?search=&status=
func (h *AppointmentHandler) List(c *gin.Context) {
	list, err := h.svc.ListAppointments(c.Request.Context(), &appointment.ListAppointmentsQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	a, err := h.svc.GetAppointment(c.Request.Context(), c.Param("id"), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.BookAppointment(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
		Date:        req.Date,
		Time:        req.Time,
		Type:        req.Type,
		Notes:       req.Notes,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, a)
}

// Reschedule handles PATCH /appointments/:id
func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	var req rescheduleRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.RescheduleAppointment(c.Request.Context(), c.Param("id"), &appointment.RescheduleAppointmentCommand{
		Date: req.Date,
		Time: req.Time,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	a, err := h.svc.CancelAppointment(c.Request.Context(), c.Param("id"), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.TransitionAppointment(c.Request.Context(), c.Param("id"), appointment.AppointmentStatus(req.Status), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}
