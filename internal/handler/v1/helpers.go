package v1

import (
	"errors"
	"net/http"

	"github.com/eyualpha/HealthLink/internal/domain/appointment"
	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"github.com/eyualpha/HealthLink/internal/middleware"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type SafetyAlertResponse struct {
	Error  string         `json:"error"`
	Code   string         `json:"code"`
	Alerts []safety.Alert `json:"alerts"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Code:    "VALIDATION_FAILED",
			Details: validErr.Fields,
		})
		return
	}

	var alertErr *service.SafetyAlertError
	if errors.As(err, &alertErr) {
		c.JSON(http.StatusUnprocessableEntity, SafetyAlertResponse{
			Error:  prescription.ErrSafetyAlert.Error(),
			Code:   "SAFETY_ALERT",
			Alerts: alertErr.Alerts,
		})
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, prescription.ErrPrescriptionNotFound),
		errors.Is(err, vitals.ErrReadingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, patient.ErrPatientAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrInvalidStatusTransition),
		errors.Is(err, appointment.ErrInvalidStatus),
		errors.Is(err, prescription.ErrInvalidStatusTransition),
		errors.Is(err, patient.ErrPatientIDMismatch),
		errors.Is(err, patient.ErrInvalidListField),
		errors.Is(err, patient.ErrListIndexOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, prescription.ErrSafetyAlert):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "SAFETY_ALERT"})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	default:
		log.Error("request failed",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

// callerFrom builds the service caller from the authenticated request.
func callerFrom(c *gin.Context) service.Caller {
	caller := service.Caller{
		IP:        c.ClientIP(),
		RequestID: middleware.RequestIDFromContext(c),
	}
	if claims, ok := middleware.ClaimsFromContext(c); ok {
		caller.Subject = claims.Subject
		caller.Name = claims.Name
		caller.Role = claims.Role
	}
	return caller
}
