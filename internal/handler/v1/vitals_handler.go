package v1

import (
	"time"

	"github.com/eyualpha/HealthLink/internal/domain/vitals"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VitalsHandler struct {
	svc *service.VitalsService
	log *zap.Logger
}

func NewVitalsHandler(svc *service.VitalsService, log *zap.Logger) *VitalsHandler {
	return &VitalsHandler{svc: svc, log: log}
}

type recordVitalsRequest struct {
	PatientID   string     `json:"patientId"`
	PatientName string     `json:"patientName"`
	RecordedAt  *time.Time `json:"recordedAt"`
	BP          string     `json:"bp"`
	HR          *int       `json:"hr"`
	Temp        *float64   `json:"temp"`
	SpO2        *int       `json:"spo2"`
	RecordedBy  string     `json:"recordedBy"`
}

func (h *VitalsHandler) List(c *gin.Context) {
	list, err := h.svc.ListVitals(c.Request.Context(), &vitals.ListVitalsQuery{Search: c.Query("search")}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

func (h *VitalsHandler) Record(c *gin.Context) {
	var req recordVitalsRequest
	if !bindJSON(c, &req) {
		return
	}

	v, err := h.svc.RecordVitals(c.Request.Context(), &vitals.RecordVitalsCommand{
		PatientID:     req.PatientID,
		PatientName:   req.PatientName,
		RecordedAt:    req.RecordedAt,
		BloodPressure: req.BP,
		HeartRate:     req.HR,
		Temperature:   req.Temp,
		SpO2:          req.SpO2,
		RecordedBy:    req.RecordedBy,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, v)
}
