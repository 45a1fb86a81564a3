package v1

import (
	"github.com/eyualpha/HealthLink/internal/domain/prescription"
	"github.com/eyualpha/HealthLink/internal/safety"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PrescriptionHandler struct {
	svc *service.PrescriptionService
	log *zap.Logger
}

func NewPrescriptionHandler(svc *service.PrescriptionService, log *zap.Logger) *PrescriptionHandler {
	return &PrescriptionHandler{svc: svc, log: log}
}

type createPrescriptionRequest struct {
	PatientID    string `json:"patientId"`
	PatientName  string `json:"patientName"`
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Date         string `json:"date"`
	Instructions string `json:"instructions"`
}

type safetyCheckRequest struct {
	PatientID  string `json:"patientId"`
	Medication string `json:"medication"`
}

type safetyCheckResponse struct {
	Safe   bool           `json:"safe"`
	Alerts []safety.Alert `json:"alerts"`
}

func (h *PrescriptionHandler) List(c *gin.Context) {
	list, err := h.svc.ListPrescriptions(c.Request.Context(), &prescription.ListPrescriptionsQuery{Search: c.Query("search")}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

func (h *PrescriptionHandler) Create(c *gin.Context) {
	var req createPrescriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.IssuePrescription(c.Request.Context(), &prescription.CreatePrescriptionCommand{
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		Medication:   req.Medication,
		Dosage:       req.Dosage,
		Frequency:    req.Frequency,
		Duration:     req.Duration,
		Date:         req.Date,
		Instructions: req.Instructions,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, p)
}

// Check handles POST /prescriptions/check. Alerts are reported with 200;
// only Create treats them as a failure.
func (h *PrescriptionHandler) Check(c *gin.Context) {
	var req safetyCheckRequest
	if !bindJSON(c, &req) {
		return
	}

	alerts, err := h.svc.CheckSafety(c.Request.Context(), safety.Subject{
		PatientID:  req.PatientID,
		Medication: req.Medication,
	}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, safetyCheckResponse{Safe: len(alerts) == 0, Alerts: alerts})
}

func (h *PrescriptionHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), prescription.PrescriptionStatus(req.Status), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, p)
}
