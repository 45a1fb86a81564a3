package v1

import (
	"net/http"
	"strconv"

	"github.com/eyualpha/HealthLink/internal/domain/patient"
	"github.com/eyualpha/HealthLink/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	svc *service.PatientService
	log *zap.Logger
}

func NewPatientHandler(svc *service.PatientService, log *zap.Logger) *PatientHandler {
	return &PatientHandler{svc: svc, log: log}
}

type listItemRequest struct {
	Value string `json:"value"`
}

type validateDraftResponse struct {
	Valid  bool                `json:"valid"`
	Errors patient.FieldErrors `json:"errors"`
}

func (h *PatientHandler) List(c *gin.Context) {
	list, err := h.svc.ListPatients(c.Request.Context(), &patient.ListPatientsQuery{Search: c.Query("search")}, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, list)
}

func (h *PatientHandler) Get(c *gin.Context) {
	rec, err := h.svc.GetPatient(c.Request.Context(), c.Param("id"), callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}

// Draft handles GET /patients/draft, the defaults for create mode.
func (h *PatientHandler) Draft(c *gin.Context) {
	draft, err := h.svc.NewDraft(callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, draft)
}

func (h *PatientHandler) Validate(c *gin.Context) {
	draft := patient.NewDraft()
	if !bindJSON(c, draft) {
		return
	}

	errs, err := h.svc.ValidateDraft(draft, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, validateDraftResponse{Valid: len(errs) == 0, Errors: errs})
}

func (h *PatientHandler) Create(c *gin.Context) {
	draft := patient.NewDraft()
	if !bindJSON(c, draft) {
		return
	}

	rec, err := h.svc.CreatePatient(c.Request.Context(), draft, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, rec)
}

func (h *PatientHandler) Update(c *gin.Context) {
	draft := patient.NewDraft()
	if !bindJSON(c, draft) {
		return
	}

	rec, err := h.svc.UpdatePatient(c.Request.Context(), c.Param("id"), draft, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}

// AddListItem handles POST /patients/:id/lists/:key
func (h *PatientHandler) AddListItem(c *gin.Context) {
	var req listItemRequest
	if !bindJSON(c, &req) {
		return
	}

	rec, err := h.svc.AddListItem(c.Request.Context(), c.Param("id"), patient.ListKey(c.Param("key")), req.Value, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}

// RemoveListItem handles DELETE /patients/:id/lists/:key/:index
func (h *PatientHandler) RemoveListItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid index: must be an integer")
		return
	}

	rec, err := h.svc.RemoveListItem(c.Request.Context(), c.Param("id"), patient.ListKey(c.Param("key")), index, callerFrom(c))
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, rec)
}
