package cases

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/evidence"
	"github.com/chainwatchhq/chainwatch/internal/risk"
	"github.com/chainwatchhq/chainwatch/pkg/common"
	"github.com/chainwatchhq/chainwatch/pkg/middleware"
	"github.com/chainwatchhq/chainwatch/pkg/pagination"
	"github.com/chainwatchhq/chainwatch/pkg/validation"
)

// Handler handles HTTP requests for cases
type Handler struct {
	service *Service
}

// NewHandler creates a new case handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get returns a case by id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	caseRecord, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, caseRecord)
}

// List returns cases matching the query filters
func (h *Handler) List(c *gin.Context) {
	params := pagination.ParseParams(c)

	var filters ListFilters
	if v := c.Query("status"); v != "" {
		status := CaseStatus(v)
		if _, ok := validTransitions[status]; !ok {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid status filter")
			return
		}
		filters.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := CasePriority(v)
		if priority.rank() == 0 {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid priority filter")
			return
		}
		filters.Priority = &priority
	}
	if v := c.Query("investigator_id"); v != "" {
		investigatorID, err := uuid.Parse(v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid investigator id")
			return
		}
		filters.InvestigatorID = &investigatorID
	}
	if v := c.Query("risk_level"); v != "" {
		level := risk.RiskLevel(v)
		if level.Severity() == 0 {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid risk level filter")
			return
		}
		filters.RiskLevel = &level
	}

	items, total, err := h.service.List(c.Request.Context(), filters, params.Limit, params.Offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// Transition moves a case to a new status
func (h *Handler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	actorID, err := middleware.GetActorID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "actor id required")
		return
	}

	caseRecord, err := h.service.Transition(c.Request.Context(), id, CaseStatus(req.Target), actorID, req.ExpectedVersion)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, caseRecord)
}

// AssignInvestigator assigns an investigator to a case
func (h *Handler) AssignInvestigator(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	investigatorID, err := uuid.Parse(req.InvestigatorID)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid investigator id")
		return
	}

	caseRecord, err := h.service.AssignInvestigator(c.Request.Context(), id, investigatorID, req.ExpectedVersion)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, caseRecord)
}

// LinkEvidence attaches evidence to a case
func (h *Handler) LinkEvidence(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	var req LinkEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	evidenceID, err := uuid.Parse(req.EvidenceID)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
		return
	}

	if err := h.service.LinkEvidence(c.Request.Context(), id, evidenceID); err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"linked": true})
}

// RegisterRoutes registers case routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/cases")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("/:id/transition", h.Transition)
		group.POST("/:id/assign", h.AssignInvestigator)
		group.POST("/:id/evidence", h.LinkEvidence)
	}
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCaseNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("case not found", err))
	case errors.Is(err, ErrInvalidTransition):
		common.AppErrorResponse(c, common.NewUnprocessableError("invalid case status transition", err))
	case errors.Is(err, ErrConcurrentModification):
		common.AppErrorResponse(c, common.NewConflictError("case was modified concurrently", err))
	case errors.Is(err, evidence.ErrEvidenceNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("evidence not found", err))
	case errors.Is(err, evidence.ErrEvidenceLocked):
		common.AppErrorResponse(c, common.NewConflictError("evidence is locked to another case", err))
	default:
		common.AppErrorResponse(c, common.NewInternalServerError("internal error"))
	}
}
