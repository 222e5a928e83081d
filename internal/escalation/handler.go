package escalation

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/cases"
	"github.com/chainwatchhq/chainwatch/internal/entity"
	"github.com/chainwatchhq/chainwatch/pkg/common"
	"github.com/chainwatchhq/chainwatch/pkg/middleware"
	"github.com/chainwatchhq/chainwatch/pkg/validation"
)

// Handler handles HTTP requests for escalations
type Handler struct {
	service *Service
}

// NewHandler creates a new escalation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Freeze freezes an entity
func (h *Handler) Freeze(c *gin.Context) {
	h.flipFreeze(c, true)
}

// Unfreeze unfreezes an entity
func (h *Handler) Unfreeze(c *gin.Context) {
	h.flipFreeze(c, false)
}

func (h *Handler) flipFreeze(c *gin.Context, freeze bool) {
	var req FreezeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	actorID, err := middleware.GetActorID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "actor id required")
		return
	}

	var rec *EscalationRecord
	if freeze {
		rec, err = h.service.Freeze(c.Request.Context(), req.EntityID, req.Reason, actorID)
	} else {
		rec, err = h.service.Unfreeze(c.Request.Context(), req.EntityID, req.Reason, actorID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.CreatedResponse(c, rec)
}

// IsFrozen reports an entity's freeze state
func (h *Handler) IsFrozen(c *gin.Context) {
	entityID := c.Param("entity_id")

	frozen, err := h.service.IsFrozen(c.Request.Context(), entityID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"entity_id": entityID, "frozen": frozen})
}

// NotifyAuthority records and dispatches an authority notification
func (h *Handler) NotifyAuthority(c *gin.Context) {
	var req NotifyAuthorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	actorID, err := middleware.GetActorID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "actor id required")
		return
	}

	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	evidenceIDs := make([]uuid.UUID, 0, len(req.EvidenceIDs))
	for _, raw := range req.EvidenceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
			return
		}
		evidenceIDs = append(evidenceIDs, id)
	}

	rec, err := h.service.NotifyAuthority(c.Request.Context(), caseID, req.StationID, req.Description, evidenceIDs, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.CreatedResponse(c, rec)
}

// History lists a case's escalation audit trail
func (h *Handler) History(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("case_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	items, err := h.service.History(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, items)
}

// RegisterRoutes registers escalation routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/escalations")
	{
		group.POST("/freeze", h.Freeze)
		group.POST("/unfreeze", h.Unfreeze)
		group.POST("/notify-authority", h.NotifyAuthority)
		group.GET("/cases/:case_id", h.History)
	}

	rg.GET("/entities/:entity_id/frozen", h.IsFrozen)
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrAlreadyFrozen):
		common.AppErrorResponse(c, common.NewConflictError("entity is already frozen", err))
	case errors.Is(err, ErrNotFrozen):
		common.AppErrorResponse(c, common.NewConflictError("entity is not frozen", err))
	case errors.Is(err, ErrEmptyReason), errors.Is(err, ErrEmptyDescription):
		common.AppErrorResponse(c, common.NewUnprocessableError(err.Error(), err))
	case errors.Is(err, cases.ErrCaseNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("case not found", err))
	case errors.Is(err, entity.ErrInvalidEntityFormat):
		common.AppErrorResponse(c, common.NewBadRequestError("invalid entity identifier", err))
	default:
		common.AppErrorResponse(c, common.NewInternalServerError("internal error"))
	}
}
