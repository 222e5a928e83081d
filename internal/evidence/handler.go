package evidence

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/entity"
	"github.com/chainwatchhq/chainwatch/pkg/common"
	"github.com/chainwatchhq/chainwatch/pkg/middleware"
	"github.com/chainwatchhq/chainwatch/pkg/validation"
)

// Handler handles HTTP requests for evidence
type Handler struct {
	service *Service
}

// NewHandler creates a new evidence handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RecordUpload registers metadata for an externally uploaded file
func (h *Handler) RecordUpload(c *gin.Context) {
	var req RecordUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	actorID, err := middleware.GetActorID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "actor id required")
		return
	}

	e, err := h.service.RecordUpload(c.Request.Context(), &req, actorID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.CreatedResponse(c, e)
}

// VerifyIntegrity checks a recomputed hash against the stored one
func (h *Handler) VerifyIntegrity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
		return
	}

	var req VerifyIntegrityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	verified, err := h.service.VerifyIntegrity(c.Request.Context(), id, req.RecomputedHash)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"verified": verified})
}

// Get returns evidence by id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
		return
	}

	e, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, e)
}

// UpdateTags replaces the tag set on unlocked evidence
func (h *Handler) UpdateTags(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
		return
	}

	var req UpdateTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	if err := h.service.UpdateTags(c.Request.Context(), id, req.Tags); err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"updated": true})
}

// Delete removes unlocked evidence
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid evidence id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true})
}

// ListByCase returns the evidence linked to a case
func (h *Handler) ListByCase(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	items, err := h.service.ListByCase(c.Request.Context(), caseID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, items)
}

// RegisterRoutes registers evidence routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	ev := rg.Group("/evidence")
	{
		ev.POST("", h.RecordUpload)
		ev.GET("/:id", h.Get)
		ev.POST("/:id/verify", h.VerifyIntegrity)
		ev.PUT("/:id/tags", h.UpdateTags)
		ev.DELETE("/:id", h.Delete)
	}
	rg.GET("/cases/:id/evidence", h.ListByCase)
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEvidenceNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("evidence not found", err))
	case errors.Is(err, ErrCaseNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("case not found", err))
	case errors.Is(err, ErrEvidenceLocked):
		common.AppErrorResponse(c, common.NewConflictError("evidence is locked to a case", err))
	case errors.Is(err, ErrMissingFileHash), errors.Is(err, ErrFileTooLarge):
		common.AppErrorResponse(c, common.NewUnprocessableError(err.Error(), err))
	case errors.Is(err, entity.ErrInvalidEntityFormat):
		common.AppErrorResponse(c, common.NewBadRequestError("invalid entity identifier", err))
	default:
		common.AppErrorResponse(c, common.NewInternalServerError("internal error"))
	}
}
