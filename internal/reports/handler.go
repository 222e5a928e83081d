package reports

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chainwatchhq/chainwatch/internal/entity"
	"github.com/chainwatchhq/chainwatch/pkg/common"
	"github.com/chainwatchhq/chainwatch/pkg/middleware"
	"github.com/chainwatchhq/chainwatch/pkg/pagination"
	"github.com/chainwatchhq/chainwatch/pkg/validation"
)

// Handler handles HTTP requests for incident reports
type Handler struct {
	service *Service
}

// NewHandler creates a new report handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit accepts a new incident report. Anonymous submissions are allowed:
// the reporter id is taken from the actor header when present.
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, validation.BindErrorMessage(err))
		return
	}

	var reporterID *uuid.UUID
	if actorID, err := middleware.GetActorID(c); err == nil {
		reporterID = &actorID
	}

	report, err := h.service.Submit(c.Request.Context(), req.EntityID, req.Narrative, reporterID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.CreatedResponse(c, report)
}

// Get returns a report with its risk report when one is attached
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, report)
}

// ListRecent returns reports newest first
func (h *Handler) ListRecent(c *gin.Context) {
	params := pagination.ParseParams(c)

	items, total, err := h.service.ListRecent(c.Request.Context(), params.Limit, params.Offset)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	common.SuccessResponseWithMeta(c, items, pagination.BuildMeta(params.Limit, params.Offset, total))
}

// RegisterRoutes registers report routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/reports")
	{
		group.POST("", h.Submit)
		group.GET("", h.ListRecent)
		group.GET("/:id", h.Get)
	}
}

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrReportNotFound):
		common.AppErrorResponse(c, common.NewNotFoundError("incident report not found", err))
	case errors.Is(err, ErrEmptyNarrative), errors.Is(err, ErrNarrativeTooLong):
		common.AppErrorResponse(c, common.NewUnprocessableError(err.Error(), err))
	case errors.Is(err, entity.ErrInvalidEntityFormat):
		common.AppErrorResponse(c, common.NewBadRequestError("invalid entity identifier", err))
	default:
		common.AppErrorResponse(c, common.NewInternalServerError("internal error"))
	}
}
