package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-admin-service/internal/models"
	"github.com/SAP-F-2025/school-admin-service/internal/repositories"
	"github.com/SAP-F-2025/school-admin-service/internal/services"
	"github.com/SAP-F-2025/school-admin-service/internal/utils"
)

type AuditHandler struct {
	BaseHandler
	service services.AuditService
}

func NewAuditHandler(service services.AuditService, logger utils.Logger) *AuditHandler {
	return &AuditHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListAuditLog returns the audit trail, newest first
func (h *AuditHandler) ListAuditLog(c *gin.Context) {
	p, ok := getPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "User not authenticated"})
		return
	}

	filters := repositories.AuditFilters{
		Limit:  h.parseQueryInt(c, "limit", 50),
		Offset: h.parseQueryInt(c, "offset", 0),
	}
	if raw := c.Query("action"); raw != "" {
		action := models.AuditAction(raw)
		filters.Action = &action
	}
	if schoolID := h.parseQueryInt(c, "school_id", 0); schoolID > 0 {
		id := uint(schoolID)
		filters.SchoolID = &id
	}

	response, err := h.service.List(c.Request.Context(), p, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuditHandler) handleServiceError(c *gin.Context, err error) {
	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
