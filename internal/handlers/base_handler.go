package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/school-admin-service/internal/utils"
)

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse wraps payloads that carry no natural top-level type
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logger and shared request helpers; every
// handler embeds it
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...interface{}) {
	logger := utils.GetContextLogger(c.Request.Context())
	if logger == nil {
		logger = h.logger
	}
	logger.Info(msg, args...)
}

// LogError logs an unexpected error with the request-scoped logger
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...interface{}) {
	logger := utils.GetContextLogger(c.Request.Context())
	if logger == nil {
		logger = h.logger
	}
	logger.Error(msg, append([]interface{}{"error", err}, args...)...)
}

// parseIDParam parses a uint path parameter. On failure it writes the
// 400 response and returns 0; callers bail out on 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// parseQueryInt parses an optional numeric query parameter, falling
// back on missing or bad input
func (h *BaseHandler) parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
