package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"goalbridge/internal/domain/framework"
)

type apiErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// mapDomainError translates an engine error into an HTTP status code and a
// user-facing message. It returns (0, "") for errors it does not recognize.
func mapDomainError(err error) (status int, message string) {
	if err == nil {
		return 0, ""
	}
	switch {
	case framework.IsUnsupported(err):
		return http.StatusBadRequest, err.Error()
	case framework.IsMalformed(err):
		return http.StatusBadRequest, err.Error()
	case framework.IsHybridNotEnabled(err):
		return http.StatusConflict, err.Error()
	case errors.Is(err, framework.ErrNotInitialized):
		return http.StatusConflict, err.Error()
	default:
		return 0, ""
	}
}

func (h *Handler) writeJSONError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("HTTP %d - %s: %v", status, message, err)
		} else {
			h.logger.Warn("HTTP %d - %s: %v", status, message, err)
		}
	} else {
		h.logger.Warn("HTTP %d - %s", status, message)
	}

	resp := apiErrorResponse{Error: message}
	if err != nil && status < http.StatusInternalServerError {
		resp.Details = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}

// writeMappedError uses the domain mapping when it applies, otherwise the
// provided default status and message.
func (h *Handler) writeMappedError(c *gin.Context, err error, defaultStatus int, defaultMsg string) {
	if status, msg := mapDomainError(err); status != 0 {
		h.writeJSONError(c, status, msg, err)
		return
	}
	h.writeJSONError(c, defaultStatus, defaultMsg, err)
}
