package errors

import (
	"github.com/gin-gonic/gin"
)

// ErrorHandler turns pipeline and lookup failures into JSON responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorResponse is the body written for every pre-stream failure.
type ErrorResponse struct {
	Detail string    `json:"detail"`
	Code   ErrorCode `json:"code"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Respond normalizes err, logs it and aborts the request with the mapped
// status. It must only be called before any body bytes were written.
func (h *ErrorHandler) Respond(c *gin.Context, err error) {
	stdErr := AsStandardError(err)
	status := stdErr.HTTPStatus()

	fields := map[string]interface{}{
		"path":          c.FullPath(),
		"status":        status,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if len(stdErr.Metadata) > 0 {
		fields["metadata"] = stdErr.Metadata
	}
	if id, ok := c.Get("requestId"); ok {
		fields["requestId"] = id
	}
	if status >= 500 {
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Warn("request rejected", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Detail: stdErr.Message,
		Code:   stdErr.Code,
	})
}
