package httpkit

import (
	"errors"
	"net/http"

	"salescrm_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the envelope for all error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// ListResponse is the envelope for paginated list payloads. Seq carries the
// store's list sequence number so clients can discard stale responses that
// resolve out of request order.
type ListResponse struct {
	Items      any    `json:"items"`
	TotalCount int    `json:"totalCount"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	Seq        uint64 `json:"seq"`
}

func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// Fail renders a domain error using its apperr kind for the status code.
// Non-apperr errors are treated as internal.
func Fail(c *gin.Context, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		c.JSON(domainErr.HTTPStatus(), ErrorResponse{
			Error:   domainErr.Message,
			Details: domainErr.Details,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
