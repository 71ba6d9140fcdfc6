// Package response defines the JSON envelope shared by every API endpoint.
package response

import (
	"net/http"

	app_errors "governd/internal/errors"

	"github.com/gin-gonic/gin"
)

// Response is the uniform API envelope.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "Success",
		Data:    data,
	})
}

// Error writes a structured error response.
func Error(c *gin.Context, apiErr *app_errors.APIError) {
	if apiErr == nil {
		apiErr = app_errors.ErrInternalServer
	}
	c.JSON(apiErr.HTTPStatus, Response{
		Code:    apiErr.HTTPStatus,
		Message: apiErr.Message,
		Data:    gin.H{"code": apiErr.Code},
	})
}
