package handler

import (
	app_errors "governd/internal/errors"
	"governd/internal/i18n"
	"governd/internal/response"

	"github.com/gin-gonic/gin"
)

// GetSettings returns the editable system settings grouped by category.
func (s *Server) GetSettings(c *gin.Context) {
	response.Success(c, s.SettingsManager.GetSettingsInfo())
}

// UpdateSettings validates and persists system setting changes.
func (s *Server) UpdateSettings(c *gin.Context) {
	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrBadRequest, i18n.Message(c, "error.invalid_request")))
		return
	}
	if len(updates) == 0 {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrValidation, "no settings provided"))
		return
	}

	if err := s.SettingsManager.UpdateSettings(updates); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrValidation, err.Error()))
		return
	}
	response.Success(c, s.SettingsManager.GetSettingsInfo())
}
