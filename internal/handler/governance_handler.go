package handler

import (
	app_errors "governd/internal/errors"
	"governd/internal/governance"
	"governd/internal/i18n"
	"governd/internal/response"
	"governd/internal/services"

	"github.com/gin-gonic/gin"
)

// subOrgScope reports whether the request asks for the reduced
// sub-organization view.
func subOrgScope(c *gin.Context) bool {
	return c.Query("scope") == "suborg"
}

// GetCategories returns all connector categories, filtered to the
// sub-organization view when scope=suborg is passed.
func (s *Server) GetCategories(c *gin.Context) {
	categories, err := s.GovernanceService.ListCategories(c.Request.Context(), subOrgScope(c))
	if err != nil {
		response.Error(c, toAPIError(err))
		return
	}
	response.Success(c, categories)
}

// GetConnector returns one connector mapped into its editable form, with
// labels and hints localized for the request.
func (s *Server) GetConnector(c *gin.Context) {
	form, err := s.GovernanceService.GetConnectorForm(
		c.Request.Context(),
		c.Param("categoryId"),
		c.Param("connectorId"),
		subOrgScope(c),
		i18n.ForRequest(c),
	)
	if err != nil {
		response.Error(c, toAPIError(err))
		return
	}
	response.Success(c, form)
}

// UpdateConnectorRequest is the submitted connector form state.
type UpdateConnectorRequest struct {
	CheckboxValues []string          `json:"checkbox_values"`
	ScalarValues   map[string]string `json:"scalar_values"`
}

// UpdateConnector applies a connector form submission upstream.
func (s *Server) UpdateConnector(c *gin.Context) {
	var req UpdateConnectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, app_errors.NewAPIError(app_errors.ErrBadRequest, i18n.Message(c, "error.invalid_request")))
		return
	}

	connectorID := c.Param("connectorId")
	viewModel := &governance.FormViewModel{
		ConnectorID:    connectorID,
		CheckboxValues: req.CheckboxValues,
		ScalarValues:   req.ScalarValues,
	}

	meta := services.UpdateMeta{
		Operator:    c.GetHeader("X-Operator"),
		SourceIP:    c.ClientIP(),
		SubOrgScope: subOrgScope(c),
	}

	if err := s.GovernanceService.UpdateConnector(c.Request.Context(), c.Param("categoryId"), connectorID, viewModel, meta); err != nil {
		response.Error(c, toAPIError(err))
		return
	}
	response.Success(c, gin.H{"updated": true})
}

func toAPIError(err error) *app_errors.APIError {
	if apiErr, ok := err.(*app_errors.APIError); ok {
		return apiErr
	}
	return app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error())
}
