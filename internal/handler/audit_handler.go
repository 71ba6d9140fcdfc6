package handler

import (
	"fmt"
	"log"
	"time"

	app_errors "governd/internal/errors"
	"governd/internal/i18n"
	"governd/internal/models"
	"governd/internal/response"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs handles fetching connector update records with filtering
// and pagination.
func (s *Server) GetAuditLogs(c *gin.Context) {
	query := s.AuditService.GetLogsQuery(c)

	var records []models.ConnectorUpdateLog
	query = query.Order("timestamp desc")
	pagination, err := response.Paginate(c, query, &records)
	if err != nil {
		response.Error(c, app_errors.ParseDBError(err))
		return
	}

	pagination.Items = records
	response.Success(c, pagination)
}

// ExportAuditLogs handles exporting filtered audit records to a CSV file.
func (s *Server) ExportAuditLogs(c *gin.Context) {
	filename := fmt.Sprintf("connector_audit_export_%s.csv", time.Now().Format("20060102150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "text/csv; charset=utf-8")

	// Stream the response
	err := s.AuditService.StreamAuditToCSV(c, c.Writer)
	if err != nil {
		log.Printf("Failed to stream audit records to CSV: %v", err)
		c.JSON(500, gin.H{"error": i18n.Message(c, "error.export_audit")})
		return
	}
}
