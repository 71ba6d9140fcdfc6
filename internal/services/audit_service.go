package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"governd/internal/config"
	"governd/internal/models"
	"governd/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService queries and exports connector update audit records.
type AuditService struct {
	db *gorm.DB
}

// NewAuditService creates a new audit service
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// GetLogsQuery builds the filtered audit query from request parameters.
func (s *AuditService) GetLogsQuery(c *gin.Context) *gorm.DB {
	query := s.db.Model(&models.ConnectorUpdateLog{})

	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if connectorID := c.Query("connector_id"); connectorID != "" {
		query = query.Where("connector_id = ?", connectorID)
	}
	if operator := c.Query("operator"); operator != "" {
		query = query.Where("operator = ?", operator)
	}
	if success := c.Query("is_success"); success != "" {
		if parsed, err := strconv.ParseBool(success); err == nil {
			query = query.Where("is_success = ?", parsed)
		}
	}
	if subOrg := c.Query("sub_org_scope"); subOrg != "" {
		if parsed, err := strconv.ParseBool(subOrg); err == nil {
			query = query.Where("sub_org_scope = ?", parsed)
		}
	}
	if startTime := c.Query("start_time"); startTime != "" {
		if parsed, err := time.Parse(time.RFC3339, startTime); err == nil {
			query = query.Where("timestamp >= ?", parsed)
		}
	}
	if endTime := c.Query("end_time"); endTime != "" {
		if parsed, err := time.Parse(time.RFC3339, endTime); err == nil {
			query = query.Where("timestamp <= ?", parsed)
		}
	}

	return query
}

// StreamAuditToCSV streams the filtered audit records as CSV.
func (s *AuditService) StreamAuditToCSV(c *gin.Context, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "timestamp", "category_id", "connector_id", "operator", "source_ip", "sub_org_scope", "is_success", "error_message", "properties", "duration_ms"}
	if err := writer.Write(header); err != nil {
		return err
	}

	query := s.GetLogsQuery(c).Order("timestamp desc")

	rows, err := query.Rows()
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var record models.ConnectorUpdateLog
		if err := s.db.ScanRows(rows, &record); err != nil {
			return err
		}
		row := []string{
			record.ID,
			record.Timestamp.Format(time.RFC3339),
			record.CategoryID,
			record.ConnectorID,
			record.Operator,
			record.SourceIP,
			strconv.FormatBool(record.SubOrgScope),
			strconv.FormatBool(record.IsSuccess),
			record.ErrorMessage,
			string(record.Properties),
			strconv.FormatInt(record.Duration, 10),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// cleanupLockKey serializes retention sweeps across instances.
const cleanupLockKey = "governd:audit:cleanup:lock"

// AuditCleanupService deletes audit records past the retention window. It
// only runs on the master instance.
type AuditCleanupService struct {
	db              *gorm.DB
	settingsManager *config.SystemSettingsManager
	store           store.Store
	stopChan        chan struct{}
}

// NewAuditCleanupService creates a new audit cleanup service
func NewAuditCleanupService(db *gorm.DB, settingsManager *config.SystemSettingsManager, storeInst store.Store) *AuditCleanupService {
	return &AuditCleanupService{
		db:              db,
		settingsManager: settingsManager,
		store:           storeInst,
		stopChan:        make(chan struct{}),
	}
}

// Start launches the periodic cleanup loop.
func (s *AuditCleanupService) Start() {
	go s.run()
}

// Stop terminates the cleanup loop.
func (s *AuditCleanupService) Stop() {
	close(s.stopChan)
}

func (s *AuditCleanupService) run() {
	interval := time.Duration(s.settingsManager.GetSettings().AuditCleanupIntervalMin) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.cleanup()
	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopChan:
			return
		}
	}
}

func (s *AuditCleanupService) cleanup() {
	retentionDays := s.settingsManager.GetSettings().AuditRetentionDays
	if retentionDays <= 0 {
		return
	}

	// only one instance sweeps at a time
	acquired, err := s.store.SetNX(cleanupLockKey, []byte("locked"), 5*time.Minute)
	if err != nil {
		logrus.WithError(err).Warn("failed to acquire audit cleanup lock")
		return
	}
	if !acquired {
		return
	}
	defer s.store.Delete(cleanupLockKey)

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	result := s.db.Where("timestamp < ?", cutoff).Delete(&models.ConnectorUpdateLog{})
	if result.Error != nil {
		logrus.WithError(result.Error).Error("audit cleanup failed")
		return
	}
	if result.RowsAffected > 0 {
		logrus.Info(fmt.Sprintf("audit cleanup removed %d records older than %d days", result.RowsAffected, retentionDays))
	}
}
