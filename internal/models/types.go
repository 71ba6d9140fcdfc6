package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patch operations accepted by the identity server's governance API.
const (
	PatchOperationUpdate = "UPDATE"
)

// ConfigProperty is a flat key/value pair as exposed by the identity
// server's governance API. Name is a dotted hierarchical key, e.g.
// "SelfRegistration.Enable".
type ConfigProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PatchRequest is the payload sent upstream to change connector properties.
type PatchRequest struct {
	Operation  string           `json:"operation"`
	Properties []ConfigProperty `json:"properties"`
}

// ConnectorProperty is a property together with its display metadata as
// reported by the identity server.
type ConnectorProperty struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// GovernanceConnector is a named, independently toggleable governance
// feature (e.g. self registration) within a category.
type GovernanceConnector struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	CategoryID   string              `json:"category_id"`
	FriendlyName string              `json:"friendly_name"`
	Order        int                 `json:"order"`
	Properties   []ConnectorProperty `json:"properties"`
}

// ConnectorCategory groups connectors shown together in the admin console.
type ConnectorCategory struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Connectors []GovernanceConnector `json:"connectors"`
}

// SystemSetting corresponds to system_settings table
type SystemSetting struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SettingKey   string    `gorm:"type:varchar(255);not null;unique" json:"setting_key"`
	SettingValue string    `gorm:"type:text;not null" json:"setting_value"`
	Description  string    `gorm:"type:varchar(512)" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ConnectorUpdateLog corresponds to connector_update_logs table. One row is
// written for every attempted governance PATCH, successful or not.
type ConnectorUpdateLog struct {
	ID           string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
	CategoryID   string         `gorm:"type:varchar(255);not null;index" json:"category_id"`
	ConnectorID  string         `gorm:"type:varchar(255);not null;index" json:"connector_id"`
	Operator     string         `gorm:"type:varchar(255)" json:"operator"`
	SourceIP     string         `gorm:"type:varchar(45)" json:"source_ip"`
	SubOrgScope  bool           `gorm:"not null;default:false" json:"sub_org_scope"`
	IsSuccess    bool           `gorm:"not null" json:"is_success"`
	ErrorMessage string         `gorm:"type:text" json:"error_message"`
	Properties   datatypes.JSON `gorm:"type:json" json:"properties"`
	Duration     int64          `gorm:"not null" json:"duration_ms"`
}
