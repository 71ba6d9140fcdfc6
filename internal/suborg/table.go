// Package suborg restricts which governance connectors and properties a
// sub-organization administrator may see. The allow-list is fixed at
// startup; there is no reinitialization path.
package suborg

import (
	"fmt"
	"os"
	"strings"

	"governd/internal/governance"
	"governd/internal/types"

	"github.com/hjson/hjson-go/v4"
	"github.com/sirupsen/logrus"
)

// Category ids as reported by the identity server.
const (
	CategoryUserOnboarding  = "user-onboarding"
	CategoryAccountRecovery = "account-recovery"
	CategoryLoginAttempts   = "login-attempts-security"
)

// AllowedConnector declares a connector visible to sub-organizations,
// together with the subset of its properties that may be shown.
type AllowedConnector struct {
	ID         string   `json:"id"`
	Properties []string `json:"properties"`
}

// Table is the immutable category -> allowed connectors lookup.
type Table struct {
	categories map[string][]AllowedConnector
}

// defaultAllowList mirrors the property keys declared by the connector form
// schemas. Connectors or categories absent here are hidden from
// sub-organization administrators entirely.
var defaultAllowList = map[string][]AllowedConnector{
	CategoryUserOnboarding: {
		{
			ID: governance.ConnectorSelfSignUp,
			Properties: []string{
				"SelfRegistration.Enable",
				"SelfRegistration.LockOnCreation",
				"SelfRegistration.Notification.InternallyManage",
				"SelfRegistration.VerificationCode.ExpiryTime",
				"SelfRegistration.CallbackRegex",
			},
		},
	},
	CategoryAccountRecovery: {
		{
			ID: governance.ConnectorAccountRecovery,
			Properties: []string{
				"Recovery.Notification.Password.Enable",
				"Recovery.ReCaptcha.Password.Enable",
				"Recovery.Notification.Username.Enable",
				"Recovery.Notification.InternallyManage",
				"Recovery.NotifySuccess",
				"Recovery.ExpiryTime",
				"Recovery.CallbackRegex",
			},
		},
	},
	CategoryLoginAttempts: {
		{
			ID: governance.ConnectorLoginAttempts,
			Properties: []string{
				"account.lock.handler.enable",
				"account.lock.handler.On.Failure.Max.Attempts",
				"account.lock.handler.Time",
			},
		},
	},
}

// NewTable returns the compiled-in default visibility table.
func NewTable() *Table {
	return &Table{categories: defaultAllowList}
}

// NewTableFromManager builds the visibility table, preferring a configured
// override file over the compiled-in defaults.
func NewTableFromManager(configManager types.ConfigManager) (*Table, error) {
	table := NewTable()
	if path := configManager.GetVisibilityOverridePath(); path != "" {
		loaded, err := NewTableFromFile(path)
		if err != nil {
			return nil, err
		}
		table = loaded
	}
	logrus.Infof("sub-organization visibility: %d categories allow-listed (%s)",
		len(table.Categories()), strings.Join(table.Categories(), ", "))
	return table, nil
}

// NewTableFromFile loads a deployment-specific allow-list from an HJSON
// file with the same shape as the compiled-in table. The file fully
// replaces the default; it is read once, at startup.
func NewTableFromFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read visibility override %s: %w", path, err)
	}

	var categories map[string][]AllowedConnector
	if err := hjson.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse visibility override %s: %w", path, err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("visibility override %s declares no categories", path)
	}

	for categoryID, connectors := range categories {
		for _, connector := range connectors {
			if _, err := governance.SchemaFor(connector.ID); err != nil {
				logrus.WithFields(logrus.Fields{
					"category":  categoryID,
					"connector": connector.ID,
				}).Warn("visibility override allow-lists a connector with no form schema")
			}
		}
	}

	return &Table{categories: categories}, nil
}

// Has reports whether an allow-list entry exists for the category.
func (t *Table) Has(categoryID string) bool {
	_, ok := t.categories[categoryID]
	return ok
}

// AllowedProperties returns the allow-listed property names for a
// connector within a category, in declaration order. The second return is
// false when the connector is not allow-listed.
func (t *Table) AllowedProperties(categoryID, connectorID string) ([]string, bool) {
	for _, entry := range t.categories[categoryID] {
		if entry.ID == connectorID {
			return entry.Properties, true
		}
	}
	return nil, false
}

// Categories returns the ids of all allow-listed categories.
func (t *Table) Categories() []string {
	ids := make([]string, 0, len(t.categories))
	for id := range t.categories {
		ids = append(ids, id)
	}
	return ids
}
