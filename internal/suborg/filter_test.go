package suborg

import (
	"errors"
	"os"
	"testing"

	"governd/internal/governance"
	"governd/internal/models"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}

func recoveryConnector() models.GovernanceConnector {
	return models.GovernanceConnector{
		ID:           "account-recovery",
		Name:         "account-recovery",
		CategoryID:   CategoryAccountRecovery,
		FriendlyName: "Account Recovery",
		Properties: []models.ConnectorProperty{
			{Name: "Recovery.Notification.Password.Enable", Value: "true"},
			{Name: "Recovery.Question.Password.Enable", Value: "false"},
			{Name: "Recovery.ExpiryTime", Value: "1440"},
			{Name: "Recovery.NotifySuccess", Value: "false"},
			{Name: "Recovery.Internal.Secret", Value: "xxx"},
		},
	}
}

func TestFilterForSubOrg(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name               string
		categoryID         string
		connectors         []models.GovernanceConnector
		expectedConnectors int
		expectedProperties []string
		expectUnknown      bool
	}{
		{
			name:               "allow-listed connector keeps allow-listed properties in original order",
			categoryID:         CategoryAccountRecovery,
			connectors:         []models.GovernanceConnector{recoveryConnector()},
			expectedConnectors: 1,
			expectedProperties: []string{
				"Recovery.Notification.Password.Enable",
				"Recovery.ExpiryTime",
				"Recovery.NotifySuccess",
			},
		},
		{
			name:       "connector not in allow-list is dropped entirely",
			categoryID: CategoryAccountRecovery,
			connectors: []models.GovernanceConnector{
				{ID: "admin-forced-password-reset", Properties: []models.ConnectorProperty{{Name: "Recovery.AdminPasswordReset.Offline"}}},
			},
			expectedConnectors: 0,
		},
		{
			name:          "unknown category fails explicitly",
			categoryID:    "not-a-real-category",
			connectors:    []models.GovernanceConnector{},
			expectUnknown: true,
		},
		{
			name:               "empty connector list stays empty",
			categoryID:         CategoryUserOnboarding,
			connectors:         []models.GovernanceConnector{},
			expectedConnectors: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered, err := table.FilterForSubOrg(tt.categoryID, tt.connectors)

			if tt.expectUnknown {
				var unknown *UnknownCategoryError
				if !errors.As(err, &unknown) {
					t.Fatalf("expected UnknownCategoryError, got %v", err)
				}
				if unknown.CategoryID != tt.categoryID {
					t.Errorf("error names category %q, expected %q", unknown.CategoryID, tt.categoryID)
				}
				return
			}

			if err != nil {
				t.Fatalf("FilterForSubOrg returned error: %v", err)
			}
			if len(filtered) != tt.expectedConnectors {
				t.Fatalf("retained %d connectors, expected %d", len(filtered), tt.expectedConnectors)
			}
			if tt.expectedProperties != nil {
				props := filtered[0].Properties
				if len(props) != len(tt.expectedProperties) {
					t.Fatalf("retained %d properties, expected %d", len(props), len(tt.expectedProperties))
				}
				for i, name := range tt.expectedProperties {
					if props[i].Name != name {
						t.Errorf("property %d = %q, expected %q (original order)", i, props[i].Name, name)
					}
				}
			}
		})
	}
}

func TestFilterForSubOrgDoesNotMutateInput(t *testing.T) {
	table := NewTable()
	input := []models.GovernanceConnector{recoveryConnector()}

	if _, err := table.FilterForSubOrg(CategoryAccountRecovery, input); err != nil {
		t.Fatalf("FilterForSubOrg returned error: %v", err)
	}

	if len(input[0].Properties) != 5 {
		t.Errorf("input connector mutated: now has %d properties", len(input[0].Properties))
	}
}

func TestFilterResultIsSubsetOfAllowList(t *testing.T) {
	table := NewTable()
	filtered, err := table.FilterForSubOrg(CategoryAccountRecovery, []models.GovernanceConnector{recoveryConnector()})
	if err != nil {
		t.Fatalf("FilterForSubOrg returned error: %v", err)
	}

	allowed := make(map[string]struct{})
	for _, entry := range defaultAllowList[CategoryAccountRecovery] {
		for _, name := range entry.Properties {
			allowed[name] = struct{}{}
		}
	}
	for _, connector := range filtered {
		for _, property := range connector.Properties {
			if _, ok := allowed[property.Name]; !ok {
				t.Errorf("property %q survived filtering but is not allow-listed", property.Name)
			}
		}
	}
}

func TestNewTableFromFile(t *testing.T) {
	path := t.TempDir() + "/visibility.hjson"
	content := `{
  // deployment override: only password recovery is exposed
  "account-recovery": [
    {
      id: account-recovery
      properties: [
        Recovery.Notification.Password.Enable
        Recovery.ExpiryTime
      ]
    }
  ]
}`
	if err := writeFile(path, content); err != nil {
		t.Fatalf("failed to write override file: %v", err)
	}

	table, err := NewTableFromFile(path)
	if err != nil {
		t.Fatalf("NewTableFromFile returned error: %v", err)
	}

	if !table.Has(CategoryAccountRecovery) {
		t.Error("override table missing account-recovery category")
	}
	if table.Has(CategoryUserOnboarding) {
		t.Error("override table should fully replace the default allow-list")
	}

	filtered, err := table.FilterForSubOrg(CategoryAccountRecovery, []models.GovernanceConnector{recoveryConnector()})
	if err != nil {
		t.Fatalf("FilterForSubOrg returned error: %v", err)
	}
	if len(filtered) != 1 || len(filtered[0].Properties) != 2 {
		t.Errorf("override filtering = %+v, expected 1 connector with 2 properties", filtered)
	}
}

func TestDefaultAllowListProducesViewModels(t *testing.T) {
	table := NewTable()

	for categoryID, entries := range defaultAllowList {
		for _, entry := range entries {
			schema, err := governance.SchemaFor(entry.ID)
			if err != nil {
				t.Fatalf("%s/%s: no form schema: %v", categoryID, entry.ID, err)
			}

			// A complete upstream property set for the connector.
			full := make([]models.ConnectorProperty, 0, len(schema.Keys()))
			for _, key := range schema.Keys() {
				full = append(full, models.ConnectorProperty{Name: key, Value: "1"})
			}

			filtered, err := table.FilterForSubOrg(categoryID, []models.GovernanceConnector{
				{ID: entry.ID, CategoryID: categoryID, Properties: full},
			})
			if err != nil {
				t.Fatalf("%s/%s: FilterForSubOrg returned error: %v", categoryID, entry.ID, err)
			}
			if len(filtered) != 1 {
				t.Fatalf("%s/%s: filter kept %d connectors, expected 1", categoryID, entry.ID, len(filtered))
			}

			allowed, ok := table.AllowedProperties(categoryID, entry.ID)
			if !ok {
				t.Fatalf("%s/%s: AllowedProperties reported no entry", categoryID, entry.ID)
			}

			flat := make([]models.ConfigProperty, 0, len(filtered[0].Properties))
			for _, p := range filtered[0].Properties {
				flat = append(flat, models.ConfigProperty{Name: p.Name, Value: p.Value})
			}

			vm, err := schema.Restrict(allowed).ToViewModel(flat)
			if err != nil {
				t.Errorf("%s/%s: filtered properties do not satisfy the restricted schema: %v", categoryID, entry.ID, err)
				continue
			}
			if len(vm.ScalarValues) == 0 {
				t.Errorf("%s/%s: restricted view model has no scalar values", categoryID, entry.ID)
			}
		}
	}
}
