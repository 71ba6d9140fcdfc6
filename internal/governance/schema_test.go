package governance

import (
	"errors"
	"reflect"
	"testing"

	"governd/internal/models"
)

func TestToViewModel(t *testing.T) {
	schema := &FormSchema{
		ConnectorID: ConnectorSelfSignUp,
		CheckboxKeys: []string{
			"SelfRegistration.Enable",
			"SelfRegistration.LockOnCreation",
		},
		ScalarKeys: []string{
			"SelfRegistration.VerificationCode.ExpiryTime",
			"SelfRegistration.VerificationCode.SMSOTP.ExpiryTime",
			"SelfRegistration.CallbackRegex",
		},
	}

	tests := []struct {
		name            string
		properties      []models.ConfigProperty
		expectedChecked []string
		expectedScalars map[string]string
		expectedMissing string
	}{
		{
			name: "enabled flag and scalars",
			properties: []models.ConfigProperty{
				{Name: "SelfRegistration.Enable", Value: "true"},
				{Name: "SelfRegistration.LockOnCreation", Value: "false"},
				{Name: "SelfRegistration.VerificationCode.ExpiryTime", Value: "1440"},
				{Name: "SelfRegistration.VerificationCode.SMSOTP.ExpiryTime", Value: "1"},
				{Name: "SelfRegistration.CallbackRegex", Value: ".*"},
			},
			expectedChecked: []string{"SelfRegistration.Enable"},
			expectedScalars: map[string]string{
				"SelfRegistration.VerificationCode.ExpiryTime":        "1440",
				"SelfRegistration.VerificationCode.SMSOTP.ExpiryTime": "1",
				"SelfRegistration.CallbackRegex":                      ".*",
			},
		},
		{
			name: "only literal true enables a checkbox",
			properties: []models.ConfigProperty{
				{Name: "SelfRegistration.Enable", Value: "True"},
				{Name: "SelfRegistration.LockOnCreation", Value: "1"},
				{Name: "SelfRegistration.VerificationCode.ExpiryTime", Value: "10"},
				{Name: "SelfRegistration.VerificationCode.SMSOTP.ExpiryTime", Value: "2"},
				{Name: "SelfRegistration.CallbackRegex", Value: ""},
			},
			expectedChecked: []string{},
			expectedScalars: map[string]string{
				"SelfRegistration.VerificationCode.ExpiryTime":        "10",
				"SelfRegistration.VerificationCode.SMSOTP.ExpiryTime": "2",
				"SelfRegistration.CallbackRegex":                      "",
			},
		},
		{
			name: "absent checkbox property treated as disabled",
			properties: []models.ConfigProperty{
				{Name: "SelfRegistration.VerificationCode.ExpiryTime", Value: "5"},
				{Name: "SelfRegistration.VerificationCode.SMSOTP.ExpiryTime", Value: "5"},
				{Name: "SelfRegistration.CallbackRegex", Value: "https://.*"},
			},
			expectedChecked: []string{},
			expectedScalars: map[string]string{
				"SelfRegistration.VerificationCode.ExpiryTime":        "5",
				"SelfRegistration.VerificationCode.SMSOTP.ExpiryTime": "5",
				"SelfRegistration.CallbackRegex":                      "https://.*",
			},
		},
		{
			name: "missing scalar fails with the key name",
			properties: []models.ConfigProperty{
				{Name: "SelfRegistration.Enable", Value: "true"},
				{Name: "SelfRegistration.VerificationCode.ExpiryTime", Value: "1440"},
				{Name: "SelfRegistration.CallbackRegex", Value: ".*"},
			},
			expectedMissing: "SelfRegistration.VerificationCode.SMSOTP.ExpiryTime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, err := schema.ToViewModel(tt.properties)

			if tt.expectedMissing != "" {
				if err == nil {
					t.Fatalf("expected MissingPropertyError, got view model %+v", vm)
				}
				var missing *MissingPropertyError
				if !errors.As(err, &missing) {
					t.Fatalf("expected MissingPropertyError, got %T: %v", err, err)
				}
				if missing.Key != tt.expectedMissing {
					t.Errorf("expected missing key %q, got %q", tt.expectedMissing, missing.Key)
				}
				return
			}

			if err != nil {
				t.Fatalf("ToViewModel returned error: %v", err)
			}
			if !reflect.DeepEqual(vm.CheckboxValues, tt.expectedChecked) {
				t.Errorf("checkbox values = %v, expected %v", vm.CheckboxValues, tt.expectedChecked)
			}
			if !reflect.DeepEqual(vm.ScalarValues, tt.expectedScalars) {
				t.Errorf("scalar values = %v, expected %v", vm.ScalarValues, tt.expectedScalars)
			}
		})
	}
}

func TestToUpdateRequestCompleteness(t *testing.T) {
	schema, err := SchemaFor(ConnectorAccountRecovery)
	if err != nil {
		t.Fatalf("SchemaFor returned error: %v", err)
	}

	tests := []struct {
		name string
		vm   *FormViewModel
	}{
		{
			name: "empty view model",
			vm:   &FormViewModel{ConnectorID: ConnectorAccountRecovery, ScalarValues: map[string]string{}},
		},
		{
			name: "partially checked",
			vm: &FormViewModel{
				ConnectorID:    ConnectorAccountRecovery,
				CheckboxValues: []string{"Recovery.Notification.Password.Enable"},
				ScalarValues: map[string]string{
					"Recovery.ExpiryTime": "1440",
				},
			},
		},
		{
			name: "unknown checkbox names are ignored",
			vm: &FormViewModel{
				ConnectorID:    ConnectorAccountRecovery,
				CheckboxValues: []string{"Recovery.NoSuchFlag", "Recovery.NotifySuccess"},
				ScalarValues:   map[string]string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			properties := schema.ToUpdateRequest(tt.vm)

			expectedKeys := schema.Keys()
			if len(properties) != len(expectedKeys) {
				t.Fatalf("emitted %d properties, expected one per declared key (%d)", len(properties), len(expectedKeys))
			}
			for i, key := range expectedKeys {
				if properties[i].Name != key {
					t.Errorf("property %d = %q, expected %q (fixed emission order)", i, properties[i].Name, key)
				}
			}
			for _, p := range properties {
				isCheckbox := false
				for _, key := range schema.CheckboxKeys {
					if key == p.Name {
						isCheckbox = true
						break
					}
				}
				if isCheckbox && p.Value != "true" && p.Value != "false" {
					t.Errorf("checkbox %q emitted value %q, expected \"true\" or \"false\"", p.Name, p.Value)
				}
			}
		})
	}
}

func TestViewModelRoundTrip(t *testing.T) {
	schema, err := SchemaFor(ConnectorSelfSignUp)
	if err != nil {
		t.Fatalf("SchemaFor returned error: %v", err)
	}

	original := []models.ConfigProperty{
		{Name: "SelfRegistration.Enable", Value: "true"},
		{Name: "SelfRegistration.LockOnCreation", Value: "false"},
		{Name: "SelfRegistration.SendConfirmationOnCreation", Value: "false"},
		{Name: "SelfRegistration.Notification.InternallyManage", Value: "true"},
		{Name: "SelfRegistration.ReCaptcha", Value: "false"},
		{Name: "SelfRegistration.NotifyAccountConfirmation", Value: "false"},
		{Name: "SelfRegistration.AutoLogin.Enable", Value: "false"},
		{Name: "SelfRegistration.VerificationCode.ExpiryTime", Value: "1440"},
		{Name: "SelfRegistration.VerificationCode.SMSOTP.ExpiryTime", Value: "1"},
		{Name: "SelfRegistration.CallbackRegex", Value: ".*"},
	}

	vm, err := schema.ToViewModel(original)
	if err != nil {
		t.Fatalf("ToViewModel returned error: %v", err)
	}

	roundTripped := schema.ToUpdateRequest(vm)

	originalByName := make(map[string]string, len(original))
	for _, p := range original {
		originalByName[p.Name] = p.Value
	}
	for _, p := range roundTripped {
		if originalByName[p.Name] != p.Value {
			t.Errorf("round trip changed %q: %q -> %q", p.Name, originalByName[p.Name], p.Value)
		}
	}
	if len(roundTripped) != len(original) {
		t.Errorf("round trip emitted %d properties, expected %d", len(roundTripped), len(original))
	}
}

func TestRestrict(t *testing.T) {
	schema, err := SchemaFor(ConnectorAccountRecovery)
	if err != nil {
		t.Fatalf("SchemaFor returned error: %v", err)
	}

	allowed := []string{
		"Recovery.Notification.Password.Enable",
		"Recovery.NotifySuccess",
		"Recovery.ExpiryTime",
		"not.a.declared.key",
	}
	restricted := schema.Restrict(allowed)

	if restricted.ConnectorID != ConnectorAccountRecovery {
		t.Errorf("restricted ConnectorID = %q", restricted.ConnectorID)
	}
	expectedKeys := []string{
		"Recovery.Notification.Password.Enable",
		"Recovery.NotifySuccess",
		"Recovery.ExpiryTime",
	}
	if !reflect.DeepEqual(restricted.Keys(), expectedKeys) {
		t.Errorf("restricted keys = %v, expected %v", restricted.Keys(), expectedKeys)
	}

	// Scalars outside the restriction are no longer required.
	vm, err := restricted.ToViewModel([]models.ConfigProperty{
		{Name: "Recovery.Notification.Password.Enable", Value: "true"},
		{Name: "Recovery.NotifySuccess", Value: "false"},
		{Name: "Recovery.ExpiryTime", Value: "1440"},
	})
	if err != nil {
		t.Fatalf("ToViewModel on restricted schema returned error: %v", err)
	}

	// The patch carries only restricted keys, so hidden properties keep
	// their upstream values on update.
	patch := restricted.ToUpdateRequest(vm)
	if len(patch) != len(expectedKeys) {
		t.Fatalf("patch emitted %d properties, expected %d", len(patch), len(expectedKeys))
	}
	for _, p := range patch {
		if p.Name == "Recovery.Notification.Password.ExpiryTime.smsOtp" {
			t.Errorf("patch emitted hidden key %q", p.Name)
		}
	}
	for i, p := range patch {
		if p.Name != expectedKeys[i] {
			t.Errorf("patch[%d] = %q, expected %q", i, p.Name, expectedKeys[i])
		}
	}
}

func TestSchemaFor(t *testing.T) {
	for _, id := range []string{ConnectorSelfSignUp, ConnectorAccountRecovery, ConnectorLoginAttempts} {
		schema, err := SchemaFor(id)
		if err != nil {
			t.Fatalf("SchemaFor(%q) returned error: %v", id, err)
		}
		if schema.ConnectorID != id {
			t.Errorf("SchemaFor(%q).ConnectorID = %q", id, schema.ConnectorID)
		}
	}

	_, err := SchemaFor("not-a-connector")
	var unknown *UnknownConnectorError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownConnectorError, got %v", err)
	}
	if unknown.ConnectorID != "not-a-connector" {
		t.Errorf("error names connector %q, expected %q", unknown.ConnectorID, "not-a-connector")
	}
}
