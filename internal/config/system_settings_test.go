package config

import (
	"reflect"
	"testing"

	"governd/internal/types"
)

func TestDefaultSettings(t *testing.T) {
	defaults := DefaultSettings()

	if defaults.RequestTimeout != 30 {
		t.Errorf("RequestTimeout default = %d, expected 30", defaults.RequestTimeout)
	}
	if defaults.ConnectorCacheTTLMinutes != 10 {
		t.Errorf("ConnectorCacheTTLMinutes default = %d, expected 10", defaults.ConnectorCacheTTLMinutes)
	}
	if defaults.AppUrl != "http://localhost:3001" {
		t.Errorf("AppUrl default = %q", defaults.AppUrl)
	}
}

func TestCoerceValue(t *testing.T) {
	fields := fieldsByJSONKey()

	tests := []struct {
		name      string
		key       string
		raw       any
		expected  string
		expectErr bool
	}{
		{name: "int from json float", key: "request_timeout", raw: float64(45), expected: "45"},
		{name: "int from string", key: "request_timeout", raw: "45", expected: "45"},
		{name: "int below min", key: "request_timeout", raw: float64(0), expectErr: true},
		{name: "zero allowed when min is zero", key: "audit_retention_days", raw: float64(0), expected: "0"},
		{name: "string passthrough", key: "app_url", raw: "https://admin.example.com", expected: "https://admin.example.com"},
		{name: "wrong type", key: "request_timeout", raw: true, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := fields[tt.key]
			if !ok {
				t.Fatalf("no settings field with json key %q", tt.key)
			}
			got, err := coerceValue(field, tt.raw)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerceValue returned error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("coerceValue = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestFieldsByJSONKeyCoversAllSettings(t *testing.T) {
	fields := fieldsByJSONKey()
	settingsType := reflect.TypeOf(types.SystemSettings{})
	if len(fields) != settingsType.NumField() {
		t.Errorf("fieldsByJSONKey covers %d fields, struct has %d", len(fields), settingsType.NumField())
	}
}

func TestMinConstraint(t *testing.T) {
	fields := fieldsByJSONKey()

	min, ok := minConstraint(fields["connect_timeout"])
	if !ok || min != 1 {
		t.Errorf("connect_timeout min = (%d, %v), expected (1, true)", min, ok)
	}

	if _, ok := minConstraint(fields["app_url"]); ok {
		t.Error("app_url should have no min constraint")
	}
}
