// Package governance implements the bidirectional mapping between the flat
// property lists exposed by the identity server's governance API and the
// form view-models consumed by the admin console.
package governance

import (
	"governd/internal/models"
)

// FormViewModel is the request-scoped shape a connector configuration form
// is rendered from. CheckboxValues holds the names of the boolean-flag
// properties that are enabled; ScalarValues holds the raw string value of
// every declared scalar property.
type FormViewModel struct {
	ConnectorID    string            `json:"connector_id"`
	CheckboxValues []string          `json:"checkbox_values"`
	ScalarValues   map[string]string `json:"scalar_values"`
}

// FormSchema declares the fixed property keys a connector form is built
// from. Key order is the emission order of ToUpdateRequest, so it must stay
// stable across releases.
type FormSchema struct {
	ConnectorID  string
	CheckboxKeys []string
	ScalarKeys   []string
}

// ToViewModel builds a view-model from the upstream property list. A
// checkbox key is reported enabled iff a property with that name exists and
// its value is the literal string "true". Every declared scalar key must be
// present; a missing one yields a MissingPropertyError naming the key.
func (s *FormSchema) ToViewModel(properties []models.ConfigProperty) (*FormViewModel, error) {
	byName := make(map[string]string, len(properties))
	for _, p := range properties {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p.Value
		}
	}

	vm := &FormViewModel{
		ConnectorID:    s.ConnectorID,
		CheckboxValues: make([]string, 0, len(s.CheckboxKeys)),
		ScalarValues:   make(map[string]string, len(s.ScalarKeys)),
	}

	for _, key := range s.CheckboxKeys {
		if value, ok := byName[key]; ok && value == "true" {
			vm.CheckboxValues = append(vm.CheckboxValues, key)
		}
	}

	for _, key := range s.ScalarKeys {
		value, ok := byName[key]
		if !ok {
			return nil, &MissingPropertyError{Key: key}
		}
		vm.ScalarValues[key] = value
	}

	return vm, nil
}

// ToUpdateRequest converts a view-model back into the property list sent
// upstream. Exactly one property is emitted per declared key, checkbox keys
// first, in declared order. Scalar values are passed through verbatim; any
// range validation is the identity server's concern.
func (s *FormSchema) ToUpdateRequest(vm *FormViewModel) []models.ConfigProperty {
	checked := make(map[string]struct{}, len(vm.CheckboxValues))
	for _, name := range vm.CheckboxValues {
		checked[name] = struct{}{}
	}

	properties := make([]models.ConfigProperty, 0, len(s.CheckboxKeys)+len(s.ScalarKeys))
	for _, key := range s.CheckboxKeys {
		value := "false"
		if _, ok := checked[key]; ok {
			value = "true"
		}
		properties = append(properties, models.ConfigProperty{Name: key, Value: value})
	}
	for _, key := range s.ScalarKeys {
		properties = append(properties, models.ConfigProperty{Name: key, Value: vm.ScalarValues[key]})
	}

	return properties
}

// Restrict returns a copy of the schema reduced to the given keys,
// preserving declared order. Keys the schema does not declare are ignored.
// A restricted schema validates and emits only the keys it keeps, so
// callers can scope both reads and updates to a property subset.
func (s *FormSchema) Restrict(keys []string) *FormSchema {
	allowed := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		allowed[key] = struct{}{}
	}

	restricted := &FormSchema{ConnectorID: s.ConnectorID}
	for _, key := range s.CheckboxKeys {
		if _, ok := allowed[key]; ok {
			restricted.CheckboxKeys = append(restricted.CheckboxKeys, key)
		}
	}
	for _, key := range s.ScalarKeys {
		if _, ok := allowed[key]; ok {
			restricted.ScalarKeys = append(restricted.ScalarKeys, key)
		}
	}
	return restricted
}

// Keys returns every declared property key, in emission order.
func (s *FormSchema) Keys() []string {
	keys := make([]string, 0, len(s.CheckboxKeys)+len(s.ScalarKeys))
	keys = append(keys, s.CheckboxKeys...)
	keys = append(keys, s.ScalarKeys...)
	return keys
}
