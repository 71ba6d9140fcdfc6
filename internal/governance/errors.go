package governance

import "fmt"

// MissingPropertyError reports that a required scalar property was absent
// from the identity server's response. Recoverable by the caller; the
// console surfaces a notification and keeps its prior state.
type MissingPropertyError struct {
	Key string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("governance: required property %q missing from server response", e.Key)
}

// UnknownConnectorError reports that no form schema is declared for the
// requested connector id.
type UnknownConnectorError struct {
	ConnectorID string
}

func (e *UnknownConnectorError) Error() string {
	return fmt.Sprintf("governance: no form schema declared for connector %q", e.ConnectorID)
}
