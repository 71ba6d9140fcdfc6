package i18n

import (
	"strings"
	"unicode"
)

// camelKey normalizes a category id or dotted property name into the
// camel-case form used in message ids: "account-recovery" becomes
// "accountRecovery", "Recovery.Notification.Password.Enable" becomes
// "recoveryNotificationPasswordEnable".
func camelKey(s string) string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '-' || r == '_' || r == ' '
	})
	if len(tokens) == 0 {
		return ""
	}

	var b strings.Builder
	for i, token := range tokens {
		runes := []rune(token)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}
