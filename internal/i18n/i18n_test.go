package i18n

import "testing"

func TestCamelKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"account-recovery", "accountRecovery"},
		{"user-onboarding", "userOnboarding"},
		{"login-attempts-security", "loginAttemptsSecurity"},
		{"EmailVerification.Enable", "emailVerificationEnable"},
		{"SelfRegistration.VerificationCode.ExpiryTime", "selfRegistrationVerificationCodeExpiryTime"},
		{"account.lock.handler.enable", "accountLockHandlerEnable"},
		{"Recovery.Notification.Password.ExpiryTime.smsOtp", "recoveryNotificationPasswordExpiryTimeSmsOtp"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := camelKey(tt.input); got != tt.expected {
			t.Errorf("camelKey(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestLabelKey(t *testing.T) {
	got := LabelKey("account-recovery", "EmailVerification.Enable")
	expected := "governanceConnectors.accountRecovery.emailVerificationEnable.label"
	if got != expected {
		t.Errorf("LabelKey = %q, expected %q", got, expected)
	}
}

func TestResolveLabel(t *testing.T) {
	tests := []struct {
		name     string
		langs    []string
		category string
		property string
		fallback string
		expected string
	}{
		{
			name:     "existing english entry",
			langs:    []string{"en"},
			category: "account-recovery",
			property: "EmailVerification.Enable",
			fallback: "Enable",
			expected: "Enable email verification",
		},
		{
			name:     "missing entry returns fallback unchanged",
			langs:    []string{"en"},
			category: "account-recovery",
			property: "No.Such.Property",
			fallback: "Enable",
			expected: "Enable",
		},
		{
			name:     "translated spanish entry",
			langs:    []string{"es"},
			category: "user-onboarding",
			property: "SelfRegistration.Enable",
			fallback: "Self registration",
			expected: "Autorregistro de usuarios",
		},
		{
			name:     "unknown language falls back to english",
			langs:    []string{"fr"},
			category: "user-onboarding",
			property: "SelfRegistration.Enable",
			fallback: "Self registration",
			expected: "User self registration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := Localizer(tt.langs...)
			if got := ResolveLabel(loc, tt.category, tt.property, tt.fallback); got != tt.expected {
				t.Errorf("ResolveLabel = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestResolveHintFallback(t *testing.T) {
	loc := Localizer("en")
	got := ResolveHint(loc, "account-recovery", "Recovery.NotifySuccess", "Notify on success")
	if got != "Notify on success" {
		t.Errorf("ResolveHint = %q, expected fallback for a property without a hint entry", got)
	}
}
