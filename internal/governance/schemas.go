package governance

// Connector ids as reported by the identity server.
const (
	ConnectorSelfSignUp      = "self-sign-up"
	ConnectorAccountRecovery = "account-recovery"
	ConnectorLoginAttempts   = "account.lock.handler"
)

// formSchemas is the compiled-in table of connector form schemas. Key order
// inside each schema is the wire emission order and must not be reshuffled.
var formSchemas = map[string]*FormSchema{
	ConnectorSelfSignUp: {
		ConnectorID: ConnectorSelfSignUp,
		CheckboxKeys: []string{
			"SelfRegistration.Enable",
			"SelfRegistration.LockOnCreation",
			"SelfRegistration.SendConfirmationOnCreation",
			"SelfRegistration.Notification.InternallyManage",
			"SelfRegistration.ReCaptcha",
			"SelfRegistration.NotifyAccountConfirmation",
			"SelfRegistration.AutoLogin.Enable",
		},
		ScalarKeys: []string{
			"SelfRegistration.VerificationCode.ExpiryTime",
			"SelfRegistration.VerificationCode.SMSOTP.ExpiryTime",
			"SelfRegistration.CallbackRegex",
		},
	},
	ConnectorAccountRecovery: {
		ConnectorID: ConnectorAccountRecovery,
		CheckboxKeys: []string{
			"Recovery.Notification.Password.Enable",
			"Recovery.ReCaptcha.Password.Enable",
			"Recovery.Question.Password.Enable",
			"Recovery.Notification.Username.Enable",
			"Recovery.ReCaptcha.Username.Enable",
			"Recovery.Notification.InternallyManage",
			"Recovery.NotifySuccess",
			"Recovery.Question.Password.NotifyStart",
		},
		ScalarKeys: []string{
			"Recovery.ExpiryTime",
			"Recovery.Notification.Password.ExpiryTime.smsOtp",
			"Recovery.CallbackRegex",
		},
	},
	ConnectorLoginAttempts: {
		ConnectorID: ConnectorLoginAttempts,
		CheckboxKeys: []string{
			"account.lock.handler.enable",
			"account.lock.handler.notification.manageInternally",
			"account.lock.handler.notification.notifyOnLockIncrement",
		},
		ScalarKeys: []string{
			"account.lock.handler.On.Failure.Max.Attempts",
			"account.lock.handler.Time",
			"account.lock.handler.login.fail.timeout.ratio",
		},
	},
}

// SchemaFor returns the declared form schema for a connector id.
func SchemaFor(connectorID string) (*FormSchema, error) {
	schema, ok := formSchemas[connectorID]
	if !ok {
		return nil, &UnknownConnectorError{ConnectorID: connectorID}
	}
	return schema, nil
}
