package pagi

import "log/slog"

const DefaultURL = "https://www.pagi.co.il/private/"

type Credentials struct {
	Username string
	Password string
}

// LogValue keeps credentials out of the logs even if a Credentials value is
// passed to a logger by mistake.
func (c Credentials) LogValue() slog.Value {
	return slog.StringValue("********")
}

// ValidateCredentials reports the first missing credential.
func ValidateCredentials(c Credentials) error {
	if c.Username == "" {
		return &InputError{Field: "username"}
	}
	if c.Password == "" {
		return &InputError{Field: "password"}
	}
	return nil
}
