package otp

// Validator checks submitted codes against a single configured shared secret.
// Despite the name this is a static secret, not a rotating one-time code:
// there is no expiry, rotation, or attempt limit.
type Validator struct {
	secret string
	format string
}

// NewValidator constructs a Validator. An empty secret is allowed; it simply
// makes every validation fail.
func NewValidator(secret, format string) *Validator {
	return &Validator{secret: secret, format: format}
}

// Validate reports whether code matches the configured secret byte for byte.
// A missing secret or an empty code is never valid.
func (v *Validator) Validate(code string) bool {
	if v == nil || v.secret == "" || code == "" {
		return false
	}
	return code == v.secret
}

// Format returns the display-format hint served to clients.
func (v *Validator) Format() string {
	if v == nil {
		return ""
	}
	return v.format
}
