package gate

import "fmt"

// ValidationError reports blank required fields. No provider call was made.
type ValidationError struct {
	Title   string
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Title, e.Message, e.Fields)
}

// AuthError carries a human-readable cause from the identity provider.
type AuthError struct {
	Title   string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}
