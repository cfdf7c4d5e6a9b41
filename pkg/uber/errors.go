package uber

import "fmt"

// MissingRequiredFieldError is returned by Builder.Build when a required
// setting was never provided.
type MissingRequiredFieldError struct {
	Field string
}

func (err *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", err.Field)
}

// UnrecognizedConflictHandlerError is returned by Translate when a handler is
// outside the known set of variants. It indicates a programming error, not a
// bad input: nothing was translated.
type UnrecognizedConflictHandlerError struct {
	Key     string
	Handler ConflictHandler
}

func (err *UnrecognizedConflictHandlerError) Error() string {
	return fmt.Sprintf("unrecognized conflict handler %v (%T) for key %q", err.Handler, err.Handler, err.Key)
}
