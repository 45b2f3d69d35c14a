package display

import "errors"

// Kind classifies orchestrator failures.
type Kind string

const (
	KindCommandFailed Kind = "command_failed"
	KindUnparseable   Kind = "unparseable_response"
	KindInvalidInput  Kind = "invalid_input"
)

// Error is returned by every Controller operation.
// Msg is human readable and embeds the underlying stderr when there is one.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err. The empty Kind is returned for foreign errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsInvalidInput reports whether err was caused by a rejected request value.
func IsInvalidInput(err error) bool {
	return KindOf(err) == KindInvalidInput
}
