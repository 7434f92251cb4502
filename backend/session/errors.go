package session

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfiguration Kind = "ConfigurationError"
	KindRepository    Kind = "RepositoryError"
	KindSessionClosed Kind = "SessionClosed"
	KindStore         Kind = "StoreError"
)

// Error is returned by every engine operation that fails. Message is meant
// to be shown to the user as is.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* values below work as
// sentinels with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrRepository    = &Error{Kind: KindRepository}
	ErrSessionClosed = &Error{Kind: KindSessionClosed}
	ErrStore         = &Error{Kind: KindStore}

	// ErrNoQuestions is the RepositoryError of a fetch that matched nothing.
	ErrNoQuestions = &Error{Kind: KindRepository, Message: MsgNoQuestions}
)

// These are rejected inputs to SelectAnswer, not lifecycle failures.
var (
	ErrUnknownQuestion = errors.New("question is not part of this session")
	ErrInvalidOption   = errors.New("option must be one of A, B, C, D")
)

const (
	MsgNoQuestions      = "no questions available"
	MsgSubmissionFailed = "submission failed"
	MsgAbandoned        = "session abandoned"
)

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf reports the engine error kind of err, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
