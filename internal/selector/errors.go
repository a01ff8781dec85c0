package selector

import (
	"errors"
)

// Kind names the pipeline stage at which a run stopped.
type Kind string

const (
	KindNoDocumentsFound    Kind = "NoDocumentsFound"
	KindTargetNotFound      Kind = "TargetNotFound"
	KindGenerationNotFound  Kind = "GenerationNotFound"
	KindUserCancelled       Kind = "UserCancelled"
	KindBackupWriteFailed   Kind = "BackupWriteFailed"
	KindDocumentWriteFailed Kind = "DocumentWriteFailed"
)

// Sentinels for errors.Is. Any *Error with the same Kind matches.
var (
	ErrNoDocumentsFound    = &Error{Kind: KindNoDocumentsFound}
	ErrTargetNotFound      = &Error{Kind: KindTargetNotFound}
	ErrGenerationNotFound  = &Error{Kind: KindGenerationNotFound}
	ErrUserCancelled       = &Error{Kind: KindUserCancelled}
	ErrBackupWriteFailed   = &Error{Kind: KindBackupWriteFailed}
	ErrDocumentWriteFailed = &Error{Kind: KindDocumentWriteFailed}
)

// Error is a failure tagged with the stage it happened in.
type Error struct {
	Kind Kind
	// Document is set when the failure concerns a single document.
	Document string
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Document != "" {
		msg += " (" + e.Document + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsPrecondition reports whether err stopped the run before anything was touched
// because the input was unusable.
func IsPrecondition(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindNoDocumentsFound, KindTargetNotFound, KindGenerationNotFound:
		return true
	}
	return false
}
