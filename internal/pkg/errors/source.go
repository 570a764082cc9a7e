package errors

import "errors"

// Source names the collaborator an unexpected failure came from.
type Source string

const (
	SourceStore Source = "store"
	SourceHash  Source = "hash"
	SourceMail  Source = "mail"
	SourceToken Source = "token"
)

// SourceError wraps a failure of an external collaborator so callers can tell
// a storage outage from a mail relay outage.
type SourceError struct {
	Source Source
	Err    error
}

func (e *SourceError) Error() string {
	return string(e.Source) + ": " + e.Err.Error()
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

func wrap(src Source, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{Source: src, Err: err}
}

func Store(err error) error { return wrap(SourceStore, err) }
func Hash(err error) error  { return wrap(SourceHash, err) }
func Mail(err error) error  { return wrap(SourceMail, err) }
func Token(err error) error { return wrap(SourceToken, err) }

// SourceOf reports which collaborator produced err.
func SourceOf(err error) (Source, bool) {
	var se *SourceError
	if errors.As(err, &se) {
		return se.Source, true
	}
	return "", false
}
