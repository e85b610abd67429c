// Package failure defines the error kinds a pipeline stage can fail with.
// They are flattened to a single string on the run state; the types exist so
// collaborators and tests can tell them apart with errors.As.
package failure

import "fmt"

// PreconditionError reports a required input that is missing from the run state.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// Precondition returns a PreconditionError with the given message.
func Precondition(msg string) error {
	return &PreconditionError{Msg: msg}
}

// ParseError reports structured model output that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed JSON output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExternalCallError reports a transport or API failure in a collaborator.
type ExternalCallError struct {
	Service string
	Err     error
}

func (e *ExternalCallError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }

// External wraps err as an ExternalCallError for service. A nil err stays nil.
func External(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ExternalCallError{Service: service, Err: err}
}

// UnsupportedFormatError reports a document whose type the loader cannot read.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Ext == "" {
		return fmt.Sprintf("unsupported file format: %s has no extension", e.Path)
	}
	return fmt.Sprintf("unsupported file format %q: %s", e.Ext, e.Path)
}
