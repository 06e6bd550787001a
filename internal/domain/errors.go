package domain

import (
	"errors"
	"fmt"
)

// ErrorKind tags a pipeline failure with its originating stage. Callers
// match on the kind, never on error message text.
type ErrorKind string

const (
	KindFetch     ErrorKind = "fetch"
	KindTransform ErrorKind = "transform"
	KindStore     ErrorKind = "store"
	KindQuery     ErrorKind = "query"
)

// PipelineError wraps a failure with its kind and the operation that raised
// it.
type PipelineError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

func NewFetchError(op string, err error) error {
	return &PipelineError{Kind: KindFetch, Op: op, Err: err}
}

func NewTransformError(op string, err error) error {
	return &PipelineError{Kind: KindTransform, Op: op, Err: err}
}

func NewStoreError(op string, err error) error {
	return &PipelineError{Kind: KindStore, Op: op, Err: err}
}

func NewQueryError(op string, err error) error {
	return &PipelineError{Kind: KindQuery, Op: op, Err: err}
}

// KindOf returns the kind of a pipeline error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
