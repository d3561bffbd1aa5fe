package model

import "fmt"

// ValidationError reports a malformed or missing field. It is raised before
// any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ImageProcessingError reports image input that cannot be decoded or encoded.
type ImageProcessingError struct {
	Err error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("processing image: %v", e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a transport or storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a mutation that targets an item that no longer exists.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %d not found", e.ID)
}
