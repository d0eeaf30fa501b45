// Package errors provides error types and handling for sync operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a sync operation error with context about the operation
// that failed. It wraps the underlying error with bucket and key context
// for better diagnostics.
type Error struct {
	// Op is the operation that failed (e.g., "scanRemote", "upload", "plan")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key or local path (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3sync.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3sync.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3sync.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3sync.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// New creates a new Error with the given operation and underlying error.
func New(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for the failure classes a sync can hit. Planning-phase
// errors (ErrInvalidInput, ErrRemoteList) abort the run; execution-phase
// errors (ErrLocalRead, ErrUpload) are recorded per file and only affect
// the aggregate result.
var (
	// ErrInvalidInput indicates a malformed destination URI, missing
	// source path, or other invalid caller input
	ErrInvalidInput = errors.New("s3sync: invalid input")

	// ErrRemoteList indicates the remote object listing could not be
	// retrieved; the sync fails closed since no plan can be computed
	// without authoritative remote state
	ErrRemoteList = errors.New("s3sync: remote listing failed")

	// ErrLocalRead indicates a local file could not be read for
	// fingerprinting or upload
	ErrLocalRead = errors.New("s3sync: local read failed")

	// ErrUpload indicates the store rejected or failed a write
	ErrUpload = errors.New("s3sync: upload failed")

	// ErrInvalidBucketName indicates the bucket name is not DNS-compliant
	ErrInvalidBucketName = errors.New("s3sync: invalid bucket name")

	// ErrInvalidObjectKey indicates the object key is invalid
	ErrInvalidObjectKey = errors.New("s3sync: invalid object key")
)

// IsInvalidInput checks if an error indicates invalid caller input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRemoteList checks if an error came from the remote listing phase.
func IsRemoteList(err error) bool {
	return errors.Is(err, ErrRemoteList)
}

// IsLocalRead checks if an error came from reading a local file.
func IsLocalRead(err error) bool {
	return errors.Is(err, ErrLocalRead)
}

// IsUpload checks if an error came from a failed upload.
func IsUpload(err error) bool {
	return errors.Is(err, ErrUpload)
}
