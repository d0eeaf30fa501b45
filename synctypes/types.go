// Package synctypes provides shared type definitions for the s3sync module.
package synctypes

import (
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// ObjectACL represents the canned access control list applied to uploads.
type ObjectACL string

// Predefined canned ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLOwnerRead grants bucket owner read access
	ACLOwnerRead ObjectACL = "bucket-owner-read"

	// ACLOwnerFullControl grants bucket owner full control
	ACLOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// LocalEntry represents one candidate file discovered under the sync root.
type LocalEntry struct {
	// Key is the path relative to the sync root, always slash-separated
	Key string

	// Path is the file's path on the local filesystem
	Path string
}

// RemoteObject represents an object under the destination prefix.
type RemoteObject struct {
	// Key is the full S3 object key
	Key string

	// ETag is the S3 entity tag, with surrounding quotes stripped
	ETag string
}

// UploadTask is a single planned upload. Tasks are immutable once the plan
// is built and are safely shared by all workers.
type UploadTask struct {
	// Key is the destination S3 object key
	Key string

	// Path is the local source file path
	Path string

	// Size is the source file size in bytes at planning time
	Size int64

	// SeqIndex is the 1-based position in plan order, for progress display
	SeqIndex int

	// Total is the total number of planned tasks, for progress display
	Total int
}

// UploadOutcome is the per-task result reported by the executor.
type UploadOutcome struct {
	// Task is the task this outcome belongs to
	Task UploadTask

	// Err is nil on success, otherwise the cause of the failure
	Err error
}

// Failed reports whether the task did not complete successfully.
func (o UploadOutcome) Failed() bool {
	return o.Err != nil
}

// ItemError records a per-file failure that did not abort the sync.
// It is distinct from a successful skip: the file's state is unknown.
type ItemError struct {
	// Key is the destination key the file maps to
	Key string

	// Path is the local file path
	Path string

	// Err wraps errors.ErrLocalRead or errors.ErrUpload
	Err error
}

// Result contains the outcome of a sync operation.
type Result struct {
	// FilesUploaded is the number of files uploaded (or reported in dry-run)
	FilesUploaded int

	// FilesUpToDate is the number of files skipped because the remote
	// object already holds identical content
	FilesUpToDate int

	// FilesFailed is the number of files that could not be read or uploaded
	FilesFailed int

	// BytesUploaded is the total bytes uploaded
	BytesUploaded int64

	// Tasks is the upload plan that was executed (or would be, in dry-run)
	Tasks []UploadTask

	// Errors contains per-file failures from planning and execution
	Errors []ItemError

	// Duration is how long the sync took
	Duration time.Duration

	// DryRun reports whether writes were suppressed
	DryRun bool
}

// Ok reports whether the sync completed without any per-file failures.
func (r *Result) Ok() bool {
	return len(r.Errors) == 0
}

// Option configures the client.
type Option func(*ClientConfig)

// ClientConfig holds client-level configuration assembled from Options.
type ClientConfig struct {
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	MaxRetries      int
	Timeout         time.Duration
	Workers         int
	PartSize        int64
	CustomAWSConfig *aws.Config
	Filesystem      fs.Filesystem
}

// SyncOption configures a single sync operation.
type SyncOption func(*SyncOptionConfig)

// SyncOptionConfig holds per-sync configuration assembled from SyncOptions.
type SyncOptionConfig struct {
	DryRun          bool
	ExcludePatterns []string
	Workers         int
	ACL             ObjectACL
	PartSize        int64

	// ProgressOutput receives progress lines during execution. The executor
	// serializes emissions, so the writer never sees interleaved lines.
	ProgressOutput io.Writer
}
