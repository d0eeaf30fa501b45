package s3sync

import (
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/forgeworks/s3sync/synctypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the region from the default credential chain.
func WithRegion(region string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// Useful for S3-compatible services or local testing.
func WithEndpoint(endpoint string) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs instead of virtual-hosted
// style. Required for S3-compatible services without virtual hosting.
func WithForcePathStyle(forcePathStyle bool) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed
// requests. Default is 3.
func WithMaxRetries(maxRetries int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 requests.
// Default is no timeout.
func WithTimeout(timeout time.Duration) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAWSConfig provides a custom AWS configuration, overriding the
// default credential chain loading.
func WithAWSConfig(config *aws.Config) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithFilesystem sets the filesystem implementation used for local file
// operations. Defaults to the OS filesystem.
func WithFilesystem(fsys fs.Filesystem) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		c.Filesystem = fsys
	}
}

// WithPartSize sets the part size used for entity tag computation.
// It must match the part size remote objects were uploaded with, or
// multipart tags will never compare equal. Default is 8 MiB.
func WithPartSize(partSize int64) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithWorkers sets the default upload parallelism for syncs.
// Default is 4 concurrent uploads.
func WithWorkers(workers int) synctypes.Option {
	return func(c *synctypes.ClientConfig) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

// WithDryRun plans and fingerprints but issues no writes to the store.
// Each planned task is still reported as if attempted.
func WithDryRun(dryRun bool) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		c.DryRun = dryRun
	}
}

// WithExcludePattern adds a shell-style glob pattern; files and
// directories whose path relative to the sync root matches are skipped.
// A matching directory is pruned entirely. May be repeated.
func WithExcludePattern(pattern string) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		c.ExcludePatterns = append(c.ExcludePatterns, pattern)
	}
}

// WithParallelism overrides the client-level upload parallelism for this
// sync.
func WithParallelism(workers int) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		if workers > 0 {
			c.Workers = workers
		}
	}
}

// WithACL applies a canned ACL to every uploaded object.
func WithACL(acl synctypes.ObjectACL) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		c.ACL = acl
	}
}

// WithSyncPartSize overrides the client-level tag part size for this sync.
func WithSyncPartSize(partSize int64) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithProgressOutput sets the writer progress lines are emitted to.
// Defaults to standard output.
func WithProgressOutput(w io.Writer) synctypes.SyncOption {
	return func(c *synctypes.SyncOptionConfig) {
		c.ProgressOutput = w
	}
}
