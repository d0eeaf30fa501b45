package s3sync

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/internal/executor"
	"github.com/forgeworks/s3sync/internal/logging"
	"github.com/forgeworks/s3sync/internal/planner"
	"github.com/forgeworks/s3sync/internal/scanner"
	"github.com/forgeworks/s3sync/internal/validation"
	"github.com/forgeworks/s3sync/synctypes"
)

// Destination is a parsed s3://bucket[/prefix] URI.
type Destination struct {
	// Bucket is the destination bucket name
	Bucket string

	// Prefix is the key prefix uploads are placed under; may be empty
	Prefix string
}

// ParseDestination parses a destination URI of the form
// s3://bucket[/prefix]. A trailing slash on the prefix is dropped so key
// joining never produces doubled separators.
func ParseDestination(uri string) (Destination, error) {
	const scheme = "s3://"
	if !strings.HasPrefix(uri, scheme) {
		return Destination{}, errors.New("parseDestination", errors.ErrInvalidInput).
			WithMessage("destination must start with " + scheme)
	}

	rest := strings.TrimPrefix(uri, scheme)
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Destination{}, errors.New("parseDestination", errors.ErrInvalidInput).
			WithMessage("destination bucket cannot be empty")
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return Destination{}, err
	}

	return Destination{
		Bucket: bucket,
		Prefix: strings.TrimSuffix(prefix, "/"),
	}, nil
}

// Sync uploads the file or tree at source to the destination, skipping
// files whose remote content is already identical.
//
// The operation runs in three phases. First the local tree is walked and
// the remote namespace listed in full. Then the two inventories are
// joined by destination key, comparing locally computed entity tags
// against remote ones; the resulting plan is immutable. Finally planned
// uploads execute on a bounded worker pool.
//
// Phase errors behave differently: a failed walk or remote listing aborts
// the sync (no plan can be trusted over partial state), while per-file
// read and upload failures are recorded in the result and never abort
// sibling work. Callers should check both the returned error and
// Result.Ok.
//
// Example:
//
//	result, err := client.Sync(ctx, "./public", dest,
//	    s3sync.WithDryRun(true),
//	    s3sync.WithExcludePattern(".git"),
//	)
func (c *Client) Sync(
	ctx context.Context,
	source string,
	dest Destination,
	opts ...synctypes.SyncOption,
) (*synctypes.Result, error) {
	cfg := synctypes.SyncOptionConfig{
		Workers:        c.clientCfg.Workers,
		PartSize:       c.clientCfg.PartSize,
		ProgressOutput: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if source == "" {
		return nil, errors.New("sync", errors.ErrInvalidInput).
			WithMessage("source path cannot be empty")
	}
	if err := validation.ValidateBucketName(dest.Bucket); err != nil {
		return nil, err
	}
	if _, err := c.fsys.Stat(source); err != nil {
		return nil, errors.New("sync", errors.ErrInvalidInput).
			WithKey(source).
			WithMessage("source path does not exist")
	}

	startTime := time.Now()

	sc := scanner.New(c.s3Client, c.fsys)

	entries, err := sc.ScanLocal(ctx, source, cfg.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	logging.Debugf("discovered %d local files under %s", len(entries), source)

	remote, err := sc.ScanRemote(ctx, dest.Bucket, dest.Prefix)
	if err != nil {
		return nil, err
	}
	logging.Debugf("listed %d remote objects under %s/%s", len(remote), dest.Bucket, dest.Prefix)

	plan, err := planner.New(c.fsys, cfg.PartSize).Build(ctx, entries, remote, dest.Prefix)
	if err != nil {
		return nil, err
	}

	result := &synctypes.Result{
		FilesUpToDate: plan.UpToDate,
		Tasks:         plan.Tasks,
		Errors:        plan.Errors,
		DryRun:        cfg.DryRun,
	}

	outcomes := executor.New(c.s3Client, c.fsys, cfg.Workers).
		WithOutput(cfg.ProgressOutput).
		Execute(ctx, &executor.Config{
			Bucket: dest.Bucket,
			ACL:    cfg.ACL,
			DryRun: cfg.DryRun,
		}, plan.Tasks)

	for _, outcome := range outcomes {
		if outcome.Failed() {
			result.Errors = append(result.Errors, synctypes.ItemError{
				Key:  outcome.Task.Key,
				Path: outcome.Task.Path,
				Err:  outcome.Err,
			})
			continue
		}
		result.FilesUploaded++
		result.BytesUploaded += outcome.Task.Size
	}
	result.FilesFailed = len(result.Errors)
	result.Duration = time.Since(startTime)

	return result, nil
}
