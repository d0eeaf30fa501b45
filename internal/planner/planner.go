// Package planner creates upload plans for sync operations.
//
// The planner joins the local inventory against remote state by
// destination key and includes a task exactly when the local entity tag
// differs from the remote one. A missing remote object counts as a
// mismatch. Planning is read-only and completes before any upload starts:
// the resulting plan is an immutable snapshot of the diff decision.
package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/etag"
	"github.com/forgeworks/s3sync/internal/logging"
	"github.com/forgeworks/s3sync/internal/validation"
	"github.com/forgeworks/s3sync/synctypes"
)

// Planner produces the set of upload tasks a sync must execute.
type Planner struct {
	fsys     fs.Filesystem
	partSize int64
}

// New creates a planner that fingerprints files with the given part size.
// The part size must match the one used when remote objects were uploaded,
// or composite tags will never compare equal.
func New(fsys fs.Filesystem, partSize int64) *Planner {
	if partSize <= 0 {
		partSize = etag.DefaultPartSize
	}
	return &Planner{
		fsys:     fsys,
		partSize: partSize,
	}
}

// Plan holds the planner's output.
type Plan struct {
	// Tasks are the uploads to perform, in plan order
	Tasks []synctypes.UploadTask

	// UpToDate is the number of files whose remote content already matches
	UpToDate int

	// Errors records files that could not be considered (unreadable, bad
	// key); these are not "up to date", their state is unknown
	Errors []synctypes.ItemError
}

// Build compares local entries against remote state and returns the plan.
//
// Files whose destination key is absent remotely are planned without
// computing a local tag: the comparison outcome is a certain mismatch, so
// the fingerprint pass is skipped. Per-file read failures are recorded and
// do not abort planning for sibling files.
func (p *Planner) Build(
	ctx context.Context,
	entries []synctypes.LocalEntry,
	remote map[string]string,
	prefix string,
) (*Plan, error) {
	plan := &Plan{}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		key := DestinationKey(prefix, entry.Key)
		if err := validation.ValidateObjectKey(key); err != nil {
			plan.Errors = append(plan.Errors, synctypes.ItemError{
				Key:  key,
				Path: entry.Path,
				Err:  err,
			})
			continue
		}

		remoteTag, exists := remote[key]
		if exists {
			localTag, err := etag.Compute(p.fsys, entry.Path, p.partSize)
			if err != nil {
				plan.Errors = append(plan.Errors, synctypes.ItemError{
					Key:  key,
					Path: entry.Path,
					Err:  serrors.New("plan", serrors.ErrLocalRead).WithKey(entry.Path).WithMessage(err.Error()),
				})
				continue
			}
			if localTag == remoteTag {
				plan.UpToDate++
				continue
			}
			logging.Debugf("scheduling upload: %s (local etag: %s, remote etag: %s)", key, localTag, remoteTag)
		} else {
			logging.Debugf("scheduling upload: %s (not present remotely)", key)
		}

		info, err := p.fsys.Stat(entry.Path)
		if err != nil {
			plan.Errors = append(plan.Errors, synctypes.ItemError{
				Key:  key,
				Path: entry.Path,
				Err:  serrors.New("plan", serrors.ErrLocalRead).WithKey(entry.Path).WithMessage(err.Error()),
			})
			continue
		}

		plan.Tasks = append(plan.Tasks, synctypes.UploadTask{
			Key:  key,
			Path: entry.Path,
			Size: info.Size(),
		})
	}

	total := len(plan.Tasks)
	for i := range plan.Tasks {
		plan.Tasks[i].SeqIndex = i + 1
		plan.Tasks[i].Total = total
	}

	return plan, nil
}

// DestinationKey joins the configured prefix with a relative key.
// Leading slashes are stripped so keys never start with a separator.
func DestinationKey(prefix, relKey string) string {
	key := relKey
	if prefix != "" {
		key = fmt.Sprintf("%s/%s", prefix, relKey)
	}
	return strings.TrimLeft(key, "/")
}
