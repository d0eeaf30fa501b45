// Package executor handles the parallel execution of upload plans.
//
// Tasks run on a semaphore-bounded pool of goroutines. A failing task
// never cancels its siblings; every task resolves to an outcome and the
// caller decides overall success. Progress lines are emitted under a
// single mutex so concurrent completions never interleave output.
package executor

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/internal/logging"
	"github.com/forgeworks/s3sync/internal/s3api"
	"github.com/forgeworks/s3sync/synctypes"
)

// DefaultWorkers is the upload parallelism used when none is configured.
const DefaultWorkers = 4

// DefaultContentType is used when content type detection fails.
const DefaultContentType = "application/octet-stream"

// Executor runs upload tasks with bounded parallelism.
type Executor struct {
	s3Client s3api.S3API
	fsys     fs.Filesystem
	workers  int
	out      io.Writer

	// mu serializes progress emission; it guards output readability,
	// not correctness
	mu sync.Mutex
}

// New creates an executor with the given parallelism.
func New(s3Client s3api.S3API, fsys fs.Filesystem, workers int) *Executor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Executor{
		s3Client: s3Client,
		fsys:     fsys,
		workers:  workers,
		out:      os.Stdout,
	}
}

// WithOutput sets the writer progress lines are emitted to.
func (e *Executor) WithOutput(w io.Writer) *Executor {
	e.out = w
	return e
}

// Config holds execution parameters shared by all tasks.
type Config struct {
	// Bucket is the destination bucket
	Bucket string

	// ACL is the canned ACL applied to each upload, if set
	ACL synctypes.ObjectACL

	// DryRun suppresses writes to the store; tasks are still reported
	// as if attempted, for operator verification
	DryRun bool
}

// Execute runs every task and returns one outcome per task.
//
// At most the configured number of uploads are in flight at once. If ctx
// is cancelled, no further tasks are submitted; in-flight tasks complete
// and unsubmitted ones resolve to failed outcomes carrying ctx.Err().
func (e *Executor) Execute(
	ctx context.Context,
	cfg *Config,
	tasks []synctypes.UploadTask,
) []synctypes.UploadOutcome {
	if len(tasks) == 0 {
		return nil
	}

	var totalBytes uint64
	for _, task := range tasks {
		totalBytes += uint64(task.Size)
	}
	fmt.Fprintf(e.out, "Uploading %d files (%s)...\n", len(tasks), humanize.Bytes(totalBytes))

	outcomes := make([]synctypes.UploadOutcome, len(tasks))
	semaphore := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i, task := range tasks {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			for j := i; j < len(tasks); j++ {
				outcomes[j] = synctypes.UploadOutcome{Task: tasks[j], Err: ctx.Err()}
				e.report(tasks[j], ctx.Err())
			}
			wg.Wait()
			return outcomes
		}

		wg.Add(1)
		go func(i int, task synctypes.UploadTask) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			err := e.upload(ctx, cfg, task)
			outcomes[i] = synctypes.UploadOutcome{Task: task, Err: err}
			e.report(task, err)
		}(i, task)
	}

	wg.Wait()
	return outcomes
}

// upload stores a single task's bytes at its destination key.
func (e *Executor) upload(ctx context.Context, cfg *Config, task synctypes.UploadTask) error {
	if cfg.DryRun {
		logging.Debugf("dry-run: skipping put-object for %s/%s", cfg.Bucket, task.Key)
		return nil
	}

	contentType := detectContentType(e.fsys, task.Path)

	file, err := e.fsys.Open(task.Path)
	if err != nil {
		return serrors.NewObjectError("upload", cfg.Bucket, task.Key, serrors.ErrLocalRead).
			WithMessage(err.Error())
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:      &cfg.Bucket,
		Key:         &task.Key,
		Body:        file,
		ContentType: &contentType,
	}
	if cfg.ACL != "" {
		input.ACL = types.ObjectCannedACL(cfg.ACL)
	}

	if _, err := e.s3Client.PutObject(ctx, input); err != nil {
		return serrors.NewObjectError("upload", cfg.Bucket, task.Key, serrors.ErrUpload).
			WithMessage(err.Error())
	}
	return nil
}

// report emits one progress line for a resolved task.
func (e *Executor) report(task synctypes.UploadTask, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		fmt.Fprintf(e.out, "[%d/%d] Failed %s: %v\n", task.SeqIndex, task.Total, task.Key, err)
		return
	}
	fmt.Fprintf(e.out, "[%d/%d] Uploaded %s\n", task.SeqIndex, task.Total, task.Key)
}

// detectContentType sniffs the file's content, falling back to the key
// extension and finally to the octet-stream default.
func detectContentType(fsys fs.Filesystem, path string) string {
	file, err := fsys.Open(path)
	if err == nil {
		defer file.Close()
		buf := make([]byte, 512)
		if n, _ := file.Read(buf); n > 0 {
			if mt := mimetype.Detect(buf[:n]); mt != nil {
				return mt.String()
			}
		}
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}
	return DefaultContentType
}
