// Package scanner handles filesystem and S3 scanning operations.
// This includes walking the local source tree and listing remote objects.
//
// The scanner produces the two inventories the planner diffs: local
// entries keyed relative to the sync root, and the remote key-to-ETag map.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	serrors "github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/internal/s3api"
	"github.com/forgeworks/s3sync/synctypes"
)

// Scanner discovers local files and remote object state for a sync.
type Scanner struct {
	s3Client s3api.S3API
	fsys     fs.Filesystem
}

// New creates a scanner over the given S3 client and filesystem.
func New(s3Client s3api.S3API, fsys fs.Filesystem) *Scanner {
	return &Scanner{
		s3Client: s3Client,
		fsys:     fsys,
	}
}

// ScanLocal enumerates candidate files under root.
//
// If root is a regular file the result is a single entry keyed by the
// file's base name. For a directory root, the tree is walked depth-first
// and each file is keyed by its slash-separated path relative to root.
//
// A directory whose relative key matches an exclude pattern is pruned
// before descent; none of its descendants are visited. A matching file is
// omitted. An unreadable directory fails the whole scan: the plan must be
// computed over a complete tree, never a partial one.
func (s *Scanner) ScanLocal(
	ctx context.Context,
	root string,
	excludePatterns []string,
) ([]synctypes.LocalEntry, error) {
	matcher := NewExcludeMatcher(excludePatterns)
	if err := matcher.Validate(); err != nil {
		return nil, serrors.New("scanLocal", serrors.ErrInvalidInput).WithMessage(err.Error())
	}

	info, err := s.fsys.Stat(root)
	if err != nil {
		return nil, serrors.New("scanLocal", err).WithKey(root)
	}

	if !info.IsDir() {
		key := filepath.Base(root)
		if matcher.Match(key) {
			return nil, nil
		}
		return []synctypes.LocalEntry{{Key: key, Path: root}}, nil
	}

	var entries []synctypes.LocalEntry
	err = s.fsys.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		if rel == "." {
			return nil
		}
		key := filepath.ToSlash(rel)

		if info.IsDir() {
			if matcher.Match(key) {
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.Match(key) {
			return nil
		}

		entries = append(entries, synctypes.LocalEntry{Key: key, Path: path})
		return nil
	})
	if err != nil {
		return nil, serrors.New("scanLocal", err).WithKey(root)
	}

	return entries, nil
}

// ScanRemote lists every object under prefix and returns a key-to-ETag map.
//
// Listing follows continuation tokens until the namespace is exhausted, so
// result sets beyond the per-page maximum of 1000 keys are covered in full.
// Any listing failure aborts the sync: without authoritative remote state
// there is no safe way to plan uploads.
func (s *Scanner) ScanRemote(
	ctx context.Context,
	bucket string,
	prefix string,
) (map[string]string, error) {
	objects := make(map[string]string)

	var continuationToken *string
	for {
		select {
		case <-ctx.Done():
			return nil, serrors.NewBucketError("scanRemote", bucket, ctx.Err())
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:            &bucket,
			ContinuationToken: continuationToken,
			MaxKeys:           aws.Int32(1000),
		}
		if prefix != "" {
			input.Prefix = &prefix
		}

		result, err := s.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, serrors.NewBucketError("scanRemote", bucket, serrors.ErrRemoteList).
				WithMessage(err.Error())
		}

		for _, obj := range result.Contents {
			if obj.Key == nil {
				continue
			}
			var tag string
			if obj.ETag != nil {
				tag = strings.Trim(*obj.ETag, `"`)
			}
			objects[*obj.Key] = tag
		}

		if result.IsTruncated == nil || !*result.IsTruncated {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	return objects, nil
}
