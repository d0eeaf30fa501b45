// Package s3sync synchronizes a local file tree to an S3 location,
// uploading only files whose content differs from what is already stored.
//
// Change detection compares locally computed S3 entity tags (including the
// composite multipart form) against the remote listing, so unchanged files
// are never re-uploaded. Planned uploads run on a bounded worker pool with
// serialized progress reporting; a failing upload never aborts its
// siblings.
//
// Basic usage:
//
//	client, err := s3sync.New(s3sync.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	dest, err := s3sync.ParseDestination("s3://my-bucket/site")
//	if err != nil {
//	    return err
//	}
//
//	result, err := client.Sync(ctx, "./public", dest,
//	    s3sync.WithExcludePattern("*.tmp"),
//	    s3sync.WithParallelism(8),
//	)
//	if err != nil {
//	    return err
//	}
//	if !result.Ok() {
//	    return fmt.Errorf("%d files failed", result.FilesFailed)
//	}
//
// Every run recomputes state from scratch; nothing is cached between
// invocations. Deletion of remote objects absent locally is out of scope:
// the sync is upload-only, not a mirror.
package s3sync
