// Package etag computes S3-compatible entity tags for local files.
//
// The ETag of a single-part object is the hex-encoded MD5 of its content.
// Objects uploaded in multiple parts carry a composite tag instead: the MD5
// of the concatenated raw part digests, suffixed with the part count
// (e.g. "9b2cf535f27731c974343645a3985328-3"). Computing the same tag
// locally lets a sync decide whether an upload is needed without fetching
// the object.
package etag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// DefaultPartSize is the part size assumed when none is configured.
// It matches the aws-cli multipart chunk default; objects uploaded with a
// different part size produce composite tags that will not compare equal.
const DefaultPartSize = 8 * 1024 * 1024

// Empty is the tag returned for zero-byte files. It never equals a real
// S3 ETag, so empty files always compare as changed.
const Empty = ""

// Compute reads the file at path and returns its S3-style entity tag.
//
// The file is read sequentially in partSize chunks. If it fits in a single
// part the content MD5 is recomputed in a second full pass rather than
// reused from the part digest; the two are definitionally identical but S3
// derives them independently and this mirrors that exactly.
func Compute(fsys fs.Filesystem, path string, partSize int64) (string, error) {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}

	file, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}

	var digests []byte
	parts := 0
	for {
		h := md5.New()
		n, err := io.CopyN(h, file, partSize)
		if n > 0 {
			digests = append(digests, h.Sum(nil)...)
			parts++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			file.Close()
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}

	switch parts {
	case 0:
		return Empty, nil
	case 1:
		return computeWholeFileMD5(fsys, path)
	default:
		sum := md5.Sum(digests)
		return fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:]), parts), nil
	}
}

// computeWholeFileMD5 performs the full second pass used for single-part tags.
func computeWholeFileMD5(fsys fs.Filesystem, path string) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to reopen %s: %w", path, err)
	}
	defer file.Close()

	h := md5.New()
	if _, err := io.Copy(h, file); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsComposite reports whether tag is a multipart (hash-of-hashes) tag.
func IsComposite(tag string) bool {
	return strings.Contains(tag, "-")
}
