// Package validation provides centralized input validation logic.
// This includes bucket name validation and object key checks.
//
// Inputs are validated before any remote call is issued, so malformed
// destinations fail fast instead of surfacing as confusing AWS errors.
package validation

import (
	"net"
	"strings"
	"unicode"

	serrors "github.com/forgeworks/s3sync/errors"
)

// ValidateBucketName validates that a bucket name is DNS-compliant
// according to AWS S3 rules.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithMessage("bucket name cannot be empty")
	}
	if len(bucket) < 3 || len(bucket) > 63 {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must be between 3 and 63 characters")
	}
	if strings.ToLower(bucket) != bucket {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must not contain uppercase characters")
	}
	for _, r := range bucket {
		if !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '-' && r != '.' {
			return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
				WithBucket(bucket).
				WithMessage("bucket name may only contain lowercase letters, digits, hyphens and dots")
		}
	}
	if strings.HasPrefix(bucket, "-") || strings.HasSuffix(bucket, "-") ||
		strings.HasPrefix(bucket, ".") || strings.HasSuffix(bucket, ".") {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must begin and end with a letter or digit")
	}
	if strings.Contains(bucket, "..") {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must not contain consecutive dots")
	}
	if net.ParseIP(bucket) != nil {
		return serrors.New("validateBucketName", serrors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage("bucket name must not be formatted as an IP address")
	}
	return nil
}

// ValidateObjectKey validates that an object key is acceptable to S3.
// This includes preventing path traversal and control characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return serrors.New("validateObjectKey", serrors.ErrInvalidObjectKey).
			WithMessage("object key cannot be empty")
	}
	if len(key) > 1024 {
		return serrors.New("validateObjectKey", serrors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}
	if hasPathTraversal(key) {
		return serrors.New("validateObjectKey", serrors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return serrors.New("validateObjectKey", serrors.ErrInvalidObjectKey).
				WithKey(key).
				WithMessage("object key cannot contain control characters")
		}
	}
	return nil
}

// hasPathTraversal reports whether key contains a ".." path element.
func hasPathTraversal(key string) bool {
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
