package s3sync

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	serrors "github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/internal/testutil"
	"github.com/forgeworks/s3sync/synctypes"
)

func md5hex(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// setupSource writes a two-file source tree where a.txt already exists
// remotely with identical content and b.txt does not.
func setupSource(t *testing.T) *billy.FS {
	t.Helper()
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("/site", 0o755))
	require.NoError(t, fsys.WriteFile("/site/a.txt", []byte("alpha"), 0o644))
	require.NoError(t, fsys.WriteFile("/site/b.txt", []byte("bravo"), 0o644))
	return fsys
}

// listingMock returns a mock whose remote listing already contains
// backups/a.txt with the etag of "alpha".
func listingMock(puts *int64, uploaded *[]string) *testutil.MockS3Client {
	return &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("backups/a.txt"), ETag: aws.String(`"` + md5hex("alpha") + `"`)},
				},
			}, nil
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			atomic.AddInt64(puts, 1)
			if uploaded != nil {
				*uploaded = append(*uploaded, *params.Key)
			}
			return &s3.PutObjectOutput{}, nil
		},
	}
}

func TestSync_UploadsOnlyChangedFiles(t *testing.T) {
	fsys := setupSource(t)
	var puts int64
	var uploaded []string
	client := NewWithClient(listingMock(&puts, &uploaded), WithFilesystem(fsys), WithWorkers(1))

	var progress bytes.Buffer
	result, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"},
		WithProgressOutput(&progress),
	)
	require.NoError(t, err)

	assert.True(t, result.Ok())
	assert.Equal(t, 1, result.FilesUploaded)
	assert.Equal(t, 1, result.FilesUpToDate)
	assert.Zero(t, result.FilesFailed)
	assert.Equal(t, int64(len("bravo")), result.BytesUploaded)
	assert.Equal(t, []string{"backups/b.txt"}, uploaded)
	assert.Contains(t, progress.String(), "[1/1] Uploaded backups/b.txt")
}

func TestSync_DryRunPlansWithoutWriting(t *testing.T) {
	fsys := setupSource(t)
	var puts int64
	client := NewWithClient(listingMock(&puts, nil), WithFilesystem(fsys))

	var progress bytes.Buffer
	result, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"},
		WithDryRun(true),
		WithProgressOutput(&progress),
	)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Zero(t, atomic.LoadInt64(&puts), "dry run must not write")
	// The plan is identical to a real run.
	require.Len(t, result.Tasks, 1)
	assert.Equal(t, "backups/b.txt", result.Tasks[0].Key)
	assert.Equal(t, 1, result.FilesUpToDate)
}

func TestSync_Idempotent(t *testing.T) {
	// A second sync against a listing that now also contains b.txt plans
	// nothing at all.
	fsys := setupSource(t)
	var puts int64
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("backups/a.txt"), ETag: aws.String(`"` + md5hex("alpha") + `"`)},
					{Key: aws.String("backups/b.txt"), ETag: aws.String(`"` + md5hex("bravo") + `"`)},
				},
			}, nil
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			atomic.AddInt64(&puts, 1)
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fsys))

	result, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"},
		WithProgressOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err)

	assert.Empty(t, result.Tasks)
	assert.Equal(t, 2, result.FilesUpToDate)
	assert.Zero(t, atomic.LoadInt64(&puts))
}

func TestSync_ExcludePatterns(t *testing.T) {
	fsys := setupSource(t)
	var puts int64
	var uploaded []string
	client := NewWithClient(listingMock(&puts, &uploaded), WithFilesystem(fsys), WithWorkers(1))

	result, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"},
		WithExcludePattern("b.txt"),
		WithProgressOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err)

	assert.Empty(t, uploaded)
	assert.Equal(t, 1, result.FilesUpToDate)
	assert.Zero(t, result.FilesUploaded)
}

func TestSync_MissingSource(t *testing.T) {
	client := NewWithClient(&testutil.MockS3Client{}, WithFilesystem(billy.NewInMemoryFS()))

	_, err := client.Sync(context.Background(), "/nope",
		Destination{Bucket: "test-bucket"})
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestSync_EmptySource(t *testing.T) {
	client := NewWithClient(&testutil.MockS3Client{}, WithFilesystem(billy.NewInMemoryFS()))

	_, err := client.Sync(context.Background(), "", Destination{Bucket: "test-bucket"})
	assert.ErrorIs(t, err, serrors.ErrInvalidInput)
}

func TestSync_RemoteListFailureAborts(t *testing.T) {
	fsys := setupSource(t)
	var puts int64
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return nil, errors.New("access denied")
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			atomic.AddInt64(&puts, 1)
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fsys))

	_, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"})
	require.Error(t, err)
	assert.ErrorIs(t, err, serrors.ErrRemoteList)
	assert.Zero(t, atomic.LoadInt64(&puts), "no uploads may start without remote state")
}

func TestSync_UploadFailureRecordedNotFatal(t *testing.T) {
	fsys := setupSource(t)
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{}, nil
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			if *params.Key == "backups/a.txt" {
				return nil, errors.New("throttled")
			}
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fsys))

	result, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket", Prefix: "backups"},
		WithProgressOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err, "per-file failures never fail the call")

	assert.False(t, result.Ok())
	assert.Equal(t, 1, result.FilesUploaded)
	assert.Equal(t, 1, result.FilesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "backups/a.txt", result.Errors[0].Key)
	assert.ErrorIs(t, result.Errors[0].Err, serrors.ErrUpload)
}

func TestSync_SingleFileSource(t *testing.T) {
	fsys := billy.NewInMemoryFS()
	require.NoError(t, fsys.MkdirAll("/data", 0o755))
	require.NoError(t, fsys.WriteFile("/data/report.csv", []byte("x,y"), 0o644))

	var uploaded []string
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{}, nil
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			uploaded = append(uploaded, *params.Key)
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fsys), WithWorkers(1))

	result, err := client.Sync(context.Background(), "/data/report.csv",
		Destination{Bucket: "test-bucket"},
		WithProgressOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"report.csv"}, uploaded)
	assert.Equal(t, 1, result.FilesUploaded)
}

func TestSync_PassesACL(t *testing.T) {
	fsys := setupSource(t)
	var seenACL types.ObjectCannedACL
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			return &s3.ListObjectsV2Output{}, nil
		},
		PutObjectFunc: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			seenACL = params.ACL
			return &s3.PutObjectOutput{}, nil
		},
	}
	client := NewWithClient(mock, WithFilesystem(fsys), WithWorkers(1))

	_, err := client.Sync(context.Background(), "/site",
		Destination{Bucket: "test-bucket"},
		WithACL(synctypes.ACLPublicRead),
		WithProgressOutput(&bytes.Buffer{}),
	)
	require.NoError(t, err)

	assert.Equal(t, types.ObjectCannedACLPublicRead, seenACL)
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		name      string
		uri       string
		want      Destination
		wantErr   bool
		wantErrIs error
	}{
		{
			name: "bucket only",
			uri:  "s3://my-bucket",
			want: Destination{Bucket: "my-bucket"},
		},
		{
			name: "bucket with prefix",
			uri:  "s3://my-bucket/backups/site",
			want: Destination{Bucket: "my-bucket", Prefix: "backups/site"},
		},
		{
			name: "trailing slash dropped",
			uri:  "s3://my-bucket/backups/",
			want: Destination{Bucket: "my-bucket", Prefix: "backups"},
		},
		{
			name:      "missing scheme",
			uri:       "my-bucket/backups",
			wantErr:   true,
			wantErrIs: serrors.ErrInvalidInput,
		},
		{
			name:      "empty bucket",
			uri:       "s3:///backups",
			wantErr:   true,
			wantErrIs: serrors.ErrInvalidInput,
		},
		{
			name:      "uppercase bucket rejected",
			uri:       "s3://MyBucket/backups",
			wantErr:   true,
			wantErrIs: serrors.ErrInvalidBucketName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest, err := ParseDestination(tt.uri)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dest)
		})
	}
}
