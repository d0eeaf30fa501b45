package s3sync

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/forgeworks/s3sync/errors"
	"github.com/forgeworks/s3sync/internal/s3api"
	"github.com/forgeworks/s3sync/synctypes"
)

// Client performs sync operations against a single S3 endpoint.
// It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying S3 API implementation
	s3Client s3api.S3API

	// config holds the resolved AWS configuration
	config aws.Config

	// clientCfg holds the client-level defaults applied to syncs
	clientCfg synctypes.ClientConfig

	// fsys is the filesystem abstraction for local file operations
	fsys fs.Filesystem
}

// New creates a new sync client with the provided options.
// Credentials are loaded through the default AWS credential chain unless
// a custom aws.Config is supplied.
//
// Example:
//
//	client, err := s3sync.New(
//	    s3sync.WithRegion("us-west-2"),
//	    s3sync.WithMaxRetries(3),
//	)
func New(opts ...synctypes.Option) (*Client, error) {
	clientCfg := synctypes.ClientConfig{
		MaxRetries: 3,
		Workers:    4,
		PartSize:   8 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	var cfg aws.Config
	var err error
	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.New("clientInit", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{Timeout: clientCfg.Timeout}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	fsys := clientCfg.Filesystem
	if fsys == nil {
		fsys = billy.NewOSFS("/")
	}

	return &Client{
		s3Client:  s3.NewFromConfig(cfg, s3Opts...),
		config:    cfg,
		clientCfg: clientCfg,
		fsys:      fsys,
	}, nil
}

// NewWithClient creates a sync client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...synctypes.Option) *Client {
	clientCfg := synctypes.ClientConfig{
		Workers:  4,
		PartSize: 8 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(&clientCfg)
	}

	fsys := clientCfg.Filesystem
	if fsys == nil {
		fsys = billy.NewOSFS("/")
	}

	return &Client{
		s3Client:  s3Client,
		config:    aws.Config{},
		clientCfg: clientCfg,
		fsys:      fsys,
	}
}

// SetFilesystem replaces the filesystem implementation for the client.
// Useful for tests that inject an in-memory filesystem after creation.
func (c *Client) SetFilesystem(fsys fs.Filesystem) {
	c.fsys = fsys
}
