// Package publish uploads finished videos to S3-compatible storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/ivlev/promoreel/internal/config"
)

const contentType = "video/mp4"

// Publisher stores a local file and returns where it went.
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

// objectPutter is the part of the S3 client the uploader uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher puts videos under Prefix in Bucket.
type S3Publisher struct {
	client objectPutter
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3 builds a publisher from the default AWS credential chain with the
// overrides in cfg. It returns nil, nil when no bucket is configured.
func NewS3(ctx context.Context, cfg config.PublishConfig, logger zerolog.Logger) (*S3Publisher, error) {
	if cfg.Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Publisher(c, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3Publisher(c objectPutter, bucket, prefix string, logger zerolog.Logger) *S3Publisher {
	return &S3Publisher{
		client: c,
		bucket: bucket,
		prefix: prefix,
		logger: logger.With().Str("component", "publish").Logger(),
	}
}

// Key is the object key for a local file.
func (p *S3Publisher) Key(localPath string) string {
	name := filepath.Base(localPath)
	prefix := strings.Trim(p.prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// Publish uploads localPath and returns its s3:// URI.
func (p *S3Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	key := p.Key(localPath)
	if err := p.put(ctx, key, f); err != nil {
		return "", fmt.Errorf("upload %s to s3://%s/%s: %w", filepath.Base(localPath), p.bucket, key, err)
	}

	uri := fmt.Sprintf("s3://%s/%s", p.bucket, key)
	p.logger.Info().Str("uri", uri).Msg("uploaded")
	return uri, nil
}

func (p *S3Publisher) put(ctx context.Context, key string, body io.Reader) error {
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}
