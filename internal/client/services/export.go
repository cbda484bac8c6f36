package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/filex"
	"github.com/dmitrijs2005/secretkey/internal/logging"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// Exporter produces an export blob. *store.Store satisfies it, so exports
// share the Store's handling of rejected credentials.
type Exporter interface {
	Export(ctx context.Context, kind client.ExportKind) ([]byte, error)
}

// Sink stores a finished export and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ExportFileName names an export taken at t.
func ExportFileName(kind client.ExportKind, t time.Time) string {
	return fmt.Sprintf("platforms-%s.%s", t.Format("20060102-150405"), kind.Extension())
}

type ExportService struct {
	source Exporter
	sink   Sink
	logger logging.Logger
	now    func() time.Time
}

func NewExportService(source Exporter, sink Sink, logger logging.Logger) *ExportService {
	return &ExportService{
		source: source,
		sink:   sink,
		logger: logger.With("component", "export"),
		now:    time.Now,
	}
}

// Export fetches the export of kind and writes it to the sink. It returns
// the location of the stored export.
func (s *ExportService) Export(ctx context.Context, kind client.ExportKind) (string, error) {
	data, err := s.source.Export(ctx, kind)
	if err != nil {
		return "", err
	}

	name := ExportFileName(kind, s.now())
	loc, err := s.sink.Put(ctx, name, kind.ContentType(), data)
	if err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}

	s.logger.Info(ctx, "export stored", "kind", string(kind), "location", loc, "bytes", len(data))
	return loc, nil
}

// FileSink writes exports into a local directory.
type FileSink struct {
	Dir string
}

func (f FileSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	return filex.WriteFileAtomic(f.Dir, name, data)
}

// S3Config locates the bucket exports are uploaded to. Empty credentials
// fall back to the default AWS credential chain.
type S3Config struct {
	Bucket       string
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
	Prefix       string
}

// S3Sink uploads exports to an S3-compatible bucket.
type S3Sink struct {
	cfg    S3Config
	client *s3.Client
}

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink: bucket is required")
	}

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	c := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			// MinIO and other self-hosted endpoints need path-style addressing.
			o.UsePathStyle = true
		}
	})

	return &S3Sink{cfg: cfg, client: c}, nil
}

func (s *S3Sink) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.key(name)
	_, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.cfg.Bucket, key), nil
}
