package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	data     []byte
	err      error
	lastKind client.ExportKind
}

func (f *fakeExporter) Export(ctx context.Context, kind client.ExportKind) ([]byte, error) {
	f.lastKind = kind
	return f.data, f.err
}

type memSink struct {
	name, contentType string
	data              []byte
	err               error
}

func (m *memSink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.name, m.contentType, m.data = name, contentType, data
	return "mem://" + name, nil
}

func fixedNow() time.Time {
	return time.Date(2025, 3, 7, 14, 5, 9, 0, time.UTC)
}

func TestExportFileName(t *testing.T) {
	require.Equal(t, "platforms-20250307-140509.xlsx", ExportFileName(client.ExportSpreadsheet, fixedNow()))
	require.Equal(t, "platforms-20250307-140509.pdf", ExportFileName(client.ExportDocument, fixedNow()))
}

func TestExportService_WritesToSink(t *testing.T) {
	src := &fakeExporter{data: []byte("%PDF-1.4")}
	sink := &memSink{}
	svc := NewExportService(src, sink, logging.Nop())
	svc.now = fixedNow

	loc, err := svc.Export(context.Background(), client.ExportDocument)
	require.NoError(t, err)
	require.Equal(t, "mem://platforms-20250307-140509.pdf", loc)
	require.Equal(t, client.ExportDocument, src.lastKind)
	require.Equal(t, "application/pdf", sink.contentType)
	require.Equal(t, []byte("%PDF-1.4"), sink.data)
}

func TestExportService_SourceErrorIsReturnedUnchanged(t *testing.T) {
	remote := &client.RemoteError{Status: 401, Message: client.SessionExpiredMessage, Err: client.ErrUnauthorized}
	sink := &memSink{}
	svc := NewExportService(&fakeExporter{err: remote}, sink, logging.Nop())

	_, err := svc.Export(context.Background(), client.ExportSpreadsheet)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.Nil(t, sink.data)
}

func TestExportService_SinkError(t *testing.T) {
	svc := NewExportService(&fakeExporter{data: []byte("x")}, &memSink{err: errors.New("no space")}, logging.Nop())

	_, err := svc.Export(context.Background(), client.ExportSpreadsheet)
	require.ErrorContains(t, err, "store export")
}

func TestFileSink_WritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	loc, err := FileSink{Dir: dir}.Put(context.Background(), "a.xlsx", "", []byte("data"))
	require.NoError(t, err)
	require.Equal(t, "a.xlsx", filepath.Base(loc))

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), got)
}

func stubAWS(t *testing.T) {
	t.Helper()
	origLoad, origNew, origPut := loadDefaultAWSConfig, newS3ClientFromConfig, putObject
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig, putObject = origLoad, origNew, origPut
	})
}

func TestNewS3Sink_AppliesOptions(t *testing.T) {
	stubAWS(t)

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	_, err := NewS3Sink(context.Background(), S3Config{
		Bucket:       "exports",
		Region:       "eu-central-1",
		BaseEndpoint: "http://127.0.0.1:9000",
		AccessKey:    "minioadmin",
		SecretKey:    "minioadmin",
	})
	require.NoError(t, err)

	require.Equal(t, "eu-central-1", lo.Region)
	require.NotNil(t, lo.Credentials)
	require.NotNil(t, opts.BaseEndpoint)
	require.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	require.True(t, opts.UsePathStyle)
}

func TestNewS3Sink_Errors(t *testing.T) {
	stubAWS(t)

	_, err := NewS3Sink(context.Background(), S3Config{})
	require.Error(t, err)

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Sink(context.Background(), S3Config{Bucket: "b"})
	require.ErrorContains(t, err, "load-fail")
}

func TestS3Sink_Put(t *testing.T) {
	stubAWS(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client { return &s3.Client{} }

	var got *s3.PutObjectInput
	var body []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		got = in
		b, err := io.ReadAll(in.Body)
		require.NoError(t, err)
		body = b
		return &s3.PutObjectOutput{}, nil
	}

	sink, err := NewS3Sink(context.Background(), S3Config{Bucket: "exports", Prefix: "/team/backups/"})
	require.NoError(t, err)

	loc, err := sink.Put(context.Background(), "platforms.pdf", "application/pdf", []byte("pdf"))
	require.NoError(t, err)
	require.Equal(t, "s3://exports/team/backups/platforms.pdf", loc)
	require.Equal(t, "exports", aws.ToString(got.Bucket))
	require.Equal(t, "team/backups/platforms.pdf", aws.ToString(got.Key))
	require.Equal(t, "application/pdf", aws.ToString(got.ContentType))
	require.Equal(t, int64(3), aws.ToInt64(got.ContentLength))
	require.True(t, bytes.Equal([]byte("pdf"), body))

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("denied")
	}
	_, err = sink.Put(context.Background(), "x.pdf", "application/pdf", nil)
	require.ErrorContains(t, err, "put s3://exports/team/backups/x.pdf")
}
