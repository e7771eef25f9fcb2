package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentSource loads a document by location.
type DocumentSource interface {
	Load(ctx context.Context, location string) (UploadedDocument, error)
}

// S3Config points at an S3-compatible bucket store (AWS, R2, MinIO).
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3DocumentSource struct {
	client        objectGetter
	maxObjectSize int64
}

// NewS3DocumentSource builds an S3 client from static credentials when
// given, otherwise from the default AWS credential chain. Objects larger
// than maxObjectSize are rejected without being read in full; <= 0 means
// no limit.
func NewS3DocumentSource(ctx context.Context, cfg S3Config, maxObjectSize int64) (DocumentSource, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}
	opts = append(opts, awsconfig.WithRegion(region))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3DocumentSource{client: client, maxObjectSize: maxObjectSize}, nil
}

// ParseS3Location splits s3://bucket/key.
func ParseS3Location(location string) (bucket, key string, err error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 location %q: %w", location, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: want s3://bucket/key", location)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q: missing key", location)
	}
	return u.Host, key, nil
}

// Load implements DocumentSource.
func (s *s3DocumentSource) Load(ctx context.Context, location string) (UploadedDocument, error) {
	bucket, key, err := ParseS3Location(location)
	if err != nil {
		return UploadedDocument{}, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("failed to get object %s: %w", location, err)
	}
	defer out.Body.Close()

	filename := path.Base(key)
	var body io.Reader = out.Body
	if s.maxObjectSize > 0 {
		if out.ContentLength != nil {
			if err := checkSize(filename, *out.ContentLength, s.maxObjectSize); err != nil {
				return UploadedDocument{}, err
			}
		}
		// one extra byte tells an object at the limit from one past it
		body = io.LimitReader(out.Body, s.maxObjectSize+1)
	}

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, body); err != nil {
		return UploadedDocument{}, fmt.Errorf("failed to read object body: %w", err)
	}
	if err := checkSize(filename, int64(buf.Len()), s.maxObjectSize); err != nil {
		return UploadedDocument{}, err
	}

	return UploadedDocument{Filename: filename, Data: buf.Bytes()}, nil
}

type fileDocumentSource struct{}

// NewFileDocumentSource reads documents from the local filesystem.
func NewFileDocumentSource() DocumentSource {
	return fileDocumentSource{}
}

// Load implements DocumentSource.
func (fileDocumentSource) Load(_ context.Context, location string) (UploadedDocument, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return UploadedDocument{Filename: filepath.Base(location), Data: data}, nil
}

// MultiSource routes s3:// locations to the S3 source and everything else
// to the filesystem. The S3 source is built on first use.
type MultiSource struct {
	Files DocumentSource
	S3    func(ctx context.Context) (DocumentSource, error)

	s3 DocumentSource
}

// Load implements DocumentSource.
func (m *MultiSource) Load(ctx context.Context, location string) (UploadedDocument, error) {
	if !strings.HasPrefix(location, "s3://") {
		return m.Files.Load(ctx, location)
	}

	if m.s3 == nil {
		if m.S3 == nil {
			return UploadedDocument{}, fmt.Errorf("s3 source not configured for %s", location)
		}
		src, err := m.S3(ctx)
		if err != nil {
			return UploadedDocument{}, err
		}
		m.s3 = src
	}
	return m.s3.Load(ctx, location)
}
