package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"glow/internal/crop"
	"glow/internal/invitation"
)

type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Prefix        string
}

func (c S3Config) Configured() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3 struct {
	client     putter
	bucket     string
	prefix     string
	publicBase string
}

func NewS3(ctx context.Context, c S3Config) (*S3, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	region := c.Region
	if region == "" {
		region = "auto"
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3(client, c), nil
}

func newS3(client putter, c S3Config) *S3 {
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		prefix = "glow"
	}
	base := strings.TrimRight(c.PublicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.amazonaws.com", c.Bucket)
	}
	return &S3{client: client, bucket: c.Bucket, prefix: prefix, publicBase: base}
}

func (s *S3) put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to S3: %w", err)
	}
	return s.publicBase + "/" + key, nil
}

// Store uploads a cropped image and returns its public URL.
func (s *S3) Store(ctx context.Context, field invitation.Field, res crop.Result) (string, error) {
	key := fmt.Sprintf("%s/images/%s/%s.jpg", s.prefix, field, uuid.NewString())
	return s.put(ctx, key, res.Data, res.MIME)
}

func (s *S3) PutAudio(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("%s/music/%s%s", s.prefix, uuid.NewString(), extFor(contentType))
	return s.put(ctx, key, data, contentType)
}

// PutBackup uploads a database snapshot file and returns the object key.
func (s *S3) PutBackup(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/database/%s-%s", s.prefix, time.Now().UTC().Format("2006-01-02T150405"), filepath.Base(path))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("upload backup: %w", err)
	}
	return key, nil
}
