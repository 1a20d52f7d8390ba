// Package media stores cropped images, music and database snapshots either
// inline in the record or in an S3-compatible bucket.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"glow/internal/crop"
	"glow/pkg/logger"
)

var ErrNotConfigured = errors.New("media: object storage is not configured")

// Store is what the editor needs to keep an uploaded asset and get back the
// reference written into the record.
type Store interface {
	crop.Sink
	PutAudio(ctx context.Context, data []byte, contentType string) (string, error)
}

// Inline keeps everything as data URLs inside the record.
type Inline struct {
	crop.InlineSink
}

func (Inline) PutAudio(_ context.Context, data []byte, contentType string) (string, error) {
	if !strings.HasPrefix(contentType, "audio/") {
		contentType = "audio/mpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// NewStore picks the S3 store when driver is "s3" and credentials are
// present. Anything else falls back to inline storage.
func NewStore(ctx context.Context, driver string, c S3Config) Store {
	if driver != "s3" {
		return Inline{}
	}
	s, err := NewS3(ctx, c)
	if err != nil {
		logger.LogWarn("Media: %v, storing uploads inline", err)
		return Inline{}
	}
	logger.LogSuccess("Media: uploads go to s3://%s", c.Bucket)
	return s
}

func extFor(contentType string) string {
	switch contentType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/mp4", "audio/aac":
		return ".m4a"
	}
	return fmt.Sprintf(".%s", strings.TrimPrefix(contentType, "audio/"))
}
