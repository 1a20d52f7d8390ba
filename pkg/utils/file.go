package utils

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

var (
	ErrUploadTooLarge  = errors.New("upload too large")
	ErrUnsupportedType = errors.New("unsupported media type")
)

var (
	ImageTypes = map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	AudioTypes = map[string]bool{
		"audio/mpeg":      true,
		"audio/mp4":       true,
		"audio/wave":      true,
		"audio/wav":       true,
		"audio/ogg":       true,
		"application/ogg": true,
		"video/mp4":       true,
	}
)

// ReadUpload reads a multipart file fully, enforcing limit and sniffing the
// content type against allowed. The sniffed type is returned.
func ReadUpload(fh *multipart.FileHeader, limit int64, allowed map[string]bool) ([]byte, string, error) {
	if limit > 0 && fh.Size > limit {
		return nil, "", ErrUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	r := io.Reader(f)
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, "", ErrUploadTooLarge
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	// Sniffing does not know every audio container; trust the browser for audio/*.
	if !allowed[contentType] {
		declared := fh.Header.Get("Content-Type")
		if strings.HasPrefix(declared, "audio/") && allowed[declared] {
			contentType = declared
		} else {
			return nil, "", ErrUnsupportedType
		}
	}
	return data, contentType, nil
}
