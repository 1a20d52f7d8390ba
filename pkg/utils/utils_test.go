package utils

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"glow/pkg/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func TestSizeToBytes(t *testing.T) {
	cases := map[string]int64{
		"8MB":   8 << 20,
		"1 gb":  1 << 30,
		"512kb": 512 << 10,
		"42":    42,
		"":      7,
		"ten":   7,
		"5XB":   7,
	}
	for in, want := range cases {
		if got := SizeToBytes(in, 7); got != want {
			t.Errorf("SizeToBytes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMatchOrigin(t *testing.T) {
	cases := []struct {
		origin, pattern string
		want            bool
	}{
		{"https://a.com", "*", true},
		{"https://a.com", "https://a.com", true},
		{"https://x.a.com", "https://*.a.com", true},
		{"https://a.com", "https://*.a.com", false},
		{"https://a.com", "https://**.a.com", true},
		{"https://x.y.a.com", "https://**.a.com", true},
		{"https://evil.com", "https://**.a.com", false},
	}
	for _, c := range cases {
		if got := MatchOrigin(c.origin, c.pattern); got != c.want {
			t.Errorf("MatchOrigin(%q, %q) = %v", c.origin, c.pattern, got)
		}
	}
	if !IsAllowedOrigin("https://x.a.com/path", []string{"https://*.a.com"}) {
		t.Error("origin with path should be cleaned before matching")
	}
	if IsAllowedOrigin("", []string{"*"}) {
		t.Error("empty origin allowed")
	}
}

func TestGetRealIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	if ip := GetRealIP(r); ip != "10.0.0.1" {
		t.Fatalf("remote ip = %q", ip)
	}
	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	if ip := GetRealIP(r); ip != "1.2.3.4" {
		t.Fatalf("forwarded ip = %q", ip)
	}
}

func multipartFile(t *testing.T, name string, data []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", name)
	fw.Write(data)
	mw.Close()

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return r.MultipartForm.File["file"][0]
}

func TestReadUpload(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n" + string(make([]byte, 64)))
	data, ct, err := ReadUpload(multipartFile(t, "a.png", png), 1<<10, ImageTypes)
	if err != nil || ct != "image/png" || len(data) != len(png) {
		t.Fatalf("ReadUpload png = %d, %q, %v", len(data), ct, err)
	}

	if _, _, err := ReadUpload(multipartFile(t, "a.txt", []byte("plain text")), 1<<10, ImageTypes); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("text upload err = %v", err)
	}

	if _, _, err := ReadUpload(multipartFile(t, "big.png", png), 16, ImageTypes); !errors.Is(err, ErrUploadTooLarge) {
		t.Fatalf("oversized upload err = %v", err)
	}
}
