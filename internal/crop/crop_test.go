package crop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"glow/internal/invitation"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 255), uint8(y % 255), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
	return buf.Bytes()
}

func TestCommitKeepsAspect(t *testing.T) {
	landscape := samplePNG(t, 640, 360)
	portrait := samplePNG(t, 300, 700)

	fields := []invitation.Field{
		invitation.MainImage,
		invitation.CenterImage,
		invitation.FooterImage,
		invitation.QRCode,
		invitation.AlbumImage(0),
		invitation.AlbumImage(4),
		invitation.GalleryImage(1),
	}
	for _, src := range [][]byte{landscape, portrait} {
		for _, f := range fields {
			for _, rot := range []float64{0, 90, 37, 360} {
				res, err := Commit(src, Rect{X: 10, Y: 10, Width: 200, Height: 150}, rot, f.Aspect(), Options{OutputWidth: 400})
				if err != nil {
					t.Fatalf("%s rot=%v: %v", f, rot, err)
				}
				got := float64(res.Width) / float64(res.Height)
				// one pixel of rounding on the height
				tol := f.Aspect() / float64(res.Height)
				if math.Abs(got-f.Aspect()) > tol {
					t.Fatalf("%s rot=%v: ratio %v (%dx%d), want %v", f, rot, got, res.Width, res.Height, f.Aspect())
				}
				if res.Width != 400 {
					t.Fatalf("width = %d, want 400", res.Width)
				}
			}
		}
	}
}

func TestCommitExactMainImage(t *testing.T) {
	src := samplePNG(t, 500, 500)
	res, err := Commit(src, Rect{Width: 249, Height: 373}, 0, 249.0/373.0, Options{OutputWidth: 249})
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 249 || res.Height != 373 {
		t.Fatalf("got %dx%d, want 249x373", res.Width, res.Height)
	}
	if !strings.HasPrefix(res.DataURL(), "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data url prefix")
	}
}

func TestCommitErrors(t *testing.T) {
	src := samplePNG(t, 100, 100)
	if _, err := Commit([]byte("not an image"), Rect{Width: 10, Height: 10}, 0, 1, Options{}); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
	if _, err := Commit(src, Rect{X: 500, Y: 500, Width: 10, Height: 10}, 0, 1, Options{}); !errors.Is(err, ErrInvalidArea) {
		t.Fatalf("expected ErrInvalidArea, got %v", err)
	}
	if _, err := Commit(src, Rect{}, 0, 1, Options{}); !errors.Is(err, ErrInvalidArea) {
		t.Fatalf("expected ErrInvalidArea for empty rect, got %v", err)
	}
	if _, err := Commit(src, Rect{Width: 10, Height: 10}, 0, 0, Options{}); !errors.Is(err, ErrInvalidAspect) {
		t.Fatalf("expected ErrInvalidAspect, got %v", err)
	}
}

func TestCommitIsPure(t *testing.T) {
	src := samplePNG(t, 200, 200)
	a, err := Commit(src, Rect{X: 5, Y: 5, Width: 100, Height: 100}, 15, 1, Options{OutputWidth: 64})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Commit(src, Rect{X: 5, Y: 5, Width: 100, Height: 100}, 15, 1, Options{OutputWidth: 64})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Data, b.Data) {
		t.Fatalf("same inputs produced different output")
	}
}

func TestStateBounds(t *testing.T) {
	s := NewState()
	s.SetZoom(5)
	if s.Zoom != MaxZoom {
		t.Fatalf("zoom not clamped high: %v", s.Zoom)
	}
	s.SetZoom(0.2)
	if s.Zoom != MinZoom {
		t.Fatalf("zoom not clamped low: %v", s.Zoom)
	}
	s.SetZoom(1.26)
	if s.Zoom != 1.3 {
		t.Fatalf("zoom not snapped: %v", s.Zoom)
	}
	s.SetRotation(-10)
	if s.Rotation != 0 {
		t.Fatalf("rotation not clamped: %v", s.Rotation)
	}
	s.SetRotation(400)
	if s.Rotation != MaxRotation {
		t.Fatalf("rotation not clamped: %v", s.Rotation)
	}
	s.SetRotation(44.6)
	if s.Rotation != 45 {
		t.Fatalf("rotation not snapped: %v", s.Rotation)
	}
}

func TestSessionLifecycle(t *testing.T) {
	src := samplePNG(t, 400, 300)
	s, err := NewSession(invitation.QRCode, src)
	if err != nil {
		t.Fatal(err)
	}
	if a := s.State().Area; a.Width != 300 || a.Height != 300 || a.X != 50 {
		t.Fatalf("default area = %+v", a)
	}
	res, err := s.Commit(Options{OutputWidth: 120})
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 120 || res.Height != 120 {
		t.Fatalf("qr output %dx%d", res.Width, res.Height)
	}
	if _, err := s.Commit(Options{}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("second commit should fail")
	}

	c, _ := NewSession(invitation.MainImage, src)
	c.Cancel()
	if err := c.Update(1, 0, Rect{}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("update after cancel should fail")
	}

	if _, err := NewSession(invitation.MainImage, []byte("junk")); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource")
	}
}

// rotatedJPEG encodes a w x h JPEG tagged with EXIF orientation 6, which
// viewers show rotated 90 degrees clockwise.
func rotatedJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	exif := []byte{
		0xFF, 0xE1, 0x00, 0x22, // APP1, length 34
		'E', 'x', 'i', 'f', 0, 0,
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // big-endian TIFF, IFD at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, 0x06, 0x00, 0x00, // Orientation = 6
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	raw := buf.Bytes()
	out := append([]byte{}, raw[:2]...)
	out = append(out, exif...)
	return append(out, raw[2:]...)
}

func TestSessionHonoursOrientation(t *testing.T) {
	s, err := NewSession(invitation.QRCode, rotatedJPEG(t, 400, 300))
	if err != nil {
		t.Fatal(err)
	}
	// Shown as 300x400, so the square is centered vertically.
	if a := s.State().Area; a.Width != 300 || a.Height != 300 || a.X != 0 || a.Y != 50 {
		t.Fatalf("default area = %+v", a)
	}
	res, err := s.Commit(Options{OutputWidth: 60})
	if err != nil {
		t.Fatal(err)
	}
	if res.Width != 60 || res.Height != 60 {
		t.Fatalf("output %dx%d", res.Width, res.Height)
	}
}

func TestInlineSink(t *testing.T) {
	ref, err := InlineSink{}.Store(context.Background(), invitation.MainImage, Result{Data: []byte{1, 2}, MIME: "image/jpeg"})
	if err != nil || ref != "data:image/jpeg;base64,AQI=" {
		t.Fatalf("inline sink = %q, %v", ref, err)
	}
}
