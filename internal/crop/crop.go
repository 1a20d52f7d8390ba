// Package crop turns an uploaded image plus interactive crop state into a
// fixed-ratio JPEG suitable for an invitation image field.
package crop

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
)

const (
	MinZoom      = 1.0
	MaxZoom      = 3.0
	ZoomStep     = 0.1
	MaxRotation  = 360.0
	RotationStep = 1.0

	DefaultOutputWidth = 800
	DefaultQuality     = 85
	MaxOutputWidth     = 2048
)

var (
	ErrInvalidSource = errors.New("crop: source is not a decodable image")
	ErrInvalidArea   = errors.New("crop: crop area is empty or outside the image")
	ErrInvalidAspect = errors.New("crop: aspect ratio must be positive")
)

// Rect is a crop area in pixels of the rotated source image.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// State is the interactive pan/zoom/rotation state of one crop session.
type State struct {
	Zoom     float64 `json:"zoom"`
	Rotation float64 `json:"rotation"`
	Area     Rect    `json:"area"`
}

func NewState() State {
	return State{Zoom: MinZoom}
}

func (s *State) SetZoom(z float64) {
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	s.Zoom = math.Round(z/ZoomStep) / 10
}

func (s *State) SetRotation(deg float64) {
	deg = math.Max(0, math.Min(MaxRotation, deg))
	s.Rotation = math.Round(deg/RotationStep) * RotationStep
}

func (s *State) SetArea(r Rect) {
	s.Area = r
}

type Options struct {
	OutputWidth int
	Quality     int
}

func (o Options) normalized() Options {
	if o.OutputWidth <= 0 {
		o.OutputWidth = DefaultOutputWidth
	}
	if o.OutputWidth > MaxOutputWidth {
		o.OutputWidth = MaxOutputWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Result is an encoded crop ready for storage.
type Result struct {
	Data   []byte
	Width  int
	Height int
	MIME   string
}

// DataURL encodes the result for inline storage in the record.
func (r Result) DataURL() string {
	return "data:" + r.MIME + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}

// Commit renders area of src (after rotating it clockwise by rotation
// degrees) into an image of exactly OutputWidth x round(OutputWidth/aspect).
// It holds no state between calls.
func Commit(src []byte, area Rect, rotation, aspect float64, opts Options) (Result, error) {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return Result{}, ErrInvalidAspect
	}
	opts = opts.normalized()

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	var base *image.NRGBA
	if r := math.Mod(rotation, 360); r != 0 {
		// imaging rotates counter-clockwise.
		base = imaging.Rotate(img, -r, color.White)
	} else {
		base = imaging.Clone(img)
	}

	rect := area.bounds().Intersect(base.Bounds())
	if rect.Empty() {
		return Result{}, ErrInvalidArea
	}

	outW := opts.OutputWidth
	outH := int(math.Round(float64(outW) / aspect))
	if outH < 1 {
		outH = 1
	}

	cropped := imaging.Crop(base, rect)
	final := imaging.Fill(cropped, outW, outH, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, final, imaging.JPEG, imaging.JPEGQuality(opts.Quality)); err != nil {
		return Result{}, fmt.Errorf("crop: encode: %w", err)
	}

	return Result{
		Data:   buf.Bytes(),
		Width:  final.Bounds().Dx(),
		Height: final.Bounds().Dy(),
		MIME:   "image/jpeg",
	}, nil
}

// DefaultArea is the largest centered rectangle of the given aspect that
// fits a w x h image.
func DefaultArea(w, h int, aspect float64) Rect {
	if w <= 0 || h <= 0 || aspect <= 0 {
		return Rect{}
	}
	cw, ch := w, int(math.Round(float64(w)/aspect))
	if ch > h {
		ch = h
		cw = int(math.Round(float64(h) * aspect))
	}
	return Rect{X: (w - cw) / 2, Y: (h - ch) / 2, Width: cw, Height: ch}
}
