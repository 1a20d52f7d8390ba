// Package generator draws initials avatars for accounts without a profile
// picture. Colors come from the invitation palettes so the admin table and
// header badge match the templates.
package generator

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	DefaultSize = 128
	MinSize     = 16
	MaxSize     = 512
)

type swatch struct {
	bg, fg color.RGBA
}

var palette = []swatch{
	{color.RGBA{142, 1, 1, 255}, color.RGBA{253, 230, 138, 255}},    // đỏ son / vàng
	{color.RGBA{190, 18, 60, 255}, color.RGBA{255, 241, 242, 255}},  // rose
	{color.RGBA{180, 83, 9, 255}, color.RGBA{255, 251, 235, 255}},   // amber
	{color.RGBA{253, 230, 138, 255}, color.RGBA{142, 1, 1, 255}},    // gold
	{color.RGBA{255, 228, 230, 255}, color.RGBA{159, 18, 57, 255}},  // blush
	{color.RGBA{21, 128, 61, 255}, color.RGBA{240, 253, 244, 255}},  // jade
	{color.RGBA{30, 41, 59, 255}, color.RGBA{253, 230, 138, 255}},   // ink
	{color.RGBA{124, 58, 237, 255}, color.RGBA{245, 243, 255, 255}}, // violet
}

var (
	parsedFont *opentype.Font
	fontOnce   sync.Once
	fontErr    error
)

func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		parsedFont, fontErr = opentype.Parse(gobold.TTF)
	})
	return parsedFont, fontErr
}

// Initials returns up to two upper-case letters from name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

func pick(seed string) swatch {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(seed))))
	return palette[h.Sum32()%uint32(len(palette))]
}

// ClampSize bounds a requested pixel size.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// Avatar renders a round PNG with the initials of name. seed selects the
// color and is usually the email so renames keep the same swatch.
func Avatar(name, seed string, size int) ([]byte, error) {
	size = ClampSize(size)
	sw := pick(seed)

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, sw.bg)
			}
		}
	}

	if err := drawCentered(img, Initials(name), sw.fg, size); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

func drawCentered(img *image.RGBA, text string, fg color.Color, size int) error {
	f, err := loadFont()
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}
	fontSize := float64(size) * 0.42
	if len([]rune(text)) > 1 {
		fontSize = float64(size) * 0.36
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	width := d.MeasureString(text).Round()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	x := (size - width) / 2
	y := (size-(ascent+descent))/2 + ascent
	d.Dot = fixed.P(x, y)
	d.DrawString(text)
	return nil
}
