package invitation

import (
	"errors"
	"fmt"
	"strings"
)

// Style tags which layout renders a record.
type Style string

const (
	StyleModern       Style = "modern"
	StyleClassic      Style = "classic"
	StyleFloral       Style = "floral"
	StyleLuxury       Style = "luxury"
	StyleRedGold      Style = "red-gold"
	StylePersonalized Style = "personalized"
)

var ErrUnknownStyle = errors.New("unknown style")

func ParseStyle(s string) (Style, error) {
	switch st := Style(strings.TrimSpace(s)); st {
	case StyleModern, StyleClassic, StyleFloral, StyleLuxury, StyleRedGold, StylePersonalized:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
}

type Template struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Style        Style  `json:"style"`
	Color        string `json:"color"`
}

var templates = []Template{
	{
		ID:           "t6",
		Name:         "Thiệp dùng tên riêng",
		ThumbnailURL: "https://statics.pancake.vn/web-media/3c/3b/ca/e1/e12ca0e6af675d653327f5a3b5d2c7c2385f71d26b8fee7604b45828-w:1706-h:2560-l:224512-t:image/jpeg.jpg",
		Style:        StylePersonalized,
		Color:        "#fffbeb",
	},
	{
		ID:           "t5",
		Name:         "Mẫu Đỏ Truyền Thống",
		ThumbnailURL: "https://statics.pancake.vn/web-media/ab/56/c3/d2/ae46af903d624877e4e71b00dc5ab4badaa10a8956d3c389ccbc73e9-w:1080-h:1620-l:151635-t:image/jpeg.jpeg",
		Style:        StyleRedGold,
		Color:        "#fff1f2",
	},
}

// Templates returns the catalog in display order.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

func FindTemplate(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// NewFromTemplate starts a fresh record for t.
func NewFromTemplate(t Template) Data {
	d := Default()
	d.Style = t.Style
	return d
}
