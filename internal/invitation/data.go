package invitation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type ElementStyle struct {
	FontSize int `json:"fontSize,omitempty"`
}

// Styles holds optional per-field overrides. A missing entry means the
// caller's default applies.
type Styles map[Field]ElementStyle

// UnmarshalJSON rejects keys that are not known fields.
func (s *Styles) UnmarshalJSON(b []byte) error {
	var raw map[string]ElementStyle
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Styles, len(raw))
	for k, v := range raw {
		f, err := ParseField(k)
		if err != nil {
			return fmt.Errorf("elementStyles: %w", err)
		}
		out[f] = v
	}
	*s = out
	return nil
}

// Data is the single record a template renders.
type Data struct {
	GroomName      string   `json:"groomName"`
	GroomFather    string   `json:"groomFather"`
	GroomMother    string   `json:"groomMother"`
	GroomAddress   string   `json:"groomAddress,omitempty"`
	BrideName      string   `json:"brideName"`
	BrideFather    string   `json:"brideFather"`
	BrideMother    string   `json:"brideMother"`
	BrideAddress   string   `json:"brideAddress,omitempty"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	LunarDate      string   `json:"lunarDate,omitempty"`
	Location       string   `json:"location"`
	Address        string   `json:"address"`
	Message        string   `json:"message"`
	BankInfo       string   `json:"bankInfo,omitempty"`
	InvitedTitle   string   `json:"invitedTitle,omitempty"`
	AlbumTitle     string   `json:"albumTitle,omitempty"`
	ImageURL       string   `json:"imageUrl"`
	MapURL         string   `json:"mapUrl,omitempty"`
	MapImageURL    string   `json:"mapImageUrl,omitempty"`
	QRCodeURL      string   `json:"qrCodeUrl,omitempty"`
	MusicURL       string   `json:"musicUrl,omitempty"`
	GoogleSheetURL string   `json:"googleSheetUrl,omitempty"`
	CenterImage    string   `json:"centerImage,omitempty"`
	FooterImage    string   `json:"footerImage,omitempty"`
	AlbumImages    []string `json:"albumImages,omitempty"`
	GalleryImages  []string `json:"galleryImages,omitempty"`
	ElementStyles  Styles   `json:"elementStyles,omitempty"`
	Style          Style    `json:"style,omitempty"`
}

func (d *Data) textRef(f Field) *string {
	switch f {
	case GroomName:
		return &d.GroomName
	case GroomFather:
		return &d.GroomFather
	case GroomMother:
		return &d.GroomMother
	case GroomAddress:
		return &d.GroomAddress
	case BrideName:
		return &d.BrideName
	case BrideFather:
		return &d.BrideFather
	case BrideMother:
		return &d.BrideMother
	case BrideAddress:
		return &d.BrideAddress
	case Date:
		return &d.Date
	case Time:
		return &d.Time
	case LunarDate:
		return &d.LunarDate
	case Location:
		return &d.Location
	case Address:
		return &d.Address
	case Message:
		return &d.Message
	case BankInfo:
		return &d.BankInfo
	case InvitedTitle:
		return &d.InvitedTitle
	case AlbumTitle:
		return &d.AlbumTitle
	case MapURL:
		return &d.MapURL
	case GoogleSheetURL:
		return &d.GoogleSheetURL
	case MusicURL:
		return &d.MusicURL
	case MainImage:
		return &d.ImageURL
	case CenterImage:
		return &d.CenterImage
	case FooterImage:
		return &d.FooterImage
	case QRCode:
		return &d.QRCodeURL
	case MapImage:
		return &d.MapImageURL
	}
	return nil
}

// Get returns the stored value for f, or "" for an unset slot.
func (d *Data) Get(f Field) string {
	if p := d.textRef(f); p != nil {
		return *p
	}
	if name, idx, ok := f.slot(); ok {
		arr := d.AlbumImages
		if name == "galleryImages" {
			arr = d.GalleryImages
		}
		if idx < len(arr) {
			return arr[idx]
		}
	}
	return ""
}

// Set writes v under f. Slot writes past the end grow the array with
// empty placeholders.
func (d *Data) Set(f Field, v string) error {
	if p := d.textRef(f); p != nil {
		*p = v
		return nil
	}
	name, idx, ok := f.slot()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, string(f))
	}
	if name == "galleryImages" {
		d.GalleryImages = grow(d.GalleryImages, idx)
		d.GalleryImages[idx] = v
	} else {
		d.AlbumImages = grow(d.AlbumImages, idx)
		d.AlbumImages[idx] = v
	}
	return nil
}

func grow(arr []string, idx int) []string {
	for len(arr) <= idx {
		arr = append(arr, "")
	}
	return arr
}

// FontSize returns the override for f or def when none is stored.
func (d *Data) FontSize(f Field, def int) int {
	if st, ok := d.ElementStyles[f]; ok && st.FontSize > 0 {
		return st.FontSize
	}
	return def
}

func (d *Data) SetFontSize(f Field, size int) {
	if d.ElementStyles == nil {
		d.ElementStyles = make(Styles)
	}
	st := d.ElementStyles[f]
	st.FontSize = size
	d.ElementStyles[f] = st
}

// Clone returns a deep copy.
func (d Data) Clone() Data {
	out := d
	out.AlbumImages = append([]string(nil), d.AlbumImages...)
	out.GalleryImages = append([]string(nil), d.GalleryImages...)
	if d.ElementStyles != nil {
		out.ElementStyles = make(Styles, len(d.ElementStyles))
		for k, v := range d.ElementStyles {
			out.ElementStyles[k] = v
		}
	}
	return out
}

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTime = errors.New("time must be HH:MM")
)

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

func ValidateTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return ErrInvalidTime
	}
	return nil
}

// Validate checks the structured fields. Empty date/time are allowed for drafts.
func (d *Data) Validate() error {
	if d.Date != "" {
		if _, err := ParseDate(d.Date); err != nil {
			return err
		}
	}
	if d.Time != "" {
		if err := ValidateTime(d.Time); err != nil {
			return err
		}
	}
	if d.Style != "" {
		if _, err := ParseStyle(string(d.Style)); err != nil {
			return err
		}
	}
	return nil
}
