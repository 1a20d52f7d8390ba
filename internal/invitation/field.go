package invitation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Field is the identifier shared by data storage, style overrides and the
// field editor. The string value is the key used everywhere.
type Field string

type Kind int

const (
	KindText Kind = iota
	KindDate
	KindTime
	KindLink
	KindImage
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindLink:
		return "link"
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	default:
		return "text"
	}
}

const (
	GroomName      Field = "groomName"
	GroomFather    Field = "groomFather"
	GroomMother    Field = "groomMother"
	GroomAddress   Field = "groomAddress"
	BrideName      Field = "brideName"
	BrideFather    Field = "brideFather"
	BrideMother    Field = "brideMother"
	BrideAddress   Field = "brideAddress"
	Date           Field = "date"
	Time           Field = "time"
	LunarDate      Field = "lunarDate"
	Location       Field = "location"
	Address        Field = "address"
	Message        Field = "message"
	BankInfo       Field = "bankInfo"
	InvitedTitle   Field = "invitedTitle"
	AlbumTitle     Field = "albumTitle"
	MapURL         Field = "mapUrl"
	GoogleSheetURL Field = "googleSheetUrl"
	MusicURL       Field = "musicUrl"
	MainImage      Field = "mainImage"
	CenterImage    Field = "centerImage"
	FooterImage    Field = "footerImage"
	QRCode         Field = "qrCode"
	MapImage       Field = "mapImage"

	albumPrefix   = "albumImages-"
	galleryPrefix = "galleryImages-"
)

const (
	// AlbumSlots is the fixed size of the album.
	AlbumSlots = 5
	// MaxGallerySlots bounds how far a gallery write may grow the array.
	MaxGallerySlots = 64
)

var ErrUnknownField = errors.New("unknown field")

type fieldInfo struct {
	kind  Kind
	label string
}

var known = map[Field]fieldInfo{
	GroomName:      {KindText, "Tên Chú Rể"},
	GroomFather:    {KindText, "Tên Bố Chú Rể"},
	GroomMother:    {KindText, "Tên Mẹ Chú Rể"},
	GroomAddress:   {KindText, "Địa Chỉ Nhà Trai"},
	BrideName:      {KindText, "Tên Cô Dâu"},
	BrideFather:    {KindText, "Tên Bố Cô Dâu"},
	BrideMother:    {KindText, "Tên Mẹ Cô Dâu"},
	BrideAddress:   {KindText, "Địa Chỉ Nhà Gái"},
	Date:           {KindDate, "Ngày"},
	Time:           {KindTime, "Giờ"},
	LunarDate:      {KindText, "Ngày Âm Lịch"},
	Location:       {KindText, "Địa Điểm"},
	Address:        {KindText, "Địa Chỉ"},
	Message:        {KindText, "Lời Nhắn"},
	BankInfo:       {KindText, "Thông Tin Ngân Hàng"},
	InvitedTitle:   {KindText, "Tiêu đề mời"},
	AlbumTitle:     {KindText, "Tiêu đề Album"},
	MapURL:         {KindLink, "Link Google Maps"},
	GoogleSheetURL: {KindLink, "Link Google Sheet Script"},
	MusicURL:       {KindAudio, "Nhạc Nền"},
	MainImage:      {KindImage, "Ảnh Chính"},
	CenterImage:    {KindImage, "Ảnh Giữa"},
	FooterImage:    {KindImage, "Ảnh Cuối"},
	QRCode:         {KindImage, "Mã QR"},
	MapImage:       {KindImage, "Ảnh Bản Đồ"},
}

// AlbumImage returns the field for album slot i.
func AlbumImage(i int) Field { return Field(albumPrefix + strconv.Itoa(i)) }

// GalleryImage returns the field for gallery slot i.
func GalleryImage(i int) Field { return Field(galleryPrefix + strconv.Itoa(i)) }

// ParseField validates a free-form key at the boundary.
func ParseField(key string) (Field, error) {
	f := Field(strings.TrimSpace(key))
	if _, ok := known[f]; ok {
		return f, nil
	}
	if _, _, ok := f.slot(); ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
}

// slot splits album/gallery keys into their array name and index.
func (f Field) slot() (string, int, bool) {
	s := string(f)
	var prefix string
	var limit int
	switch {
	case strings.HasPrefix(s, albumPrefix):
		prefix, limit = albumPrefix, AlbumSlots
	case strings.HasPrefix(s, galleryPrefix):
		prefix, limit = galleryPrefix, MaxGallerySlots
	default:
		return "", 0, false
	}
	raw := s[len(prefix):]
	if raw == "" || (len(raw) > 1 && raw[0] == '0') {
		return "", 0, false
	}
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 || idx >= limit {
		return "", 0, false
	}
	return strings.TrimSuffix(prefix, "-"), idx, true
}

func (f Field) Kind() Kind {
	if info, ok := known[f]; ok {
		return info.kind
	}
	if _, _, ok := f.slot(); ok {
		return KindImage
	}
	return KindText
}

func (f Field) IsText() bool {
	k := f.Kind()
	return k != KindImage && k != KindAudio
}

// ShowsFontControl is false for fields whose value is never rendered as text.
func (f Field) ShowsFontControl() bool {
	k := f.Kind()
	return k != KindLink && k != KindImage && k != KindAudio
}

func (f Field) Label() string {
	if info, ok := known[f]; ok {
		return info.label
	}
	if name, idx, ok := f.slot(); ok {
		if name == "albumImages" {
			return fmt.Sprintf("Ảnh Album %d", idx+1)
		}
		return fmt.Sprintf("Ảnh Gallery %d", idx+1)
	}
	return string(f)
}

// Aspect returns the required crop ratio (width / height) for image fields.
func (f Field) Aspect() float64 {
	switch f {
	case MainImage:
		return 249.0 / 373.0
	case CenterImage:
		return 354.0 / 269.0
	case FooterImage:
		return 397.0 / 155.0
	case QRCode:
		return 1
	}
	if name, idx, ok := f.slot(); ok {
		if name == "galleryImages" {
			return 9.0 / 21.0
		}
		if idx <= 2 {
			return 179.0 / 268.0
		}
		return 179.0 / 116.0
	}
	return 1
}
