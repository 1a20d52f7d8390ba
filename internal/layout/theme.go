// Package layout projects an invitation record onto a themed, sectioned page.
// Both templates share one engine; a Theme only describes colors, fonts, the
// intro animation and where each block sits.
package layout

import (
	"time"

	"glow/internal/invitation"
)

type IntroVariant string

const (
	// IntroGate slides two panels apart behind a round seal.
	IntroGate IntroVariant = "gate"
	// IntroCurtain slides a pair of curtains out to the sides.
	IntroCurtain IntroVariant = "curtain"
)

type Intro struct {
	Variant    IntroVariant
	Delay      time.Duration
	Duration   time.Duration
	Seal       string
	PanelColor string
	LeftImage  string
	RightImage string
}

type Palette struct {
	Primary    string
	Accent     string
	Ink        string
	Background string
}

type Fonts struct {
	Display string
	Script  string
	Body    string
}

// Rect is an absolute position inside a section, in CSS pixels. A zero
// Left with FullWidth centers the block across the section.
type Rect struct {
	Top       int
	Left      int
	Width     int
	Height    int
	FullWidth bool
}

type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockImage    BlockKind = "image"
	BlockHeading  BlockKind = "heading"
	BlockGreeting BlockKind = "greeting"
	BlockRSVP     BlockKind = "rsvp"
	BlockBank     BlockKind = "bank"
	BlockMapLink  BlockKind = "map"
	BlockGallery  BlockKind = "gallery"
)

// Format picks how a field value is turned into display text.
type Format int

const (
	FormatValue Format = iota
	FormatCouple
	FormatDay
	FormatMonth
	FormatHour
)

type BlockSpec struct {
	Kind     BlockKind
	Field    invitation.Field
	Label    string
	Font     int
	Pos      Rect
	Text     string
	Fallback string
	Class    string
	Format   Format
	Border   string
}

type SectionSpec struct {
	ID         string
	Height     int
	Background string
	Class      string
	Hero       bool
	Blocks     []BlockSpec
}

type Theme struct {
	Style        invitation.Style
	Name         string
	Palette      Palette
	Fonts        Fonts
	Intro        Intro
	DefaultMusic string
	QRFallback   string
	Sections     []SectionSpec
}

const (
	paperBG       = "https://content.pancake.vn/1/s840x1600/fwebp/fd/42/7d/0c/1ca1e8525f99e3105eb930cd8ed684a64b07a0d9df7e0c725ca9779c-w:1260-h:2400-l:65030-t:image/png.png"
	defaultMusic  = "https://statics.pancake.vn/web-media/5e/ee/bf/4a/afa10d3bdf98ca17ec3191ebbfd3c829d135d06939ee1f1b712d731d-w:0-h:0-l:2938934-t:audio/mpeg.mp3"
	fallbackMain  = "https://statics.pancake.vn/web-media/ab/56/c3/d2/ae46af903d624877e4e71b00dc5ab4badaa10a8956d3c389ccbc73e9-w:1080-h:1620-l:151635-t:image/jpeg.jpeg"
	fallbackMid   = "https://statics.pancake.vn/web-media/e2/8c/c5/37/905dccbcd5bc1c1b602c10c95acb9986765f735e075bff1097e7f457-w:736-h:981-l:47868-t:image/jpeg.jfif"
	fallbackFoot  = "https://statics.pancake.vn/web-media/ad/c0/11/16/06080e040619cef49e87d7e06a574eb61310d3dc4bdc9f0fec3638c9-w:854-h:1280-l:259362-t:image/jpeg.png"
	fallbackAlbum = "https://images.unsplash.com/photo-1519741497674-611481863552?q=80&w=600&auto=format&fit=crop"
	fallbackGal   = "https://images.unsplash.com/photo-1532712938310-34cb3982ef74?q=80&w=600&auto=format&fit=crop"
	fallbackQR    = "https://images.unsplash.com/photo-1606800052052-a08af7148866?q=80&w=1080&auto=format&fit=crop"
	fallbackMap   = "https://images.unsplash.com/photo-1524661135-423995f22d0b?q=80&w=800&auto=format&fit=crop"
)

// RedGold is the traditional red and gold layout with a double-happiness gate.
var RedGold = Theme{
	Style:   invitation.StyleRedGold,
	Name:    "Mẫu Đỏ Truyền Thống",
	Palette: Palette{Primary: "#8e0101", Accent: "#bfa060", Ink: "#1f2937", Background: "#fdf6ec"},
	Fonts:   Fonts{Display: "SVN-Sloop, serif", Script: "Ephesis, cursive", Body: "Roboto, Arial, sans-serif"},
	Intro: Intro{
		Variant:    IntroGate,
		Delay:      500 * time.Millisecond,
		Duration:   1500 * time.Millisecond,
		Seal:       "囍",
		PanelColor: "#8e0101",
	},
	DefaultMusic: defaultMusic,
	QRFallback:   fallbackQR,
	Sections: []SectionSpec{
		{ID: "hero", Height: 800, Background: paperBG, Hero: true, Blocks: []BlockSpec{
			{Kind: BlockHeading, Text: "THIỆP MỜI", Pos: Rect{Top: 41, Left: 83, Width: 254}, Class: "caps"},
			{Kind: BlockText, Field: invitation.GroomName, Label: "Tên Hiển Thị", Font: 30, Format: FormatCouple, Pos: Rect{Top: 80, FullWidth: true}, Class: "display"},
			{Kind: BlockImage, Field: invitation.MainImage, Pos: Rect{Top: 286, Left: 85, Width: 249, Height: 373}, Fallback: fallbackMain, Border: "7px solid #8e0101"},
			{Kind: BlockGreeting, Font: 32, Pos: Rect{Top: 731, FullWidth: true}, Class: "script"},
		}},
		{ID: "couple", Height: 714, Background: paperBG, Blocks: []BlockSpec{
			{Kind: BlockText, Field: invitation.GroomName, Label: "Tên Chú Rể", Font: 40, Pos: Rect{Top: 273, FullWidth: true}, Class: "display"},
			{Kind: BlockText, Field: invitation.BrideName, Label: "Tên Cô Dâu", Font: 40, Pos: Rect{Top: 355, FullWidth: true}, Class: "display"},
			{Kind: BlockImage, Field: invitation.CenterImage, Pos: Rect{Top: 424, Left: 33, Width: 354, Height: 269}, Fallback: fallbackMid, Border: "7px solid #8e0101"},
		}},
		{ID: "families", Height: 420, Background: paperBG, Blocks: []BlockSpec{
			{Kind: BlockHeading, Text: "NHÀ TRAI", Pos: Rect{Top: 40, Left: 20, Width: 180}, Class: "caps"},
			{Kind: BlockText, Field: invitation.GroomFather, Font: 16, Pos: Rect{Top: 80, Left: 20, Width: 180}},
			{Kind: BlockText, Field: invitation.GroomMother, Font: 16, Pos: Rect{Top: 110, Left: 20, Width: 180}},
			{Kind: BlockText, Field: invitation.GroomAddress, Font: 13, Pos: Rect{Top: 145, Left: 20, Width: 180}},
			{Kind: BlockHeading, Text: "NHÀ GÁI", Pos: Rect{Top: 40, Left: 220, Width: 180}, Class: "caps"},
			{Kind: BlockText, Field: invitation.BrideFather, Font: 16, Pos: Rect{Top: 80, Left: 220, Width: 180}},
			{Kind: BlockText, Field: invitation.BrideMother, Font: 16, Pos: Rect{Top: 110, Left: 220, Width: 180}},
			{Kind: BlockText, Field: invitation.BrideAddress, Font: 13, Pos: Rect{Top: 145, Left: 220, Width: 180}},
			{Kind: BlockText, Field: invitation.Message, Font: 16, Pos: Rect{Top: 240, Left: 30, Width: 360}, Class: "italic"},
		}},
		{ID: "invite", Height: 850, Background: paperBG, Blocks: []BlockSpec{
			{Kind: BlockText, Field: invitation.InvitedTitle, Label: "Tiêu đề mời", Font: 42, Pos: Rect{Top: 40, FullWidth: true}, Class: "script"},
			{Kind: BlockText, Field: invitation.Time, Label: "Giờ", Font: 22, Format: FormatHour, Pos: Rect{Top: 130, FullWidth: true}},
			{Kind: BlockText, Field: invitation.Date, Label: "Ngày", Font: 48, Format: FormatDay, Pos: Rect{Top: 170, FullWidth: true}, Class: "numeral"},
			{Kind: BlockText, Field: invitation.LunarDate, Font: 14, Pos: Rect{Top: 240, FullWidth: true}, Class: "italic"},
			{Kind: BlockText, Field: invitation.Location, Font: 20, Pos: Rect{Top: 290, FullWidth: true}, Class: "strong"},
			{Kind: BlockText, Field: invitation.Address, Font: 14, Pos: Rect{Top: 330, Left: 40, Width: 340}},
			{Kind: BlockImage, Field: invitation.MapImage, Pos: Rect{Top: 400, Left: 35, Width: 350, Height: 350}, Fallback: fallbackMap, Border: "4px solid #bfa060"},
			{Kind: BlockMapLink, Field: invitation.MapURL, Text: "Xem bản đồ", Pos: Rect{Top: 770, FullWidth: true}},
		}},
		{ID: "album", Height: 680, Background: paperBG, Blocks: []BlockSpec{
			{Kind: BlockText, Field: invitation.AlbumTitle, Label: "Tiêu đề Album", Font: 36, Pos: Rect{Top: 10, FullWidth: true}, Class: "script"},
			{Kind: BlockImage, Field: invitation.AlbumImage(0), Pos: Rect{Top: 70, Left: 21, Width: 179, Height: 268}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(1), Pos: Rect{Top: 70, Left: 220, Width: 179, Height: 268}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(2), Pos: Rect{Top: 358, Left: 21, Width: 179, Height: 268}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(3), Pos: Rect{Top: 358, Left: 220, Width: 179, Height: 116}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(4), Pos: Rect{Top: 510, Left: 220, Width: 179, Height: 116}, Fallback: fallbackAlbum},
		}},
		{ID: "rsvp", Height: 522, Background: paperBG, Blocks: []BlockSpec{
			{Kind: BlockHeading, Text: "Xác Nhận Tham Dự & Gửi Lời Chúc", Font: 30, Pos: Rect{Top: 14, FullWidth: true}, Class: "script"},
			{Kind: BlockRSVP, Field: invitation.GoogleSheetURL, Label: "Link Google Sheet Script", Pos: Rect{Top: 124, Left: 45, Width: 330, Height: 312}},
			{Kind: BlockBank, Text: "GỬI MỪNG CƯỚI", Pos: Rect{Top: 456, Left: 113, Width: 194, Height: 40}},
		}},
		{ID: "footer", Height: 630, Blocks: []BlockSpec{
			{Kind: BlockImage, Field: invitation.FooterImage, Pos: Rect{Top: 0, Left: 0, Width: 420, Height: 630}, Fallback: fallbackFoot},
			{Kind: BlockHeading, Text: "Rất hân hạnh được đón tiếp!", Font: 38, Pos: Rect{Top: 427, FullWidth: true}, Class: "banner"},
		}},
	},
}

// Personalized is the lighter layout with a curtain intro and a gallery.
var Personalized = Theme{
	Style:   invitation.StylePersonalized,
	Name:    "Thiệp dùng tên riêng",
	Palette: Palette{Primary: "#e11d48", Accent: "#fda4af", Ink: "#1f2937", Background: "#fffbeb"},
	Fonts:   Fonts{Display: "SVN-Sloop, serif", Script: "Ephesis, cursive", Body: "Inter, Arial, sans-serif"},
	Intro: Intro{
		Variant:    IntroCurtain,
		Delay:      800 * time.Millisecond,
		Duration:   2500 * time.Millisecond,
		LeftImage:  "https://statics.pancake.vn/web-media/0e/6c/18/fb/44e9347bb12368a07e646ad45939e6086fc1ce3b2b39c28663352c01-w:1260-h:2400-l:1296984-t:image/png.png",
		RightImage: "https://statics.pancake.vn/web-media/fb/1a/3d/db/5397c85e01e68520b6e686acfb8f4b71fc813f563e456d159b222a3c-w:1260-h:2400-l:1301050-t:image/png.png",
	},
	DefaultMusic: defaultMusic,
	QRFallback:   fallbackQR,
	Sections: []SectionSpec{
		{ID: "hero", Height: 800, Background: paperBG, Hero: true, Blocks: []BlockSpec{
			{Kind: BlockGreeting, Font: 22, Pos: Rect{Top: 30, FullWidth: true}, Class: "script"},
			{Kind: BlockText, Field: invitation.GroomName, Label: "Tên Dâu Rể", Font: 30, Format: FormatCouple, Pos: Rect{Top: 80, FullWidth: true}, Class: "display"},
			{Kind: BlockImage, Field: invitation.MainImage, Pos: Rect{Top: 286, Left: 85, Width: 249, Height: 373}, Fallback: fallbackMain, Border: "5px solid #fff"},
			{Kind: BlockHeading, Text: "Save The Date", Font: 32, Pos: Rect{Top: 730, FullWidth: true}, Class: "script"},
		}},
		{ID: "families", Height: 600, Class: "warm", Blocks: []BlockSpec{
			{Kind: BlockHeading, Text: "Gia Đình Hai Bên", Font: 36, Pos: Rect{Top: 30, FullWidth: true}, Class: "script"},
			{Kind: BlockHeading, Text: "NHÀ TRAI", Pos: Rect{Top: 100, FullWidth: true}, Class: "caps"},
			{Kind: BlockText, Field: invitation.GroomFather, Font: 18, Pos: Rect{Top: 130, FullWidth: true}},
			{Kind: BlockText, Field: invitation.GroomMother, Font: 18, Pos: Rect{Top: 160, FullWidth: true}},
			{Kind: BlockText, Field: invitation.GroomName, Label: "Tên Chú Rể", Font: 36, Pos: Rect{Top: 200, FullWidth: true}, Class: "display"},
			{Kind: BlockHeading, Text: "Quý nam", Font: 12, Pos: Rect{Top: 255, FullWidth: true}},
			{Kind: BlockHeading, Text: "NHÀ GÁI", Pos: Rect{Top: 320, FullWidth: true}, Class: "caps"},
			{Kind: BlockText, Field: invitation.BrideFather, Font: 18, Pos: Rect{Top: 350, FullWidth: true}},
			{Kind: BlockText, Field: invitation.BrideMother, Font: 18, Pos: Rect{Top: 380, FullWidth: true}},
			{Kind: BlockText, Field: invitation.BrideName, Label: "Tên Cô Dâu", Font: 36, Pos: Rect{Top: 420, FullWidth: true}, Class: "display"},
			{Kind: BlockHeading, Text: "Ái nữ", Font: 12, Pos: Rect{Top: 475, FullWidth: true}},
			{Kind: BlockText, Field: invitation.Message, Font: 15, Pos: Rect{Top: 520, Left: 30, Width: 360}, Class: "italic"},
		}},
		{ID: "calendar", Height: 620, Blocks: []BlockSpec{
			{Kind: BlockText, Field: invitation.InvitedTitle, Label: "Tiêu đề mời", Font: 36, Pos: Rect{Top: 40, FullWidth: true}, Class: "script"},
			{Kind: BlockHeading, Text: "Đến dự buổi tiệc chung vui cùng gia đình chúng tôi tại:", Font: 15, Pos: Rect{Top: 100, Left: 30, Width: 360}, Class: "italic"},
			{Kind: BlockText, Field: invitation.Location, Font: 20, Pos: Rect{Top: 160, FullWidth: true}, Class: "strong"},
			{Kind: BlockText, Field: invitation.Address, Font: 14, Pos: Rect{Top: 200, Left: 40, Width: 340}},
			{Kind: BlockText, Field: invitation.Date, Label: "Ngày", Font: 36, Format: FormatDay, Pos: Rect{Top: 270, Left: 70, Width: 80}, Class: "numeral"},
			{Kind: BlockText, Field: invitation.Date, Label: "Tháng", Font: 36, Format: FormatMonth, Pos: Rect{Top: 270, Left: 170, Width: 80}, Class: "numeral"},
			{Kind: BlockText, Field: invitation.Time, Label: "Giờ", Font: 36, Pos: Rect{Top: 270, Left: 270, Width: 100}, Class: "numeral"},
			{Kind: BlockText, Field: invitation.LunarDate, Font: 14, Pos: Rect{Top: 350, FullWidth: true}, Class: "italic"},
			{Kind: BlockImage, Field: invitation.MapImage, Pos: Rect{Top: 390, Left: 60, Width: 300, Height: 150}, Fallback: fallbackMap},
			{Kind: BlockMapLink, Field: invitation.MapURL, Text: "Xem bản đồ", Pos: Rect{Top: 560, FullWidth: true}},
		}},
		{ID: "album", Height: 880, Class: "dark", Blocks: []BlockSpec{
			{Kind: BlockText, Field: invitation.AlbumTitle, Label: "Tiêu đề Album", Font: 36, Pos: Rect{Top: 30, FullWidth: true}, Class: "script"},
			{Kind: BlockImage, Field: invitation.AlbumImage(0), Pos: Rect{Top: 100, Left: 16, Width: 190, Height: 200}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(1), Pos: Rect{Top: 100, Left: 214, Width: 190, Height: 200}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(2), Pos: Rect{Top: 308, Left: 16, Width: 388, Height: 250}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(3), Pos: Rect{Top: 566, Left: 16, Width: 190, Height: 200}, Fallback: fallbackAlbum},
			{Kind: BlockImage, Field: invitation.AlbumImage(4), Pos: Rect{Top: 566, Left: 214, Width: 190, Height: 200}, Fallback: fallbackAlbum},
		}},
		{ID: "gallery", Class: "dark", Blocks: []BlockSpec{
			{Kind: BlockGallery, Pos: Rect{Top: 20, Left: 12, Width: 128, Height: 298}, Fallback: fallbackGal},
		}},
		{ID: "rsvp", Height: 620, Class: "warm", Blocks: []BlockSpec{
			{Kind: BlockHeading, Text: "Gửi Lời Chúc & RSVP", Font: 36, Pos: Rect{Top: 30, FullWidth: true}, Class: "script"},
			{Kind: BlockRSVP, Field: invitation.GoogleSheetURL, Label: "Link Google Sheet Script", Pos: Rect{Top: 100, Left: 24, Width: 372, Height: 380}},
			{Kind: BlockBank, Text: "Xem Mã QR & Số Tài Khoản", Pos: Rect{Top: 520, Left: 60, Width: 300, Height: 44}},
		}},
		{ID: "footer", Height: 400, Blocks: []BlockSpec{
			{Kind: BlockImage, Field: invitation.FooterImage, Pos: Rect{Top: 0, Left: 0, Width: 420, Height: 400}, Fallback: fallbackFoot, Class: "dim"},
			{Kind: BlockHeading, Text: "Thank You", Font: 48, Pos: Rect{Top: 140, FullWidth: true}, Class: "script light"},
			{Kind: BlockHeading, Text: "Sự hiện diện của quý khách là niềm vinh hạnh của chúng tôi.", Font: 18, Pos: Rect{Top: 220, Left: 30, Width: 360}, Class: "light"},
		}},
	},
}

// ThemeFor returns the layout for a style tag. Styles without a dedicated
// layout use RedGold.
func ThemeFor(s invitation.Style) *Theme {
	if s == invitation.StylePersonalized {
		return &Personalized
	}
	return &RedGold
}
