package layout

import (
	"fmt"
	"strings"

	"glow/internal/editor"
	"glow/internal/invitation"
	"glow/internal/rsvp"
)

// GuestPlaceholder is shown when no guest name is supplied.
const GuestPlaceholder = "Khách quý"

type Options struct {
	EditMode     bool
	Readonly     bool
	CanEdit      bool
	GuestName    string
	InvitationID string
	SessionID    string
}

func (o Options) editing() bool {
	return o.EditMode && !o.Readonly && o.CanEdit
}

type Block struct {
	Kind   BlockKind
	Region editor.RegionView
	Text   string
	Src    string
	Href   string
	Style  string
	Class  string
}

type Section struct {
	ID         string
	Height     int
	Background string
	Class      string
	Reveal     bool
	Played     bool
	Blocks     []Block
}

type Audio struct {
	Src    string
	Region editor.RegionView
}

type RSVPForm struct {
	Enabled      bool
	InvitationID string
	GuestName    string
	Choices      []rsvp.Attendance
	Webhook      *editor.RegionView
	Style        string
}

type Bank struct {
	Label string
	Style string
	QR    Block
	Info  Block
}

// Page is everything a template needs to draw one invitation.
type Page struct {
	Theme            *Theme
	Title            string
	Greeting         string
	Intro            Intro
	Sections         []Section
	Audio            Audio
	RSVP             RSVPForm
	Bank             Bank
	Editing          bool
	ShowEditorChrome bool
	SessionID        string
	InvitationID     string
}

// Render projects d onto the theme matching its style tag.
func Render(d invitation.Data, opts Options) Page {
	return RenderTheme(ThemeFor(d.Style), d, opts)
}

func RenderTheme(th *Theme, d invitation.Data, opts Options) Page {
	editing := opts.editing()
	guest := invitation.NormalizeName(opts.GuestName)
	greeting := guest
	if greeting == "" {
		greeting = GuestPlaceholder
	}

	p := Page{
		Theme:            th,
		Title:            fmt.Sprintf("%s & %s", orDefault(&d, invitation.GroomName), orDefault(&d, invitation.BrideName)),
		Greeting:         greeting,
		Intro:            th.Intro,
		Editing:          editing,
		ShowEditorChrome: !opts.Readonly,
		SessionID:        opts.SessionID,
		InvitationID:     opts.InvitationID,
	}

	music := d.MusicURL
	if music == "" {
		music = th.DefaultMusic
	}
	p.Audio = Audio{Src: music, Region: editor.View(&d, invitation.MusicURL, "", 0, "", editing)}

	for _, spec := range th.Sections {
		sec := Section{
			ID:         spec.ID,
			Height:     spec.Height,
			Background: spec.Background,
			Class:      spec.Class,
			Reveal:     !spec.Hero,
		}
		for _, bs := range spec.Blocks {
			switch bs.Kind {
			case BlockGallery:
				blocks, height := galleryBlocks(&d, bs, editing)
				sec.Blocks = append(sec.Blocks, blocks...)
				sec.Height = height
			case BlockRSVP:
				p.RSVP = RSVPForm{
					Enabled:      opts.InvitationID != "" && !editing,
					InvitationID: opts.InvitationID,
					GuestName:    guest,
					Choices:      rsvp.Choices(),
					Style:        position(bs.Pos),
				}
				if editing {
					v := editor.View(&d, bs.Field, bs.Label, 0, "", true)
					p.RSVP.Webhook = &v
				}
				sec.Blocks = append(sec.Blocks, Block{Kind: BlockRSVP, Style: position(bs.Pos), Class: bs.Class})
			case BlockMapLink:
				if d.MapURL == "" && !editing {
					continue
				}
				sec.Blocks = append(sec.Blocks, Block{
					Kind:   BlockMapLink,
					Region: editor.View(&d, bs.Field, bs.Label, 0, d.MapURL, editing),
					Text:   bs.Text,
					Href:   d.MapURL,
					Style:  position(bs.Pos),
					Class:  bs.Class,
				})
			default:
				sec.Blocks = append(sec.Blocks, project(&d, bs, greeting, editing))
			}
		}
		if len(sec.Blocks) == 0 {
			continue
		}
		p.Sections = append(p.Sections, sec)
	}

	p.Bank = Bank{
		Label: "Gửi Mừng Cưới",
		Style: position(Rect{Top: 102, Left: 101, Width: 200, Height: 198}),
		QR: project(&d, BlockSpec{Kind: BlockImage, Field: invitation.QRCode, Fallback: th.QRFallback,
			Pos: Rect{Top: 102, Left: 101, Width: 200, Height: 198}}, greeting, editing),
		Info: project(&d, BlockSpec{Kind: BlockText, Field: invitation.BankInfo, Font: 17,
			Pos: Rect{Top: 323, Left: 22, Width: 356}}, greeting, editing),
	}
	return p
}

func project(d *invitation.Data, bs BlockSpec, greeting string, editing bool) Block {
	b := Block{Kind: bs.Kind, Class: bs.Class}
	switch bs.Kind {
	case BlockHeading:
		b.Text = bs.Text
		b.Style = position(bs.Pos) + fontSize(bs.Font)
	case BlockGreeting:
		b.Text = greeting
		b.Style = position(bs.Pos) + fontSize(bs.Font)
	case BlockBank:
		b.Text = bs.Text
		b.Style = position(bs.Pos)
	case BlockImage:
		href := ""
		if bs.Field == invitation.MapImage {
			href = d.MapURL
		}
		b.Region = editor.View(d, bs.Field, bs.Label, 0, href, editing)
		b.Src = b.Region.Value
		if b.Src == "" {
			b.Src = bs.Fallback
		}
		b.Href = b.Region.Href
		b.Style = position(bs.Pos)
		if bs.Border != "" {
			b.Style += "border:" + bs.Border + ";"
		}
	default:
		b.Region = editor.View(d, bs.Field, bs.Label, bs.Font, "", editing)
		b.Text = display(d, bs)
		b.Style = position(bs.Pos) + fontSize(b.Region.FontSize)
	}
	return b
}

func galleryBlocks(d *invitation.Data, bs BlockSpec, editing bool) ([]Block, int) {
	n := len(d.GalleryImages)
	if editing && n < invitation.MaxGallerySlots {
		n++
	}
	if n == 0 {
		return nil, 0
	}
	const cols, gap = 3, 8
	var out []Block
	for i := 0; i < n; i++ {
		pos := bs.Pos
		pos.Left += (i % cols) * (bs.Pos.Width + gap)
		pos.Top += (i / cols) * (bs.Pos.Height + gap)
		out = append(out, project(d, BlockSpec{
			Kind:     BlockImage,
			Field:    invitation.GalleryImage(i),
			Pos:      pos,
			Fallback: bs.Fallback,
			Class:    bs.Class,
		}, "", editing))
	}
	rows := (n + cols - 1) / cols
	return out, 2*bs.Pos.Top + rows*bs.Pos.Height + (rows-1)*gap
}

var fallbacks = invitation.Default()

func orDefault(d *invitation.Data, f invitation.Field) string {
	if v := d.Get(f); v != "" {
		return v
	}
	switch f {
	case invitation.GroomName, invitation.BrideName, invitation.InvitedTitle, invitation.AlbumTitle:
		return fallbacks.Get(f)
	}
	return ""
}

func display(d *invitation.Data, bs BlockSpec) string {
	switch bs.Format {
	case FormatCouple:
		return orDefault(d, invitation.GroomName) + " & " + orDefault(d, invitation.BrideName)
	case FormatDay, FormatMonth:
		t, err := invitation.ParseDate(d.Date)
		if err != nil {
			return ""
		}
		if bs.Format == FormatDay {
			return fmt.Sprint(t.Day())
		}
		return fmt.Sprint(int(t.Month()))
	case FormatHour:
		return strings.Replace(d.Time, ":", " giờ ", 1)
	}
	return orDefault(d, bs.Field)
}

func position(r Rect) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "top:%dpx;", r.Top)
	if r.FullWidth {
		sb.WriteString("left:0;width:100%;text-align:center;")
	} else {
		fmt.Fprintf(&sb, "left:%dpx;", r.Left)
		if r.Width > 0 {
			fmt.Fprintf(&sb, "width:%dpx;", r.Width)
		}
	}
	if r.Height > 0 {
		fmt.Fprintf(&sb, "height:%dpx;", r.Height)
	}
	return sb.String()
}

func fontSize(px int) string {
	if px <= 0 {
		return ""
	}
	return fmt.Sprintf("font-size:%dpx;", px)
}
