package layout

import (
	"bytes"
	"strings"
	"testing"

	"glow"
	"glow/internal/editor"
	"glow/internal/invitation"
)

func findBlock(p Page, section string, field invitation.Field) (Block, bool) {
	for _, s := range p.Sections {
		if s.ID != section {
			continue
		}
		for _, b := range s.Blocks {
			if b.Region.Field == field {
				return b, true
			}
		}
	}
	return Block{}, false
}

func TestGuestViewIsReadonlyAndPersonalized(t *testing.T) {
	d := invitation.Default()
	p := Render(d, Options{Readonly: true, CanEdit: true, EditMode: true, GuestName: "Lan", InvitationID: "abc123"})

	if p.Greeting != "Lan" {
		t.Fatalf("greeting = %q", p.Greeting)
	}
	if p.ShowEditorChrome || p.Editing {
		t.Fatal("readonly page shows editor chrome")
	}
	if !p.RSVP.Enabled || p.RSVP.InvitationID != "abc123" || p.RSVP.Webhook != nil {
		t.Fatalf("rsvp = %+v", p.RSVP)
	}
	for _, s := range p.Sections {
		for _, b := range s.Blocks {
			if b.Region.Editable {
				t.Fatalf("editable block %s in readonly page", b.Region.Field)
			}
		}
	}
	if p.Theme != &RedGold || p.Intro.Variant != IntroGate {
		t.Fatal("red-gold record should use the gate layout")
	}
}

func TestGreetingPlaceholder(t *testing.T) {
	p := Render(invitation.Default(), Options{Readonly: true})
	if p.Greeting != GuestPlaceholder {
		t.Fatalf("greeting = %q", p.Greeting)
	}
	if p.RSVP.Enabled {
		t.Fatal("rsvp needs an invitation id")
	}
}

func TestFontOverrideAppliedVerbatim(t *testing.T) {
	d := invitation.Default()
	d.ElementStyles = nil

	p := Render(d, Options{})
	b, ok := findBlock(p, "couple", invitation.GroomName)
	if !ok || b.Region.FontSize != 40 || !strings.Contains(b.Style, "font-size:40px") {
		t.Fatalf("default font block = %+v", b)
	}

	d.SetFontSize(invitation.GroomName, 52)
	p = Render(d, Options{})
	b, _ = findBlock(p, "couple", invitation.GroomName)
	if b.Region.FontSize != 52 || !strings.Contains(b.Style, "font-size:52px") {
		t.Fatalf("override font block = %+v", b)
	}
}

func TestEditingAffordances(t *testing.T) {
	d := invitation.Default()
	p := Render(d, Options{EditMode: true, CanEdit: true, SessionID: "s1"})
	if !p.Editing || !p.ShowEditorChrome {
		t.Fatal("editing page should show chrome")
	}
	b, ok := findBlock(p, "hero", invitation.MainImage)
	if !ok || b.Region.Action != editor.ActionCrop || !b.Region.Outline {
		t.Fatalf("main image = %+v", b)
	}
	if p.RSVP.Webhook == nil || p.RSVP.Webhook.Field != invitation.GoogleSheetURL {
		t.Fatal("webhook editor missing")
	}
	if p.RSVP.Enabled {
		t.Fatal("rsvp submit should be off while editing")
	}

	// role without edit rights never gets affordances
	p = Render(d, Options{EditMode: true, CanEdit: false})
	if b, _ := findBlock(p, "hero", invitation.MainImage); b.Region.Editable {
		t.Fatal("user role got an editable region")
	}
}

func TestMapImageNavigatesOutsideEditMode(t *testing.T) {
	d := invitation.Default()
	d.MapURL = "https://maps.example/venue"
	p := Render(d, Options{Readonly: true})
	b, ok := findBlock(p, "invite", invitation.MapImage)
	if !ok || b.Href != d.MapURL || b.Region.Action != editor.ActionNavigate {
		t.Fatalf("map image = %+v", b)
	}
}

func TestPersonalizedGallery(t *testing.T) {
	d := invitation.Default()
	d.Style = invitation.StylePersonalized
	d.GalleryImages = []string{"https://a", "https://b", "https://c", "https://d"}

	p := Render(d, Options{Readonly: true})
	if p.Theme != &Personalized || p.Intro.Variant != IntroCurtain {
		t.Fatal("personalized record should use the curtain layout")
	}
	var gallery *Section
	for i := range p.Sections {
		if p.Sections[i].ID == "gallery" {
			gallery = &p.Sections[i]
		}
	}
	if gallery == nil || len(gallery.Blocks) != 4 || gallery.Height <= 0 {
		t.Fatalf("gallery = %+v", gallery)
	}

	p = Render(d, Options{EditMode: true, CanEdit: true})
	for _, s := range p.Sections {
		if s.ID == "gallery" && len(s.Blocks) != 5 {
			t.Fatalf("editing gallery has %d slots, want 5", len(s.Blocks))
		}
	}

	d.GalleryImages = nil
	p = Render(d, Options{Readonly: true})
	for _, s := range p.Sections {
		if s.ID == "gallery" {
			t.Fatal("empty gallery should be dropped")
		}
	}
}

func TestRevealOnce(t *testing.T) {
	p := Render(invitation.Default(), Options{})
	if p.Sections[0].Reveal {
		t.Fatal("hero should not be tracked")
	}
	tr := NewRevealTracker(p)
	if tr.Enter("hero") {
		t.Fatal("hero revealed")
	}
	if !tr.Enter("couple") {
		t.Fatal("first entry should reveal")
	}
	if tr.Enter("couple") || !tr.Played("couple") {
		t.Fatal("second entry replayed")
	}

	again := Render(invitation.Default(), Options{})
	tr.Apply(&again)
	for _, s := range again.Sections {
		if s.Played != (s.ID == "couple") {
			t.Fatalf("section %s played = %v", s.ID, s.Played)
		}
	}
}

func TestHTML(t *testing.T) {
	r, err := NewRenderer(glow.WebAssets)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	d := invitation.Default()
	d.ImageURL = "data:image/jpeg;base64,AAAA"

	var buf bytes.Buffer
	if err := r.HTML(&buf, Render(d, Options{Readonly: true, GuestName: "Lan", InvitationID: "abc123"})); err != nil {
		t.Fatalf("HTML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Lan", "data:image/jpeg;base64,AAAA", "囍", `data-invitation="abc123"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	for _, banned := range []string{`id="edit-toggle"`, `id="save-status"`, "ZgotmplZ"} {
		if strings.Contains(out, banned) {
			t.Fatalf("readonly page contains %q", banned)
		}
	}

	buf.Reset()
	if err := r.HTML(&buf, Render(d, Options{EditMode: true, CanEdit: true, SessionID: "s1"})); err != nil {
		t.Fatalf("HTML edit: %v", err)
	}
	if !strings.Contains(buf.String(), `id="save-status"`) || !strings.Contains(buf.String(), `data-action="crop"`) {
		t.Fatal("edit page lacks editor chrome")
	}
}

func TestAutoplayWaitsForOpening(t *testing.T) {
	r, err := NewRenderer(glow.WebAssets)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.HTML(&buf, Render(invitation.Default(), Options{Readonly: true})); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	start := strings.Index(out, "setTimeout(function () {")
	end := strings.Index(out, "}, Number(intro.dataset.delay))")
	if start < 0 || end < start {
		t.Fatal("opening timer not found")
	}
	if opening := out[start:end]; !strings.Contains(opening, `intro.classList.add("open")`) || !strings.Contains(opening, "autoplay()") {
		t.Fatalf("opening callback does not start the music: %s", opening)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "  music.play()") || strings.HasPrefix(line, "  autoplay()") {
			t.Fatalf("music starts before the opening: %q", line)
		}
	}
}
