package editor

import (
	"errors"
	"testing"
	"time"

	"glow/internal/auth"
	"glow/internal/invitation"
)

func editing(t *testing.T) *Session {
	t.Helper()
	s := NewSession("s1", "u1", "u1@example.com", invitation.Default(), auth.CapabilitiesFor(auth.RoleEditor))
	if err := s.SetEditMode(true); err != nil {
		t.Fatalf("SetEditMode: %v", err)
	}
	return s
}

func TestRegionAffordances(t *testing.T) {
	s := NewSession("s1", "u1", "", invitation.Default(), auth.CapabilitiesFor(auth.RoleEditor))

	v := s.Region(invitation.MapImage, "", 14, "https://maps.example/x")
	if v.Editable || v.Outline || v.Action != ActionNavigate || v.Href == "" {
		t.Fatalf("view mode with href should navigate: %+v", v)
	}
	if v := s.Region(invitation.GroomName, "", 30, ""); v.Action != ActionNone || v.Badge != BadgeNone {
		t.Fatalf("plain region: %+v", v)
	}

	if err := s.SetEditMode(true); err != nil {
		t.Fatal(err)
	}
	v = s.Region(invitation.MapImage, "", 14, "https://maps.example/x")
	if !v.Editable || !v.Outline || v.Action != ActionCrop || v.Badge != BadgeUpload || v.Href != "" {
		t.Fatalf("edit mode image region: %+v", v)
	}
	if v := s.Region(invitation.GroomName, "", 30, ""); v.Action != ActionEdit || v.Badge != BadgePencil {
		t.Fatalf("edit mode text region: %+v", v)
	}
	if v := s.Region(invitation.MusicURL, "", 0, ""); v.Action != ActionUpload {
		t.Fatalf("audio region: %+v", v)
	}

	s.SetReadonly(true)
	if v := s.Region(invitation.GroomName, "", 30, ""); v.Editable {
		t.Fatalf("readonly must hide affordances: %+v", v)
	}
}

func TestRegionFontSize(t *testing.T) {
	d := invitation.Default()
	d.ElementStyles = nil
	if v := View(&d, invitation.GroomName, "", 30, "", false); v.FontSize != 30 {
		t.Fatalf("default font = %d, want 30", v.FontSize)
	}
	d.SetFontSize(invitation.GroomName, 44)
	if v := View(&d, invitation.GroomName, "", 30, "", false); v.FontSize != 44 {
		t.Fatalf("override font = %d, want 44", v.FontSize)
	}
}

func TestEditModeRequiresCapability(t *testing.T) {
	s := NewSession("s1", "u1", "", invitation.Default(), auth.CapabilitiesFor(auth.RoleUser))
	if err := s.SetEditMode(true); !errors.Is(err, ErrCannotEdit) {
		t.Fatalf("err = %v, want ErrCannotEdit", err)
	}
	if err := s.SaveText(invitation.GroomName, "Minh", nil); err == nil {
		t.Fatal("user role must not write")
	}
	if got := s.Data().GroomName; got == "Minh" {
		t.Fatal("record changed")
	}
}

func TestOpenPrompts(t *testing.T) {
	s := NewSession("s1", "u1", "", invitation.Default(), auth.CapabilitiesFor(auth.RoleAdmin))
	if _, err := s.Open(invitation.GroomName, 30); !errors.Is(err, ErrNotEditing) {
		t.Fatalf("err = %v, want ErrNotEditing", err)
	}
	_ = s.SetEditMode(true)

	cases := []struct {
		field  invitation.Field
		kind   PromptKind
		widget Widget
		font   bool
	}{
		{invitation.GroomName, PromptText, WidgetTextarea, true},
		{invitation.Date, PromptText, WidgetDate, true},
		{invitation.Time, PromptText, WidgetTime, true},
		{invitation.MapURL, PromptText, WidgetURL, false},
		{invitation.GoogleSheetURL, PromptText, WidgetURL, false},
		{invitation.MusicURL, PromptAudio, WidgetAudio, false},
		{invitation.MainImage, PromptCrop, "", false},
	}
	for _, tc := range cases {
		p, err := s.Open(tc.field, 22)
		if err != nil {
			t.Fatalf("Open(%s): %v", tc.field, err)
		}
		if p.Kind != tc.kind || p.Widget != tc.widget || p.ShowFontControl != tc.font {
			t.Fatalf("Open(%s) = %+v", tc.field, p)
		}
		if tc.font && (p.FontSize != 22 || p.MinFontSize != MinFontSize || p.MaxFontSize != MaxFontSize) {
			t.Fatalf("Open(%s) font = %+v", tc.field, p)
		}
	}

	p, _ := s.Open(invitation.MainImage, 0)
	if p.Aspect != 249.0/373.0 {
		t.Fatalf("aspect = %v", p.Aspect)
	}
	p, _ = s.Open(invitation.GroomName, 30)
	if p.Value != s.Data().GroomName || p.Label != "Tên Chú Rể" {
		t.Fatalf("prefill = %+v", p)
	}
}

func TestSaveTextWritesValueAndFont(t *testing.T) {
	s := editing(t)
	var seen []invitation.Data
	s.OnChange(func(d invitation.Data) { seen = append(seen, d) })

	if _, err := s.Open(invitation.GroomName, 30); err != nil {
		t.Fatal(err)
	}
	size := 36
	if err := s.SaveText(invitation.GroomName, "Minh", &size); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	d := s.Data()
	if d.GroomName != "Minh" || d.FontSize(invitation.GroomName, 30) != 36 {
		t.Fatalf("record = %q / %d", d.GroomName, d.FontSize(invitation.GroomName, 30))
	}
	if _, ok := s.Pending(invitation.GroomName); ok {
		t.Fatal("prompt should close after save")
	}
	if len(seen) != 1 || seen[0].GroomName != "Minh" {
		t.Fatalf("observers = %d", len(seen))
	}
}

func TestSaveDateRecomputesLunar(t *testing.T) {
	s := editing(t)
	if err := s.SaveText(invitation.Date, "2025-02-15", nil); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	want := "(Tức Ngày 18 Tháng 01 Năm Ất Tỵ)"
	if got := s.Data().LunarDate; got != want {
		t.Fatalf("lunar = %q, want %q", got, want)
	}

	before := s.Data()
	if err := s.SaveText(invitation.Date, "15/02/2025", nil); !errors.Is(err, invitation.ErrInvalidDate) {
		t.Fatalf("err = %v, want ErrInvalidDate", err)
	}
	after := s.Data()
	if after.Date != before.Date || after.LunarDate != before.LunarDate {
		t.Fatal("invalid date partially applied")
	}
}

func TestSaveTextRejects(t *testing.T) {
	s := editing(t)
	big := 81
	if err := s.SaveText(invitation.GroomName, "X", &big); !errors.Is(err, ErrFontSize) {
		t.Fatalf("err = %v, want ErrFontSize", err)
	}
	if s.Data().GroomName == "X" {
		t.Fatal("value applied despite bad font size")
	}
	if err := s.SaveText(invitation.Time, "25:00", nil); !errors.Is(err, invitation.ErrInvalidTime) {
		t.Fatalf("err = %v, want ErrInvalidTime", err)
	}
	if err := s.SaveText(invitation.MainImage, "x", nil); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("err = %v, want ErrWrongKind", err)
	}
	// link fields carry no font control, a size is ignored
	if err := s.SaveText(invitation.MapURL, " https://maps.example ", &big); err != nil {
		t.Fatalf("link save: %v", err)
	}
	d := s.Data()
	if d.MapURL != "https://maps.example" {
		t.Fatalf("map url = %q", d.MapURL)
	}
	if _, ok := d.ElementStyles[invitation.MapURL]; ok {
		t.Fatal("link field got a font override")
	}
}

func TestCancelOnlyDropsThatField(t *testing.T) {
	s := editing(t)
	_, _ = s.Open(invitation.GroomName, 30)
	_, _ = s.Open(invitation.BrideName, 30)
	s.Cancel(invitation.GroomName)
	if _, ok := s.Pending(invitation.GroomName); ok {
		t.Fatal("groom prompt still open")
	}
	if _, ok := s.Pending(invitation.BrideName); !ok {
		t.Fatal("bride prompt dropped")
	}
	if s.Data().GroomName != invitation.Default().GroomName {
		t.Fatal("cancel changed the record")
	}
}

func TestApplyImageGrowsGallery(t *testing.T) {
	s := editing(t)
	f := invitation.GalleryImage(9)
	if err := s.ApplyImage(f, "data:image/jpeg;base64,AA"); err != nil {
		t.Fatalf("ApplyImage: %v", err)
	}
	d := s.Data()
	if len(d.GalleryImages) < 10 || d.GalleryImages[9] != "data:image/jpeg;base64,AA" {
		t.Fatalf("gallery = %v", d.GalleryImages)
	}
	if err := s.ApplyImage(invitation.GroomName, "x"); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("err = %v, want ErrWrongKind", err)
	}
}

func TestAttachFollowsRoleChanges(t *testing.T) {
	as := auth.NewSession()
	as.SignIn(auth.User{UID: "u1", Role: auth.RoleEditor})

	s := NewSession("s1", "u1", "", invitation.Default(), as.Capabilities())
	s.Attach(as)
	if err := s.SetEditMode(true); err != nil {
		t.Fatal(err)
	}

	as.SetRole(auth.RoleUser)
	if s.EditMode() || s.Capabilities().CanEdit {
		t.Fatal("demotion should leave edit mode")
	}
	if err := s.SaveText(invitation.GroomName, "Minh", nil); err == nil {
		t.Fatal("write after demotion")
	}

	as.SetRole(auth.RoleAdmin)
	if !s.Capabilities().IsAdmin {
		t.Fatal("promotion not applied")
	}
	as.SignOut()
	if s.Capabilities().CanEdit {
		t.Fatal("sign-out should revoke edit")
	}

	s.Close()
	as.SignIn(auth.User{UID: "u1", Role: auth.RoleAdmin})
	if s.Capabilities().CanEdit {
		t.Fatal("closed session still subscribed")
	}
}

func TestManagerSweep(t *testing.T) {
	m := NewManager(time.Minute)
	a := NewSession("a", "u1", "", invitation.Default(), auth.Capabilities{})
	b := NewSession("b", "u2", "", invitation.Default(), auth.Capabilities{})
	closed := 0
	a.OnClose(func() { closed++ })
	m.Add(a)
	m.Add(b)

	if got := m.ForOwner("u1"); len(got) != 1 || got[0] != a {
		t.Fatalf("ForOwner = %v", got)
	}

	n := m.Sweep(time.Now().Add(2 * time.Minute))
	if n != 2 || m.Len() != 0 || closed != 1 {
		t.Fatalf("swept %d, len %d, closed %d", n, m.Len(), closed)
	}

	c := NewSession("c", "u1", "", invitation.Default(), auth.Capabilities{})
	m.Add(c)
	if m.Sweep(time.Now()) != 0 {
		t.Fatal("fresh session swept")
	}
	if !m.Remove("c") || m.Remove("c") {
		t.Fatal("Remove should report presence once")
	}
}
