package editor

import "glow/internal/invitation"

type Badge string

const (
	BadgeNone   Badge = ""
	BadgePencil Badge = "pencil"
	BadgeUpload Badge = "upload"
)

type Action string

const (
	ActionNone     Action = "none"
	ActionEdit     Action = "edit"
	ActionCrop     Action = "crop"
	ActionUpload   Action = "upload"
	ActionNavigate Action = "navigate"
)

// RegionView tells a template how to draw one editable region.
type RegionView struct {
	Field    invitation.Field `json:"field"`
	Label    string           `json:"label"`
	Value    string           `json:"value,omitempty"`
	FontSize int              `json:"fontSize"`
	Editable bool             `json:"editable"`
	Outline  bool             `json:"outline"`
	Badge    Badge            `json:"badge,omitempty"`
	Action   Action           `json:"action"`
	Href     string           `json:"href,omitempty"`
}

// Region resolves the view of field. href is the plain click target used
// outside edit mode; it is ignored while editing.
func (s *Session) Region(field invitation.Field, label string, defaultFont int, href string) RegionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View(&s.data, field, label, defaultFont, href, s.editMode && !s.readonly && s.caps.CanEdit)
}

// View projects one field of d without a session. editing must already
// account for edit mode, read-only and the role gate.
func View(d *invitation.Data, field invitation.Field, label string, defaultFont int, href string, editing bool) RegionView {
	if label == "" {
		label = field.Label()
	}
	if defaultFont <= 0 {
		defaultFont = DefaultFontSize
	}
	v := RegionView{
		Field:    field,
		Label:    label,
		Value:    d.Get(field),
		FontSize: d.FontSize(field, defaultFont),
		Action:   ActionNone,
	}
	if !editing {
		if href != "" {
			v.Action = ActionNavigate
			v.Href = href
		}
		return v
	}
	v.Editable = true
	v.Outline = true
	switch field.Kind() {
	case invitation.KindImage:
		v.Badge = BadgeUpload
		v.Action = ActionCrop
	case invitation.KindAudio:
		v.Badge = BadgeUpload
		v.Action = ActionUpload
	default:
		v.Badge = BadgePencil
		v.Action = ActionEdit
	}
	return v
}
