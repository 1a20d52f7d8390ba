// Package editor holds the live invitation record of an edit session and is
// its only writer. Templates ask it how to draw editable regions and route
// clicks back through Open / SaveText / ApplyImage.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"glow/internal/auth"
	"glow/internal/invitation"
	"glow/internal/lunar"
)

const (
	MinFontSize     = 10
	MaxFontSize     = 80
	DefaultFontSize = 14
)

var (
	ErrNotEditing   = errors.New("editor: not in edit mode")
	ErrCannotEdit   = errors.New("editor: role does not allow editing")
	ErrReadonly     = errors.New("editor: view is read-only")
	ErrWrongKind    = errors.New("editor: field does not accept this kind of value")
	ErrFontSize     = errors.New("editor: font size out of range")
	ErrSessionEnded = errors.New("editor: session closed")
)

type Widget string

const (
	WidgetTextarea Widget = "textarea"
	WidgetDate     Widget = "date"
	WidgetTime     Widget = "time"
	WidgetURL      Widget = "url"
	WidgetAudio    Widget = "audio"
)

type PromptKind string

const (
	PromptText  PromptKind = "text"
	PromptCrop  PromptKind = "crop"
	PromptAudio PromptKind = "audio"
)

// Prompt is what a click on an editable region opens.
type Prompt struct {
	Kind            PromptKind       `json:"kind"`
	Field           invitation.Field `json:"field"`
	Label           string           `json:"label"`
	Value           string           `json:"value,omitempty"`
	FontSize        int              `json:"fontSize,omitempty"`
	Widget          Widget           `json:"widget,omitempty"`
	ShowFontControl bool             `json:"showFontControl"`
	MinFontSize     int              `json:"minFontSize,omitempty"`
	MaxFontSize     int              `json:"maxFontSize,omitempty"`
	Aspect          float64          `json:"aspect,omitempty"`
}

func widgetFor(f invitation.Field) Widget {
	switch f.Kind() {
	case invitation.KindDate:
		return WidgetDate
	case invitation.KindTime:
		return WidgetTime
	case invitation.KindLink:
		return WidgetURL
	case invitation.KindAudio:
		return WidgetAudio
	}
	return WidgetTextarea
}

// Session is one operator's editing of one record.
type Session struct {
	ID         string
	OwnerUID   string
	OwnerEmail string

	mu           sync.Mutex
	invitationID string
	data         invitation.Data
	editMode     bool
	readonly     bool
	caps         auth.Capabilities
	prompts      map[invitation.Field]Prompt
	observers    []func(invitation.Data)
	closers      []func()
	closed       bool
	lastActive   time.Time
}

func NewSession(id, ownerUID, ownerEmail string, data invitation.Data, caps auth.Capabilities) *Session {
	return &Session{
		ID:         id,
		OwnerUID:   ownerUID,
		OwnerEmail: ownerEmail,
		data:       data.Clone(),
		caps:       caps,
		prompts:    make(map[invitation.Field]Prompt),
		lastActive: time.Now(),
	}
}

// Bind attaches the session to a persisted invitation so later saves update it.
func (s *Session) Bind(invitationID string) {
	s.mu.Lock()
	s.invitationID = invitationID
	s.mu.Unlock()
}

func (s *Session) InvitationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invitationID
}

// Data returns a copy of the live record.
func (s *Session) Data() invitation.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

func (s *Session) EditMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMode
}

func (s *Session) Readonly() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readonly
}

func (s *Session) Capabilities() auth.Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

func (s *Session) SetReadonly(ro bool) {
	s.mu.Lock()
	s.readonly = ro
	if ro {
		s.editMode = false
		s.prompts = make(map[invitation.Field]Prompt)
	}
	s.mu.Unlock()
}

// SetEditMode toggles edit affordances. Turning it on requires CanEdit.
func (s *Session) SetEditMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionEnded
	}
	if on {
		if s.readonly {
			return ErrReadonly
		}
		if !s.caps.CanEdit {
			return ErrCannotEdit
		}
	} else {
		s.prompts = make(map[invitation.Field]Prompt)
	}
	s.editMode = on
	s.touch()
	return nil
}

// SetCapabilities applies a role change; losing CanEdit leaves edit mode.
func (s *Session) SetCapabilities(c auth.Capabilities) {
	s.mu.Lock()
	s.caps = c
	if !c.CanEdit {
		s.editMode = false
		s.prompts = make(map[invitation.Field]Prompt)
	}
	s.mu.Unlock()
}

// Attach follows role changes of the signed-in user.
func (s *Session) Attach(as *auth.Session) {
	unsub := as.Subscribe(func(ev auth.Event) {
		if !ev.SignedIn {
			s.SetCapabilities(auth.Capabilities{})
			return
		}
		s.SetCapabilities(ev.Caps)
	})
	s.OnClose(unsub)
}

// OnChange registers an observer called with a copy of the record after
// every write.
func (s *Session) OnChange(fn func(invitation.Data)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

func (s *Session) OnClose(fn func()) {
	s.mu.Lock()
	s.closers = append(s.closers, fn)
	s.mu.Unlock()
}

// Close ends edit mode, drops observers and runs close hooks once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.editMode = false
	closers := s.closers
	s.closers = nil
	s.observers = nil
	s.mu.Unlock()

	for _, fn := range closers {
		fn()
	}
}

func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.lastActive = time.Now()
}

func (s *Session) canWrite() error {
	switch {
	case s.closed:
		return ErrSessionEnded
	case s.readonly:
		return ErrReadonly
	case !s.caps.CanEdit:
		return ErrCannotEdit
	case !s.editMode:
		return ErrNotEditing
	}
	return nil
}

// Open returns the prompt a click on field should show.
func (s *Session) Open(field invitation.Field, defaultFont int) (Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.canWrite(); err != nil {
		return Prompt{}, err
	}
	if defaultFont <= 0 {
		defaultFont = DefaultFontSize
	}
	p := Prompt{Field: field, Label: field.Label()}
	switch field.Kind() {
	case invitation.KindImage:
		p.Kind = PromptCrop
		p.Aspect = field.Aspect()
	case invitation.KindAudio:
		p.Kind = PromptAudio
		p.Widget = WidgetAudio
	default:
		p.Kind = PromptText
		p.Value = s.data.Get(field)
		p.Widget = widgetFor(field)
		p.ShowFontControl = field.ShowsFontControl()
		if p.ShowFontControl {
			p.FontSize = s.data.FontSize(field, defaultFont)
			p.MinFontSize = MinFontSize
			p.MaxFontSize = MaxFontSize
		}
	}
	s.prompts[field] = p
	s.touch()
	return p, nil
}

// Pending reports the open prompt for field, if any.
func (s *Session) Pending(field invitation.Field) (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prompts[field]
	return p, ok
}

// Cancel discards the open prompt for field only.
func (s *Session) Cancel(field invitation.Field) {
	s.mu.Lock()
	delete(s.prompts, field)
	s.mu.Unlock()
}

// SaveText writes a text-like value and optional font size. Editing the
// date also rewrites the lunar date. Nothing is applied on error.
func (s *Session) SaveText(field invitation.Field, value string, fontSize *int) error {
	if !field.IsText() {
		return ErrWrongKind
	}
	if fontSize != nil && field.ShowsFontControl() && (*fontSize < MinFontSize || *fontSize > MaxFontSize) {
		return fmt.Errorf("%w: %d", ErrFontSize, *fontSize)
	}

	var lunarText string
	switch field.Kind() {
	case invitation.KindDate:
		value = strings.TrimSpace(value)
		txt, err := lunar.FormatFull(value)
		if err != nil {
			return invitation.ErrInvalidDate
		}
		lunarText = txt
	case invitation.KindTime:
		value = strings.TrimSpace(value)
		if err := invitation.ValidateTime(value); err != nil {
			return err
		}
	case invitation.KindLink:
		value = strings.TrimSpace(value)
	}

	s.mu.Lock()
	if err := s.canWrite(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.data.Set(field, value); err != nil {
		s.mu.Unlock()
		return err
	}
	if lunarText != "" {
		s.data.LunarDate = lunarText
	}
	if fontSize != nil && field.ShowsFontControl() {
		s.data.SetFontSize(field, *fontSize)
	}
	delete(s.prompts, field)
	s.touch()
	snap, fns := s.data.Clone(), append([]func(invitation.Data){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return nil
}

// ApplyImage stores the reference produced by the crop pipeline or an
// audio upload.
func (s *Session) ApplyImage(field invitation.Field, ref string) error {
	if field.IsText() {
		return ErrWrongKind
	}
	s.mu.Lock()
	if err := s.canWrite(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.data.Set(field, ref); err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.prompts, field)
	s.touch()
	snap, fns := s.data.Clone(), append([]func(invitation.Data){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return nil
}
