package crop

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"glow/internal/invitation"
)

var ErrSessionClosed = errors.New("crop: session already committed or cancelled")

// Session is one crop request for one image field. Every image field uses
// the same session type; only the aspect differs.
type Session struct {
	ID     string
	Field  invitation.Field
	Aspect float64

	mu     sync.Mutex
	src    []byte
	state  State
	width  int
	height int
	closed bool
}

// NewSession validates src and seeds the crop area with the largest
// centered rectangle of the field's aspect. Dimensions are taken after EXIF
// orientation, the same way Commit sees the image.
func NewSession(field invitation.Field, src []byte) (*Session, error) {
	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidSource
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrInvalidSource
	}
	aspect := field.Aspect()
	st := NewState()
	st.SetArea(DefaultArea(b.Dx(), b.Dy(), aspect))
	return &Session{
		ID:     uuid.NewString(),
		Field:  field,
		Aspect: aspect,
		src:    src,
		state:  st,
		width:  b.Dx(),
		height: b.Dy(),
	}, nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Update applies the latest interactive values.
func (s *Session) Update(zoom, rotation float64, area Rect) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.state.SetZoom(zoom)
	s.state.SetRotation(rotation)
	s.state.SetArea(area)
	return nil
}

// Commit renders the current state. The session cannot be reused afterwards.
func (s *Session) Commit(opts Options) (Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Result{}, ErrSessionClosed
	}
	s.closed = true
	src, st := s.src, s.state
	s.src = nil
	s.mu.Unlock()

	return Commit(src, st.Area, st.Rotation, s.Aspect, opts)
}

// Cancel drops the pending image.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.src = nil
}

// Sink stores a crop result and returns the reference saved in the record.
type Sink interface {
	Store(ctx context.Context, field invitation.Field, res Result) (string, error)
}

// InlineSink keeps images inside the record as data URLs.
type InlineSink struct{}

func (InlineSink) Store(_ context.Context, _ invitation.Field, res Result) (string, error) {
	return res.DataURL(), nil
}
