// Package rsvp records guest replies and forwards them to an optional
// per-invitation webhook.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"glow/internal/invitation"
)

type Attendance string

const (
	Attending    Attendance = "Có Thể Tham Dự"
	NotAttending Attendance = "Không Thể Tham Dự"
)

// Choices lists the attendance options in display order.
func Choices() []Attendance {
	return []Attendance{Attending, NotAttending}
}

var (
	ErrNameRequired      = errors.New("rsvp: guest name is required")
	ErrInvalidAttendance = errors.New("rsvp: invalid attendance")
	ErrNoInvitation      = errors.New("rsvp: invitation id is required")
	ErrStoreUnavailable  = errors.New("rsvp: store unavailable")
)

// Message is the guest-facing text for a submission error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNameRequired):
		return "Bạn quên nhập tên rồi nè!"
	case errors.Is(err, ErrInvalidAttendance):
		return "Vui lòng chọn có thể tham dự hay không."
	case errors.Is(err, ErrNoInvitation):
		return "Thiệp mời không tồn tại."
	}
	return "Có lỗi xảy ra, vui lòng thử lại sau!"
}

type Submission struct {
	InvitationID  string     `json:"invitationId"`
	GuestName     string     `json:"guestName"`
	GuestRelation string     `json:"guestRelation"`
	GuestWishes   string     `json:"guestWishes"`
	Attendance    Attendance `json:"attendance"`
}

// Validate trims the free-text fields in place and checks the form.
// An empty attendance defaults to Attending, matching the form's initial choice.
func (s *Submission) Validate() error {
	s.GuestName = invitation.NormalizeName(s.GuestName)
	s.GuestRelation = strings.TrimSpace(s.GuestRelation)
	s.GuestWishes = strings.TrimSpace(s.GuestWishes)

	if s.InvitationID == "" {
		return ErrNoInvitation
	}
	if s.GuestName == "" {
		return ErrNameRequired
	}
	switch s.Attendance {
	case "":
		s.Attendance = Attending
	case Attending, NotAttending:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAttendance, string(s.Attendance))
	}
	return nil
}

type Record struct {
	ID            string     `json:"id"`
	InvitationID  string     `json:"invitationId"`
	GuestName     string     `json:"guestName"`
	GuestRelation string     `json:"guestRelation"`
	GuestWishes   string     `json:"guestWishes"`
	Attendance    Attendance `json:"attendance"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Store interface {
	CreateRSVP(ctx context.Context, r Record) error
	ListRSVPs(ctx context.Context, invitationID string) ([]Record, error)
}

type Service struct {
	store Store
	fwd   *Forwarder
	now   func() time.Time
}

func NewService(store Store, fwd *Forwarder) *Service {
	return &Service{store: store, fwd: fwd, now: time.Now}
}

// Submit stores the reply and then, if webhook is an https URL, forwards
// it in the background. Forwarding never affects the result.
func (s *Service) Submit(ctx context.Context, sub Submission, webhook string) (Record, error) {
	if err := sub.Validate(); err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:            uuid.NewString(),
		InvitationID:  sub.InvitationID,
		GuestName:     sub.GuestName,
		GuestRelation: sub.GuestRelation,
		GuestWishes:   sub.GuestWishes,
		Attendance:    sub.Attendance,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateRSVP(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if s.fwd != nil && ValidWebhook(webhook) {
		s.fwd.Forward(webhook, rec)
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, invitationID string) ([]Record, error) {
	return s.store.ListRSVPs(ctx, invitationID)
}
