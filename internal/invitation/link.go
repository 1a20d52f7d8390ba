package invitation

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Saved is a persisted invitation. The share link is derived from ID.
type Saved struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	OwnerEmail   string    `json:"ownerEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Data         Data      `json:"data"`
}

func (s Saved) Link(origin string) string {
	return strings.TrimRight(origin, "/") + "/?invitationId=" + url.QueryEscape(s.ID)
}

// Style reads the stored tag only. Records without one render red-gold.
func (s Saved) Style() Style {
	if st, err := ParseStyle(string(s.Data.Style)); err == nil {
		return st
	}
	return StyleRedGold
}

var (
	ErrGuestNameRequired  = errors.New("guest name is required")
	ErrCustomerNameNeeded = errors.New("customer name is required")
)

// NormalizeName trims and NFC-normalizes a human-entered name.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// PersonalLink appends a guestName parameter to base.
func PersonalLink(base, guestName string) (string, error) {
	name := NormalizeName(guestName)
	if name == "" {
		return "", ErrGuestNameRequired
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "guestName=" + escapeComponent(name), nil
}

// escapeComponent matches browser encodeURIComponent for spaces.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func ToolLink(origin, id string) string {
	return Saved{ID: id}.Link(origin) + "&mode=tool"
}

type ShareQuery struct {
	InvitationID string
	GuestName    string
	ToolMode     bool
}

func ParseShareQuery(q url.Values) ShareQuery {
	return ShareQuery{
		InvitationID: strings.TrimSpace(q.Get("invitationId")),
		GuestName:    NormalizeName(q.Get("guestName")),
		ToolMode:     q.Get("mode") == "tool",
	}
}
