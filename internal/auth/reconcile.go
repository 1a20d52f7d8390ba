package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

type User struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture"`
	Role      Role      `json:"role"`
	LastLogin time.Time `json:"lastLogin"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Capabilities() Capabilities {
	return CapabilitiesFor(u.Role)
}

// Profile is what the identity provider tells us about a signed-in person.
type Profile struct {
	UID     string
	Email   string
	Name    string
	Picture string
}

// UserStore is the subset of the document store that role handling needs.
type UserStore interface {
	GetUser(ctx context.Context, uid string) (User, error)
	SaveUser(ctx context.Context, u User, created bool) error
	CountUsers(ctx context.Context) (int64, error)
}

func isSuperAdmin(email string, superAdmins []string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, s := range superAdmins {
		if strings.ToLower(strings.TrimSpace(s)) == email {
			return true
		}
	}
	return false
}

// Reconcile syncs a freshly signed-in profile with the store and returns the
// user with an authoritative role. When the store cannot be read or written
// the returned user has RoleUser and the error is non-nil.
func Reconcile(ctx context.Context, store UserStore, p Profile, superAdmins []string, now time.Time) (User, error) {
	u := User{
		UID:       p.UID,
		Email:     p.Email,
		Name:      p.Name,
		Picture:   p.Picture,
		Role:      RoleUser,
		LastLogin: now,
		CreatedAt: now,
	}
	if u.Name == "" {
		u.Name = "User"
	}

	existing, err := store.GetUser(ctx, p.UID)
	created := errors.Is(err, ErrUserNotFound)
	if err != nil && !created {
		return u, fmt.Errorf("reconcile %s: %w", p.Email, err)
	}
	if !created {
		u.CreatedAt = existing.CreatedAt
	}

	switch {
	case isSuperAdmin(p.Email, superAdmins):
		u.Role = RoleAdmin
	case !created:
		if r, err := ParseRole(string(existing.Role)); err == nil {
			u.Role = r
		}
	default:
		count, err := store.CountUsers(ctx)
		if err != nil {
			return u, fmt.Errorf("reconcile %s: count users: %w", p.Email, err)
		}
		if count == 0 {
			u.Role = RoleAdmin
		}
	}

	if err := store.SaveUser(ctx, u, created); err != nil {
		fallback := u
		fallback.Role = RoleUser
		return fallback, fmt.Errorf("reconcile %s: save: %w", p.Email, err)
	}
	return u, nil
}

type Need int

const (
	NeedEdit Need = iota
	NeedAdmin
)

// Require re-reads the stored role and checks it against need. Every
// mutating action calls it right before writing.
func Require(ctx context.Context, store UserStore, uid string, need Need) (User, error) {
	if uid == "" {
		return User{}, ErrUnauthenticated
	}
	u, err := store.GetUser(ctx, uid)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrUnauthenticated
	}
	if err != nil {
		return User{}, fmt.Errorf("role check: %w", err)
	}
	caps := u.Capabilities()
	switch need {
	case NeedAdmin:
		if !caps.IsAdmin {
			return u, ErrForbidden
		}
	default:
		if !caps.CanEdit {
			return u, ErrForbidden
		}
	}
	return u, nil
}
