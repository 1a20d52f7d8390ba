package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu      sync.Mutex
	users   map[string]User
	getErr  error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]User)}
}

func (m *memStore) GetUser(_ context.Context, uid string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return User{}, m.getErr
	}
	u, ok := m.users[uid]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) SaveUser(_ context.Context, u User, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[u.UID] = u
	return nil
}

func (m *memStore) CountUsers(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func TestCapabilities(t *testing.T) {
	cases := map[Role]Capabilities{
		RoleAdmin:  {CanEdit: true, IsAdmin: true},
		RoleEditor: {CanEdit: true},
		RoleUser:   {},
		Role(""):   {},
	}
	for r, want := range cases {
		if got := CapabilitiesFor(r); got != want {
			t.Fatalf("CapabilitiesFor(%q) = %+v, want %+v", r, got, want)
		}
	}
}

func TestNextRoleCycle(t *testing.T) {
	r := RoleUser
	want := []Role{RoleEditor, RoleAdmin, RoleUser}
	for _, w := range want {
		r = NextRole(r)
		if r != w {
			t.Fatalf("NextRole = %s, want %s", r, w)
		}
	}
}

func TestReconcileFirstUserIsAdmin(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	now := time.Now()

	first, err := Reconcile(ctx, store, Profile{UID: "u1", Email: "a@x.vn"}, nil, now)
	if err != nil || first.Role != RoleAdmin {
		t.Fatalf("first user role = %s, err = %v", first.Role, err)
	}
	second, err := Reconcile(ctx, store, Profile{UID: "u2", Email: "b@x.vn"}, nil, now)
	if err != nil || second.Role != RoleUser {
		t.Fatalf("second user role = %s, err = %v", second.Role, err)
	}
}

func TestReconcileKeepsStoredRole(t *testing.T) {
	store := newMemStore()
	store.users["u1"] = User{UID: "u1", Role: RoleAdmin}
	store.users["u2"] = User{UID: "u2", Role: RoleEditor, CreatedAt: time.Unix(100, 0)}

	u, err := Reconcile(context.Background(), store, Profile{UID: "u2", Email: "b@x.vn", Name: "B"}, nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != RoleEditor || !u.CreatedAt.Equal(time.Unix(100, 0)) {
		t.Fatalf("stored role or createdAt lost: %+v", u)
	}
}

func TestReconcileSuperAdmin(t *testing.T) {
	store := newMemStore()
	store.users["u1"] = User{UID: "u1", Role: RoleAdmin}
	store.users["boss"] = User{UID: "boss", Role: RoleUser}

	u, err := Reconcile(context.Background(), store, Profile{UID: "boss", Email: "Boss@Glow.vn"}, []string{"boss@glow.vn"}, time.Now())
	if err != nil || u.Role != RoleAdmin {
		t.Fatalf("super admin role = %s, err = %v", u.Role, err)
	}
}

func TestReconcileFailsClosed(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("store offline")
	u, err := Reconcile(context.Background(), store, Profile{UID: "u1", Email: "a@x.vn"}, []string{"a@x.vn"}, time.Now())
	if err == nil || u.Role != RoleUser {
		t.Fatalf("expected fail-closed user role, got %s / %v", u.Role, err)
	}

	store = newMemStore()
	store.saveErr = errors.New("write rejected")
	u, err = Reconcile(context.Background(), store, Profile{UID: "u1", Email: "a@x.vn"}, nil, time.Now())
	if err == nil || u.Role != RoleUser {
		t.Fatalf("save failure must fall back to user, got %s / %v", u.Role, err)
	}
}

func TestRequireRechecksStore(t *testing.T) {
	store := newMemStore()
	store.users["ed"] = User{UID: "ed", Role: RoleEditor}
	store.users["plain"] = User{UID: "plain", Role: RoleUser}
	ctx := context.Background()

	if _, err := Require(ctx, store, "ed", NeedEdit); err != nil {
		t.Fatalf("editor should edit: %v", err)
	}
	if _, err := Require(ctx, store, "plain", NeedEdit); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user must be forbidden, got %v", err)
	}
	if _, err := Require(ctx, store, "ed", NeedAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("editor is not admin, got %v", err)
	}
	if _, err := Require(ctx, store, "", NeedEdit); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous must be unauthenticated, got %v", err)
	}

	// demotion takes effect on the next check
	store.users["ed"] = User{UID: "ed", Role: RoleUser}
	if _, err := Require(ctx, store, "ed", NeedEdit); !errors.Is(err, ErrForbidden) {
		t.Fatalf("demoted editor must be forbidden, got %v", err)
	}
}

func TestSessionObservers(t *testing.T) {
	s := NewSession()
	var got []Event
	unsub := s.Subscribe(func(e Event) { got = append(got, e) })

	s.SignIn(User{UID: "u", Role: RoleUser})
	s.SetRole(RoleEditor)
	if len(got) != 2 || !got[1].Caps.CanEdit {
		t.Fatalf("observer did not see role change: %+v", got)
	}
	unsub()
	unsub()
	s.SignOut()
	if len(got) != 2 {
		t.Fatalf("unsubscribed observer still notified")
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("signed out session still has a user")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Lookup("u"); ok {
		t.Fatalf("unexpected session")
	}
	a := r.For("u")
	if b := r.For("u"); a != b {
		t.Fatalf("registry returned different sessions")
	}
}

func TestTokens(t *testing.T) {
	tk := NewTokens("test-secret", time.Hour)
	raw, err := tk.Sign("u1", "a@x.vn", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	c, err := tk.Parse(raw)
	if err != nil || c.UserID != "u1" || c.Email != "a@x.vn" {
		t.Fatalf("parse = %+v, %v", c, err)
	}
	if _, err := NewTokens("other", time.Hour).Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret must fail, got %v", err)
	}
	expired, _ := tk.Sign("u1", "a@x.vn", time.Now().Add(-2*time.Hour))
	if _, err := tk.Parse(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token must fail, got %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	tk.SetCookie(rec, req, raw)
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req2.AddCookie(ck)
	}
	if c, err := tk.FromRequest(req2); err != nil || c.UserID != "u1" {
		t.Fatalf("FromRequest = %+v, %v", c, err)
	}
}
