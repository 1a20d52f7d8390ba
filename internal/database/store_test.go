package database

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"glow/internal/auth"
	"glow/internal/invitation"
	"glow/internal/rsvp"
	"glow/pkg/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStoreSatisfiesContracts(t *testing.T) {
	var _ auth.UserStore = (*Store)(nil)
	var _ rsvp.Store = (*Store)(nil)
}

func TestUserLifecycleThroughReconcile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	if _, err := s.GetUser(ctx, "nobody"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}

	first, err := auth.Reconcile(ctx, s, auth.Profile{UID: "u1", Email: "first@example.com", Name: "First"}, nil, now)
	if err != nil {
		t.Fatalf("Reconcile first: %v", err)
	}
	if first.Role != auth.RoleAdmin {
		t.Fatalf("first user role = %s, want admin", first.Role)
	}

	second, err := auth.Reconcile(ctx, s, auth.Profile{UID: "u2", Email: "second@example.com"}, nil, now)
	if err != nil {
		t.Fatalf("Reconcile second: %v", err)
	}
	if second.Role != auth.RoleUser {
		t.Fatalf("second user role = %s, want user", second.Role)
	}

	if _, err := s.SetUserRole(ctx, "u2", auth.RoleEditor); err != nil {
		t.Fatalf("SetUserRole: %v", err)
	}
	again, err := auth.Reconcile(ctx, s, auth.Profile{UID: "u2", Email: "second@example.com", Name: "Renamed"}, nil, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("Reconcile again: %v", err)
	}
	if again.Role != auth.RoleEditor {
		t.Fatalf("stored role lost: %s", again.Role)
	}

	stored, err := s.GetUser(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "Renamed" || !stored.LastLogin.Equal(now.Add(time.Hour)) {
		t.Fatalf("profile not refreshed: %+v", stored)
	}

	byEmail, err := s.FindUserByEmail(ctx, " SECOND@example.com ")
	if err != nil || byEmail.UID != "u2" {
		t.Fatalf("FindUserByEmail = %+v, %v", byEmail, err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers = %d, %v", len(users), err)
	}

	if _, err := s.SetUserRole(ctx, "ghost", auth.RoleAdmin); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("SetUserRole ghost err = %v", err)
	}
}

func TestRequireReadsStoredRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	auth.Reconcile(ctx, s, auth.Profile{UID: "admin", Email: "a@example.com"}, nil, now)
	auth.Reconcile(ctx, s, auth.Profile{UID: "guest", Email: "g@example.com"}, nil, now)

	if _, err := auth.Require(ctx, s, "guest", auth.NeedEdit); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("user editing err = %v", err)
	}
	s.SetUserRole(ctx, "guest", auth.RoleEditor)
	if _, err := auth.Require(ctx, s, "guest", auth.NeedEdit); err != nil {
		t.Fatalf("editor editing err = %v", err)
	}
	s.SetUserRole(ctx, "admin", auth.RoleUser)
	if _, err := auth.Require(ctx, s, "admin", auth.NeedAdmin); !errors.Is(err, auth.ErrForbidden) {
		t.Fatalf("demoted admin err = %v", err)
	}
}

func TestInvitationCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateInvitation(ctx, "u1", "o@example.com", "  ", invitation.Default()); !errors.Is(err, invitation.ErrCustomerNameNeeded) {
		t.Fatalf("empty customer name err = %v", err)
	}

	data := invitation.Default()
	data.Style = invitation.StylePersonalized
	data.GroomName = "Minh"
	saved, err := s.CreateInvitation(ctx, "u1", "o@example.com", "Khách A", data)
	if err != nil {
		t.Fatalf("CreateInvitation: %v", err)
	}
	if saved.ID == "" || strings.ContainsAny(saved.ID, "/?&") {
		t.Fatalf("bad id %q", saved.ID)
	}

	got, err := s.GetInvitation(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetInvitation: %v", err)
	}
	if got.Data.GroomName != "Minh" || got.Style() != invitation.StylePersonalized || got.CustomerName != "Khách A" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	data.GroomName = "Minh Anh"
	data.SetFontSize(invitation.GroomName, 44)
	if err := s.UpdateInvitationData(ctx, saved.ID, "", data); err != nil {
		t.Fatalf("UpdateInvitationData: %v", err)
	}
	got, _ = s.GetInvitation(ctx, saved.ID)
	if got.Data.GroomName != "Minh Anh" || got.Data.FontSize(invitation.GroomName, 0) != 44 {
		t.Fatalf("update lost: %+v", got.Data)
	}
	if got.CustomerName != "Khách A" {
		t.Fatalf("empty name must keep the old one, got %q", got.CustomerName)
	}

	if err := s.UpdateInvitationData(ctx, "missing", "", data); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}

	second, _ := s.CreateInvitation(ctx, "u1", "o@example.com", "Khách B", invitation.Default())
	s.CreateInvitation(ctx, "u2", "other@example.com", "Khách C", invitation.Default())

	list, err := s.ListInvitationsByOwner(ctx, "o@example.com")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("owner sees %d invitations, want 2", len(list))
	}

	if err := s.DeleteInvitation(ctx, second.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetInvitation(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted invitation err = %v", err)
	}
	if err := s.DeleteInvitation(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err = %v", err)
	}
}

func TestOwnershipIgnoresEmailCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inv, err := s.CreateInvitation(ctx, "u1", "  Co.Dau@Example.COM ", "Khách", invitation.Default())
	if err != nil {
		t.Fatal(err)
	}
	if inv.OwnerEmail != "co.dau@example.com" {
		t.Fatalf("stored owner = %q", inv.OwnerEmail)
	}

	// Rows written before normalisation keep their original case.
	raw, err := encode(invitation.Default())
	if err != nil {
		t.Fatal(err)
	}
	legacy := Invitation{ID: "legacy1", CustomerName: "Cũ", OwnerUID: "u2", OwnerEmail: "Legacy@Example.com", Data: raw, Size: int64(len(raw))}
	if err := s.db.Create(&legacy).Error; err != nil {
		t.Fatal(err)
	}

	for email, want := range map[string]string{
		"co.dau@example.com": inv.ID,
		"CO.DAU@EXAMPLE.COM": inv.ID,
		"legacy@example.COM": "legacy1",
	} {
		list, err := s.ListInvitationsByOwner(ctx, email)
		if err != nil || len(list) != 1 || list[0].ID != want {
			t.Fatalf("%s: list = %+v, %v", email, list, err)
		}
	}
}

func TestDeleteInvitationCascadesRSVPs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	inv, _ := s.CreateInvitation(ctx, "u1", "o@example.com", "Khách", invitation.Default())
	keep, _ := s.CreateInvitation(ctx, "u1", "o@example.com", "Khách 2", invitation.Default())

	svc := rsvp.NewService(s, nil)
	for _, name := range []string{"Lan", "Huệ"} {
		if _, err := svc.Submit(ctx, rsvp.Submission{InvitationID: inv.ID, GuestName: name}, ""); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	svc.Submit(ctx, rsvp.Submission{InvitationID: keep.ID, GuestName: "Mai", Attendance: rsvp.NotAttending}, "")

	counts, err := s.CountRSVPs(ctx, []string{inv.ID, keep.ID, "none"})
	if err != nil {
		t.Fatalf("CountRSVPs: %v", err)
	}
	if counts[inv.ID] != 2 || counts[keep.ID] != 1 || counts["none"] != 0 {
		t.Fatalf("counts = %v", counts)
	}

	list, _ := s.ListRSVPs(ctx, keep.ID)
	if len(list) != 1 || list[0].Attendance != rsvp.NotAttending || list[0].GuestName != "Mai" {
		t.Fatalf("ListRSVPs = %+v", list)
	}

	if err := s.DeleteInvitation(ctx, inv.ID); err != nil {
		t.Fatal(err)
	}
	left, _ := s.ListRSVPs(ctx, inv.ID)
	if len(left) != 0 {
		t.Fatalf("RSVPs survived delete: %d", len(left))
	}
	other, _ := s.ListRSVPs(ctx, keep.ID)
	if len(other) != 1 {
		t.Fatalf("unrelated RSVPs removed")
	}
}

func TestDraftUpsertAndPurge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := invitation.Default()
	if err := s.SaveDraft(ctx, "sess-1", "u1", "", d); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	d.BrideName = "Thảo"
	if err := s.SaveDraft(ctx, "sess-1", "u1", "", d); err != nil {
		t.Fatalf("SaveDraft upsert: %v", err)
	}
	got, err := s.GetDraft(ctx, "sess-1")
	if err != nil || got.BrideName != "Thảo" {
		t.Fatalf("GetDraft = %+v, %v", got.BrideName, err)
	}
	s.SaveDraft(ctx, "sess-2", "u1", "", d)

	old := time.Now().Add(-3 * time.Hour)
	if err := s.DB().Model(&Draft{}).Where("id = ?", "sess-1").UpdateColumn("updated_at", old).Error; err != nil {
		t.Fatal(err)
	}

	n, err := s.PurgeDrafts(ctx, time.Now().Add(-2*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PurgeDrafts = %d, %v", n, err)
	}
	if _, err := s.GetDraft(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired draft still there: %v", err)
	}
	if _, err := s.GetDraft(ctx, "sess-2"); err != nil {
		t.Fatalf("fresh draft purged: %v", err)
	}
}

func TestStatsAndSnapshot(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "glow.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	s, _ := NewStore(db)
	ctx := context.Background()

	auth.Reconcile(ctx, s, auth.Profile{UID: "u1", Email: "a@example.com"}, nil, time.Now())
	s.CreateInvitation(ctx, "u1", "a@example.com", "Khách", invitation.Default())

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Users != 1 || st.Invitations != 1 || st.DataBytes == 0 {
		t.Fatalf("stats = %+v", st)
	}

	path, err := s.Snapshot(ctx, filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("snapshot missing: %v", err)
	}

	c := Cleaner{Store: s, Path: filepath.Join(dir, "glow.db"), MaxSize: 1 << 40, DraftTTL: time.Hour}
	if c.RunOnce(ctx, time.Now()) {
		t.Fatal("vacuum ran below the size limit")
	}
}
