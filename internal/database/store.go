package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/invitation"
	"glow/internal/rsvp"
)

var ErrNotFound = errors.New("record not found")

// Store is the document store behind every handler. It satisfies
// auth.UserStore and rsvp.Store.
type Store struct {
	db   *gorm.DB
	node *snowflake.Node
}

func NewStore(db *gorm.DB) (*Store, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("snowflake node: %w", err)
	}
	return &Store{db: db, node: node}, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

// ---- users ----

func toAuthUser(u User) auth.User {
	return auth.User{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      auth.Role(u.Role),
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}

func (s *Store) GetUser(ctx context.Context, uid string) (auth.User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("uid = ?", uid).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.User{}, fmt.Errorf("%w: %s", auth.ErrUserNotFound, uid)
	}
	if err != nil {
		return auth.User{}, err
	}
	return toAuthUser(u), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (auth.User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return auth.User{}, fmt.Errorf("%w: %s", auth.ErrUserNotFound, email)
	}
	if err != nil {
		return auth.User{}, err
	}
	return toAuthUser(u), nil
}

func (s *Store) SaveUser(ctx context.Context, u auth.User, created bool) error {
	row := User{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      string(u.Role),
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
	if created {
		return s.db.WithContext(ctx).Create(&row).Error
	}
	res := s.db.WithContext(ctx).Model(&User{}).Where("uid = ?", u.UID).Updates(map[string]interface{}{
		"email":      row.Email,
		"name":       row.Name,
		"picture":    row.Picture,
		"role":       row.Role,
		"last_login": row.LastLogin,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.db.WithContext(ctx).Create(&row).Error
	}
	return nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&User{}).Count(&n).Error
	return n, err
}

func (s *Store) ListUsers(ctx context.Context) ([]auth.User, error) {
	var rows []User
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]auth.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, toAuthUser(r))
	}
	return out, nil
}

// SetUserRole writes role directly and returns the updated user.
func (s *Store) SetUserRole(ctx context.Context, uid string, role auth.Role) (auth.User, error) {
	res := s.db.WithContext(ctx).Model(&User{}).Where("uid = ?", uid).Update("role", string(role))
	if res.Error != nil {
		return auth.User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return auth.User{}, fmt.Errorf("%w: %s", auth.ErrUserNotFound, uid)
	}
	return s.GetUser(ctx, uid)
}

// ---- invitations ----

func encode(d invitation.Data) (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode invitation: %w", err)
	}
	return string(b), nil
}

func toSaved(row Invitation) (invitation.Saved, error) {
	out := invitation.Saved{
		ID:           row.ID,
		CustomerName: row.CustomerName,
		OwnerEmail:   row.OwnerEmail,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Data), &out.Data); err != nil {
		return out, fmt.Errorf("decode invitation %s: %w", row.ID, err)
	}
	return out, nil
}

// CreateInvitation stores a new record under a fresh base36 snowflake id.
func (s *Store) CreateInvitation(ctx context.Context, ownerUID, ownerEmail, customerName string, data invitation.Data) (invitation.Saved, error) {
	name := strings.TrimSpace(customerName)
	if name == "" {
		return invitation.Saved{}, invitation.ErrCustomerNameNeeded
	}
	raw, err := encode(data)
	if err != nil {
		return invitation.Saved{}, err
	}
	row := Invitation{
		ID:           s.node.Generate().Base36(),
		CustomerName: name,
		OwnerUID:     ownerUID,
		OwnerEmail:   ownerKey(ownerEmail),
		Style:        string(data.Style),
		Data:         raw,
		Size:         int64(len(raw)),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return invitation.Saved{}, err
	}
	appinfo.AddInvitation(row.Size)
	return toSaved(row)
}

// UpdateInvitationData replaces the stored record. A non-empty customerName
// also renames the invitation.
func (s *Store) UpdateInvitationData(ctx context.Context, id, customerName string, data invitation.Data) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}

	var old Invitation
	if err := s.db.WithContext(ctx).Select("id", "size").Where("id = ?", id).First(&old).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: invitation %s", ErrNotFound, id)
		}
		return err
	}

	updates := map[string]interface{}{
		"data":       raw,
		"size":       int64(len(raw)),
		"style":      string(data.Style),
		"updated_at": time.Now(),
	}
	if name := strings.TrimSpace(customerName); name != "" {
		updates["customer_name"] = name
	}
	if err := s.db.WithContext(ctx).Model(&Invitation{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}
	appinfo.ResizeInvitation(int64(len(raw)) - old.Size)
	return nil
}

func (s *Store) GetInvitation(ctx context.Context, id string) (invitation.Saved, error) {
	var row Invitation
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invitation.Saved{}, fmt.Errorf("%w: invitation %s", ErrNotFound, id)
	}
	if err != nil {
		return invitation.Saved{}, err
	}
	return toSaved(row)
}

// ownerKey is the stored form of an owner email. Ownership ignores case.
func ownerKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ListInvitationsByOwner returns the owner's invitations, newest first.
func (s *Store) ListInvitationsByOwner(ctx context.Context, ownerEmail string) ([]invitation.Saved, error) {
	var rows []Invitation
	err := s.db.WithContext(ctx).
		Where("LOWER(owner_email) = ?", ownerKey(ownerEmail)).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]invitation.Saved, 0, len(rows))
	for _, r := range rows {
		saved, err := toSaved(r)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, nil
}

// DeleteInvitation removes the invitation with its RSVPs and drafts.
func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	var row Invitation
	var removedRSVPs int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "size").Where("id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invitation %s", ErrNotFound, id)
			}
			return err
		}
		res := tx.Where("invitation_id = ?", id).Delete(&RSVP{})
		if res.Error != nil {
			return res.Error
		}
		removedRSVPs = res.RowsAffected
		if err := tx.Where("invitation_id = ?", id).Delete(&Draft{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&Invitation{}).Error
	})
	if err != nil {
		return err
	}
	appinfo.RemoveInvitation(row.Size, removedRSVPs)
	return nil
}

// ---- drafts ----

// SaveDraft upserts the autosave snapshot of edit session id.
func (s *Store) SaveDraft(ctx context.Context, id, ownerUID, invitationID string, data invitation.Data) error {
	raw, err := encode(data)
	if err != nil {
		return err
	}
	row := Draft{
		ID:           id,
		OwnerUID:     ownerUID,
		InvitationID: invitationID,
		Data:         raw,
		Size:         int64(len(raw)),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "size", "invitation_id", "updated_at"}),
	}).Create(&row).Error
}

func (s *Store) GetDraft(ctx context.Context, id string) (invitation.Data, error) {
	var row Draft
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return invitation.Data{}, fmt.Errorf("%w: draft %s", ErrNotFound, id)
	}
	if err != nil {
		return invitation.Data{}, err
	}
	var d invitation.Data
	if err := json.Unmarshal([]byte(row.Data), &d); err != nil {
		return d, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&Draft{}).Error
}

// PurgeDrafts deletes drafts untouched since before, in batches.
func (s *Store) PurgeDrafts(ctx context.Context, before time.Time) (int64, error) {
	var total int64
	for {
		var ids []string
		err := s.db.WithContext(ctx).Model(&Draft{}).
			Where("updated_at < ?", before).
			Order("updated_at ASC").
			Limit(50).
			Pluck("id", &ids).Error
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&Draft{})
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
		if len(ids) < 50 {
			return total, nil
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// ---- rsvps ----

func (s *Store) CreateRSVP(ctx context.Context, r rsvp.Record) error {
	row := RSVP{
		ID:            r.ID,
		InvitationID:  r.InvitationID,
		GuestName:     r.GuestName,
		GuestRelation: r.GuestRelation,
		GuestWishes:   r.GuestWishes,
		Attendance:    string(r.Attendance),
		CreatedAt:     r.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	appinfo.AddRSVP()
	return nil
}

func (s *Store) ListRSVPs(ctx context.Context, invitationID string) ([]rsvp.Record, error) {
	var rows []RSVP
	err := s.db.WithContext(ctx).
		Where("invitation_id = ?", invitationID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]rsvp.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, rsvp.Record{
			ID:            r.ID,
			InvitationID:  r.InvitationID,
			GuestName:     r.GuestName,
			GuestRelation: r.GuestRelation,
			GuestWishes:   r.GuestWishes,
			Attendance:    rsvp.Attendance(r.Attendance),
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

// CountRSVPs returns the number of replies per invitation id. Ids without
// replies are absent from the map.
func (s *Store) CountRSVPs(ctx context.Context, invitationIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(invitationIDs))
	if len(invitationIDs) == 0 {
		return out, nil
	}
	type row struct {
		InvitationID string
		N            int64
	}
	var rows []row
	err := s.db.WithContext(ctx).Model(&RSVP{}).
		Select("invitation_id, count(*) AS n").
		Where("invitation_id IN ?", invitationIDs).
		Group("invitation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.InvitationID] = r.N
	}
	return out, nil
}

// ---- stats ----

type Stats struct {
	Users       int64 `json:"users"`
	Invitations int64 `json:"invitations"`
	Drafts      int64 `json:"drafts"`
	RSVPs       int64 `json:"rsvps"`
	DataBytes   int64 `json:"dataBytes"`
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	if err := db.Model(&User{}).Count(&st.Users).Error; err != nil {
		return st, err
	}
	if err := db.Model(&Invitation{}).Select("count(*), IFNULL(SUM(size), 0)").Row().Scan(&st.Invitations, &st.DataBytes); err != nil {
		return st, err
	}
	if err := db.Model(&Draft{}).Count(&st.Drafts).Error; err != nil {
		return st, err
	}
	if err := db.Model(&RSVP{}).Count(&st.RSVPs).Error; err != nil {
		return st, err
	}
	return st, nil
}
