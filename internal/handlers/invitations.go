package handlers

import (
	"errors"
	"net/http"
	"time"

	"glow/internal/auth"
	"glow/internal/database"
	"glow/internal/invitation"
	"glow/internal/rsvp"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

type invitationRow struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customerName"`
	GroomName    string    `json:"groomName"`
	BrideName    string    `json:"brideName"`
	Style        string    `json:"style"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	RSVPCount    int64     `json:"rsvpCount"`
	Link         string    `json:"link"`
	ToolLink     string    `json:"toolLink"`
}

func (a *App) row(inv invitation.Saved, rsvps int64) invitationRow {
	base := a.Config.GetBaseUrl()
	return invitationRow{
		ID:           inv.ID,
		CustomerName: inv.CustomerName,
		GroomName:    inv.Data.GroomName,
		BrideName:    inv.Data.BrideName,
		Style:        string(inv.Style()),
		CreatedAt:    inv.CreatedAt,
		UpdatedAt:    inv.UpdatedAt,
		RSVPCount:    rsvps,
		Link:         inv.Link(base),
		ToolLink:     invitation.ToolLink(base, inv.ID),
	}
}

// ListInvitations returns the caller's invitations, newest first, with
// their RSVP counts.
// GET /api/invitations
func (a *App) ListInvitations(w http.ResponseWriter, r *http.Request) {
	u, ok := a.require(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	list, err := a.Store.ListInvitationsByOwner(r.Context(), u.Email)
	if err != nil {
		fail(w, err)
		return
	}
	ids := make([]string, len(list))
	for i, inv := range list {
		ids[i] = inv.ID
	}
	counts, err := a.Store.CountRSVPs(r.Context(), ids)
	if err != nil {
		fail(w, err)
		return
	}
	rows := make([]invitationRow, 0, len(list))
	for _, inv := range list {
		rows = append(rows, a.row(inv, counts[inv.ID]))
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

// GET /api/invitations/{id}
func (a *App) GetInvitation(w http.ResponseWriter, r *http.Request) {
	_, inv, ok := a.loadOwned(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	counts, err := a.Store.CountRSVPs(r.Context(), []string{inv.ID})
	if err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"invitation": inv,
		"summary":    a.row(inv, counts[inv.ID]),
	})
}

// DeleteInvitation removes the invitation with its RSVPs and drafts, and
// ends edit sessions bound to it.
// DELETE /api/invitations/{id}
func (a *App) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	u, inv, ok := a.loadOwned(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	if err := a.Store.DeleteInvitation(r.Context(), inv.ID); err != nil {
		fail(w, err)
		return
	}
	a.invalidate(inv.ID)
	for _, s := range a.Editors.ForOwner(u.UID) {
		if s.InvitationID() == inv.ID {
			a.Editors.Remove(s.ID)
		}
	}
	logger.LogInfo("Invitation %s deleted by %s", inv.ID, u.Email)
	utils.WriteJSON(w, http.StatusOK, map[string]any{"id": inv.ID, "deleted": true})
}

// GET /api/invitations/{id}/rsvps
func (a *App) ListRSVPs(w http.ResponseWriter, r *http.Request) {
	_, inv, ok := a.loadOwned(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	list, err := a.RSVP.List(r.Context(), inv.ID)
	if err != nil {
		fail(w, err)
		return
	}
	if list == nil {
		list = []rsvp.Record{}
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

type linkRequest struct {
	GuestName string `json:"guestName"`
}

// CreateLink builds the personal share link for one guest.
// POST /api/invitations/{id}/links
func (a *App) CreateLink(w http.ResponseWriter, r *http.Request) {
	_, inv, ok := a.loadOwned(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	var req linkRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}
	link, err := invitation.PersonalLink(inv.Link(a.Config.GetBaseUrl()), req.GuestName)
	if err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"guestName": invitation.NormalizeName(req.GuestName),
		"link":      link,
	})
}

// SubmitRSVP stores a guest reply. It is public and rate limited.
// POST /api/invitations/{id}/rsvp
func (a *App) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var sub rsvp.Submission
	if err := utils.DecodeJSON(w, r, jsonLimit, &sub); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, rsvp.Message(err))
		return
	}
	sub.InvitationID = r.PathValue("id")

	inv, err := a.Store.GetInvitation(r.Context(), sub.InvitationID)
	if errors.Is(err, database.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, utils.ErrResourceNotFound, rsvp.Message(rsvp.ErrNoInvitation))
		return
	}
	if err != nil {
		fail(w, errors.Join(rsvp.ErrStoreUnavailable, err))
		return
	}

	rec, err := a.RSVP.Submit(r.Context(), sub, inv.Data.GoogleSheetURL)
	if err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":      rec.ID,
		"message": "Cảm ơn bạn đã gửi phản hồi!",
	})
}
