package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"glow/internal/auth"
	"glow/internal/database"
	"glow/internal/editor"
	"glow/internal/invitation"
	"glow/internal/layout"
	"glow/pkg/cache"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

const htmlType = "text/html; charset=utf-8"

type homeData struct {
	User       *auth.User
	Caps       auth.Capabilities
	Avatar     string
	Templates  []invitation.Template
	Notice     string
	LoginError string
}

type toolData struct {
	ID           string
	CustomerName string
	Link         string
}

// render executes a page template into memory first so a template error
// still produces a clean 500.
func (a *App) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := a.Pages.Execute(&buf, name, data); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, "render "+name+": "+err.Error())
		return
	}
	w.Header().Set("Content-Type", htmlType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// Home is the landing page, or the shared invitation when the query
// carries an invitationId.
// GET /
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	q := invitation.ParseShareQuery(r.URL.Query())
	if q.InvitationID != "" {
		if q.ToolMode && a.tool(w, r, q) {
			return
		}
		a.guest(w, r, q)
		return
	}

	data := homeData{
		Templates:  invitation.Templates(),
		LoginError: loginErrorMessage(r.URL.Query().Get("login_error")),
	}
	if u, ok := a.viewer(r); ok {
		data.User = &u
		data.Caps = u.Capabilities()
		data.Avatar = avatarURL(u)
	}
	switch {
	case r.URL.Query().Get("notice") == "not_found":
		data.Notice = "Không tìm thấy thiệp mời. Link có thể đã bị xóa."
	case r.URL.Query().Get("saved") != "":
		link := invitation.Saved{ID: r.URL.Query().Get("saved")}.Link(a.Config.GetBaseUrl())
		data.Notice = "Đã lưu thiệp! Link chia sẻ: " + link
	}
	a.render(w, "home.html", data)
}

// guest serves the read-only invitation, personalized for the guest name.
// Rendered pages are cached per invitation and guest.
func (a *App) guest(w http.ResponseWriter, r *http.Request, q invitation.ShareQuery) {
	key := pagePrefix(q.InvitationID) + q.GuestName
	it, err := a.Cache.GetOrLoad(key, func() (cache.Item, error) {
		inv, err := a.Store.GetInvitation(r.Context(), q.InvitationID)
		if err != nil {
			return cache.Item{}, err
		}
		d := inv.Data
		d.Style = inv.Style()
		page := layout.Render(d, layout.Options{
			Readonly:     true,
			GuestName:    q.GuestName,
			InvitationID: inv.ID,
		})
		var buf bytes.Buffer
		if err := a.Pages.HTML(&buf, page); err != nil {
			return cache.Item{}, err
		}
		return cache.Item{Data: buf.Bytes(), ContentType: htmlType, ETag: etagOf(buf.Bytes())}, nil
	})
	if errors.Is(err, database.ErrNotFound) {
		http.Redirect(w, r, "/?notice=not_found", http.StatusSeeOther)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, err.Error())
		return
	}
	serveWithETag(w, r, it, "no-cache")
}

// tool renders the personal link generator. It reports false when the
// viewer is not allowed, letting the caller fall back to the guest view.
func (a *App) tool(w http.ResponseWriter, r *http.Request, q invitation.ShareQuery) bool {
	u, ok := a.viewer(r)
	if !ok {
		return false
	}
	inv, err := a.Store.GetInvitation(r.Context(), q.InvitationID)
	if err != nil || !owns(u, inv) {
		return false
	}
	a.render(w, "tool.html", toolData{
		ID:           inv.ID,
		CustomerName: inv.CustomerName,
		Link:         inv.Link(a.Config.GetBaseUrl()),
	})
	return true
}

// EditorPage renders the live record of an edit session.
// GET /editor/{sid}
func (a *App) EditorPage(w http.ResponseWriter, r *http.Request) {
	u, ok := a.viewer(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	sid := r.PathValue("sid")
	s, ok := a.Editors.Get(sid)
	a.mu.Lock()
	l := a.live[sid]
	a.mu.Unlock()
	if !ok || l == nil || s.OwnerUID != u.UID {
		logger.LogDebug("Editor page for unknown session %q", sid)
		http.Redirect(w, r, "/?notice=not_found", http.StatusSeeOther)
		return
	}

	page := a.editorPage(s)
	l.revealTracker(page).Apply(&page)
	var buf bytes.Buffer
	if err := a.Pages.HTML(&buf, page); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, utils.ErrServerInternal, err.Error())
		return
	}
	w.Header().Set("Content-Type", htmlType)
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (a *App) editorPage(s *editor.Session) layout.Page {
	return layout.Render(s.Data(), layout.Options{
		EditMode:     s.EditMode(),
		Readonly:     s.Readonly(),
		CanEdit:      s.Capabilities().CanEdit,
		InvitationID: s.InvitationID(),
		SessionID:    s.ID,
	})
}
