package handlers

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/autosave"
	"glow/internal/config"
	"glow/internal/editor"
	"glow/internal/invitation"
	"glow/internal/layout"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

const jsonLimit = 64 << 10

// liveSession pairs an edit session with its autosaver. customerName is
// set by the first explicit save; until then autosave writes a draft.
type liveSession struct {
	sess  *editor.Session
	saver *autosave.Saver

	mu           sync.Mutex
	customerName string
	reveals      *layout.RevealTracker
}

// revealTracker returns the session's tracker, building it from p on first use.
func (l *liveSession) revealTracker(p layout.Page) *layout.RevealTracker {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reveals == nil {
		l.reveals = layout.NewRevealTracker(p)
	}
	return l.reveals
}

func (l *liveSession) name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.customerName
}

func (l *liveSession) setName(n string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.customerName
	l.customerName = n
	return prev
}

type triggerKey struct{}

func withTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, triggerKey{}, trigger)
}

func triggerOf(ctx context.Context) string {
	if t, ok := ctx.Value(triggerKey{}).(string); ok {
		return t
	}
	return "autosave"
}

func (a *App) persister(l *liveSession) autosave.PersistFunc {
	return func(ctx context.Context, d invitation.Data) error {
		err := a.persist(ctx, l, d)
		result := "ok"
		if err != nil {
			result = "error"
		}
		appinfo.AutosaveWrites.WithLabelValues(triggerOf(ctx), result).Inc()
		return err
	}
}

// persist writes one snapshot: an update when the session is bound, a new
// invitation once a customer name is known, a draft otherwise. The owner's
// stored role is checked before every write.
func (a *App) persist(ctx context.Context, l *liveSession, d invitation.Data) error {
	s := l.sess
	if _, err := auth.Require(ctx, a.Store, s.OwnerUID, auth.NeedEdit); err != nil {
		logger.LogWarn("Editor: write for %s dropped: %v", s.ID, err)
		return err
	}
	name := l.name()
	if id := s.InvitationID(); id != "" {
		if err := a.Store.UpdateInvitationData(ctx, id, name, d); err != nil {
			return err
		}
		a.invalidate(id)
		return nil
	}
	if name == "" {
		return a.Store.SaveDraft(ctx, s.ID, s.OwnerUID, "", d)
	}
	saved, err := a.Store.CreateInvitation(ctx, s.OwnerUID, s.OwnerEmail, name, d)
	if err != nil {
		return err
	}
	s.Bind(saved.ID)
	if err := a.Store.DeleteDraft(ctx, s.ID); err != nil {
		logger.LogWarn("Editor: drop draft %s: %v", s.ID, err)
	}
	logger.LogInfo("Invitation %s created by %s", saved.ID, s.OwnerEmail)
	return nil
}

func (a *App) open(u auth.User, data invitation.Data, inv *invitation.Saved) *liveSession {
	sid := uuid.NewString()
	s := editor.NewSession(sid, u.UID, u.Email, data, u.Capabilities())
	l := &liveSession{sess: s}
	if inv != nil {
		s.Bind(inv.ID)
		l.customerName = inv.CustomerName
	}

	ed := a.Config.Editor
	l.saver = autosave.New(a.persister(l), autosave.Options{
		Delay:      config.Duration(ed.AutosaveDelay, autosave.DefaultDelay),
		ResetDelay: config.Duration(ed.StatusResetDelay, autosave.DefaultResetDelay),
	})
	s.OnChange(l.saver.Touch)
	s.OnClose(func() {
		l.saver.Stop()
		a.mu.Lock()
		delete(a.live, sid)
		a.mu.Unlock()
	})
	as := a.Sessions.For(u.UID)
	s.Attach(as)
	// Edits made before a demotion never reach the store.
	s.OnClose(as.Subscribe(func(ev auth.Event) {
		if !ev.SignedIn || !ev.Caps.CanEdit {
			l.saver.Discard()
		}
	}))
	s.SetEditMode(true)

	a.mu.Lock()
	a.live[sid] = l
	a.mu.Unlock()
	a.Editors.Add(s)
	return l
}

// lookup finds the caller's live session {sid}. With need set, the stored
// role is re-checked first.
func (a *App) lookup(w http.ResponseWriter, r *http.Request, needEdit bool) (*liveSession, bool) {
	var (
		u  auth.User
		ok bool
	)
	if needEdit {
		u, ok = a.require(w, r, auth.NeedEdit)
	} else if u, ok = a.viewer(r); !ok {
		fail(w, auth.ErrUnauthenticated)
	}
	if !ok {
		return nil, false
	}

	sid := r.PathValue("sid")
	s, found := a.Editors.Get(sid)
	a.mu.Lock()
	l := a.live[sid]
	a.mu.Unlock()
	if !found || l == nil {
		fail(w, editor.ErrSessionEnded)
		return nil, false
	}
	if s.OwnerUID != u.UID {
		fail(w, auth.ErrForbidden)
		return nil, false
	}
	return l, true
}

type sessionResponse struct {
	ID           string            `json:"id"`
	InvitationID string            `json:"invitationId,omitempty"`
	CustomerName string            `json:"customerName,omitempty"`
	EditMode     bool              `json:"editMode"`
	Readonly     bool              `json:"readonly"`
	Capabilities auth.Capabilities `json:"capabilities"`
	Status       autosave.Status   `json:"status"`
	EditorURL    string            `json:"editorUrl"`
	Link         string            `json:"link,omitempty"`
}

func (a *App) describe(l *liveSession) sessionResponse {
	s := l.sess
	resp := sessionResponse{
		ID:           s.ID,
		InvitationID: s.InvitationID(),
		CustomerName: l.name(),
		EditMode:     s.EditMode(),
		Readonly:     s.Readonly(),
		Capabilities: s.Capabilities(),
		Status:       l.saver.Status(),
		EditorURL:    "/editor/" + s.ID,
	}
	if resp.InvitationID != "" {
		resp.Link = invitation.Saved{ID: resp.InvitationID}.Link(a.Config.GetBaseUrl())
	}
	return resp
}

type createSessionRequest struct {
	TemplateID   string `json:"templateId"`
	InvitationID string `json:"invitationId"`
}

// CreateSession opens the editor on a fresh template or a saved invitation.
// POST /api/sessions
func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	u, ok := a.require(w, r, auth.NeedEdit)
	if !ok {
		return
	}
	var req createSessionRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	var l *liveSession
	switch {
	case strings.TrimSpace(req.InvitationID) != "":
		inv, err := a.Store.GetInvitation(r.Context(), strings.TrimSpace(req.InvitationID))
		if err != nil {
			fail(w, err)
			return
		}
		if !owns(u, inv) {
			fail(w, auth.ErrForbidden)
			return
		}
		d := inv.Data
		d.Style = inv.Style()
		l = a.open(u, d, &inv)
	case req.TemplateID != "":
		t, found := invitation.FindTemplate(req.TemplateID)
		if !found {
			utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Mẫu thiệp không tồn tại.")
			return
		}
		l = a.open(u, invitation.NewFromTemplate(t), nil)
	default:
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "templateId or invitationId is required.")
		return
	}
	logger.LogDebug("Editor: session %s opened by %s", l.sess.ID, u.Email)
	utils.WriteJSON(w, http.StatusCreated, a.describe(l))
}

// GET /api/sessions/{sid}
func (a *App) SessionStatus(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, false)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, a.describe(l))
}

// CloseSession ends the session. Edits not yet written by autosave are
// dropped.
// DELETE /api/sessions/{sid}
func (a *App) CloseSession(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, false)
	if !ok {
		return
	}
	a.Editors.Remove(l.sess.ID)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

type modeRequest struct {
	Edit bool `json:"edit"`
}

// POST /api/sessions/{sid}/mode
func (a *App) SetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}
	l, ok := a.lookup(w, r, req.Edit)
	if !ok {
		return
	}
	if err := l.sess.SetEditMode(req.Edit); err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, a.describe(l))
}

func fieldParam(w http.ResponseWriter, r *http.Request) (invitation.Field, bool) {
	f, err := invitation.ParseField(r.PathValue("field"))
	if err != nil {
		fail(w, err)
		return "", false
	}
	return f, true
}

// OpenField returns the prompt for a click on an editable region.
// GET /api/sessions/{sid}/fields/{field}?font=
func (a *App) OpenField(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, true)
	if !ok {
		return
	}
	field, ok := fieldParam(w, r)
	if !ok {
		return
	}
	font := utils.ParseInt(r.URL.Query().Get("font"), 0, editor.MinFontSize, editor.MaxFontSize)
	p, err := l.sess.Open(field, font)
	if err != nil {
		fail(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

type saveFieldRequest struct {
	Value    string `json:"value"`
	FontSize *int   `json:"fontSize"`
}

// PUT /api/sessions/{sid}/fields/{field}
func (a *App) SaveField(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, true)
	if !ok {
		return
	}
	field, ok := fieldParam(w, r)
	if !ok {
		return
	}
	var req saveFieldRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}
	if err := l.sess.SaveText(field, req.Value, req.FontSize); err != nil {
		fail(w, err)
		return
	}
	d := l.sess.Data()
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"field":    field,
		"value":    d.Get(field),
		"fontSize": d.FontSize(field, 0),
		"status":   l.saver.Status(),
	})
}

// CancelField closes the prompt of one field without touching the record.
// DELETE /api/sessions/{sid}/fields/{field}
func (a *App) CancelField(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, false)
	if !ok {
		return
	}
	field, ok := fieldParam(w, r)
	if !ok {
		return
	}
	l.sess.Cancel(field)
	utils.WriteJSON(w, http.StatusOK, map[string]any{"field": field, "cancelled": true})
}

type saveRequest struct {
	CustomerName string `json:"customerName"`
}

type saveResponse struct {
	ID           string `json:"id"`
	CustomerName string `json:"customerName"`
	Link         string `json:"link"`
	ToolLink     string `json:"toolLink"`
}

// SaveSession writes the record now: the first save creates the
// invitation, later ones update it.
// POST /api/sessions/{sid}/save
func (a *App) SaveSession(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, true)
	if !ok {
		return
	}
	var req saveRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}
	name := invitation.NormalizeName(req.CustomerName)
	if name == "" {
		fail(w, invitation.ErrCustomerNameNeeded)
		return
	}

	prev := l.setName(name)
	if err := l.saver.Flush(withTrigger(r.Context(), "save"), l.sess.Data()); err != nil {
		l.setName(prev)
		fail(w, err)
		return
	}

	id := l.sess.InvitationID()
	base := a.Config.GetBaseUrl()
	utils.WriteJSON(w, http.StatusOK, saveResponse{
		ID:           id,
		CustomerName: name,
		Link:         invitation.Saved{ID: id}.Link(base),
		ToolLink:     invitation.ToolLink(base, id),
	})
}

// RevealSection records that a section of the editor page played its
// entrance, so the reload after the next edit shows it in place.
// POST /api/sessions/{sid}/reveals/{section}
func (a *App) RevealSection(w http.ResponseWriter, r *http.Request) {
	l, ok := a.lookup(w, r, false)
	if !ok {
		return
	}
	tr := l.revealTracker(a.editorPage(l.sess))
	first := tr.Enter(r.PathValue("section"))
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"first": first})
}
