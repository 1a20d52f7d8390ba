package handlers

import (
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/database"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

type userRow struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	Role      auth.Role `json:"role"`
	Badge     string    `json:"badge"`
	LastLogin time.Time `json:"lastLogin"`
}

func toUserRow(u auth.User) userRow {
	return userRow{
		UID:       u.UID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    avatarURL(u),
		Role:      u.Role,
		Badge:     u.Role.Badge(),
		LastLogin: u.LastLogin,
	}
}

// GET /api/admin/users
func (a *App) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.NeedAdmin); !ok {
		return
	}
	users, err := a.Store.ListUsers(r.Context())
	if err != nil {
		fail(w, err)
		return
	}
	rows := make([]userRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, toUserRow(u))
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

type roleRequest struct {
	Role  string `json:"role"`
	Cycle bool   `json:"cycle"`
}

// SetRole sets a role explicitly or advances it one step in the
// user -> editor -> admin cycle. Open editors of that user follow at once.
// PUT /api/admin/users/{uid}/role
func (a *App) SetRole(w http.ResponseWriter, r *http.Request) {
	admin, ok := a.require(w, r, auth.NeedAdmin)
	if !ok {
		return
	}
	var req roleRequest
	if err := utils.DecodeJSON(w, r, jsonLimit, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, utils.ErrRequestInvalid, "Invalid request body.")
		return
	}

	uid := r.PathValue("uid")
	var role auth.Role
	if req.Cycle {
		target, err := a.Store.GetUser(r.Context(), uid)
		if err != nil {
			fail(w, err)
			return
		}
		role = auth.NextRole(target.Role)
	} else {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			fail(w, err)
			return
		}
		role = parsed
	}

	updated, err := a.Store.SetUserRole(r.Context(), uid, role)
	if err != nil {
		fail(w, err)
		return
	}
	if as, ok := a.Sessions.Lookup(uid); ok {
		as.SetRole(role)
	}
	logger.LogInfo("Role of %s set to %s by %s", updated.Email, role, admin.Email)
	utils.WriteJSON(w, http.StatusOK, toUserRow(updated))
}

type statsResponse struct {
	Database      database.Stats    `json:"database"`
	Roles         map[auth.Role]int `json:"roles"`
	Invitations   int64             `json:"invitations"`
	DataSize      int64             `json:"dataSize"`
	RSVPs         int64             `json:"rsvps"`
	EditSessions  int               `json:"editSessions"`
	CachedItems   int               `json:"cachedItems"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptimeSeconds"`
	RamUsage      uint64            `json:"ramUsage"`
	NumGoroutines int               `json:"numGoroutines"`
	MaxUploadSize string            `json:"maxUploadSize"`
}

// Stats returns server health and content totals.
// GET /api/admin/stats
func (a *App) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.require(w, r, auth.NeedAdmin); !ok {
		return
	}

	var (
		dbStats database.Stats
		roles   = make(map[auth.Role]int)
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		st, err := a.Store.Stats(ctx)
		dbStats = st
		return err
	})
	g.Go(func() error {
		users, err := a.Store.ListUsers(ctx)
		for _, u := range users {
			roles[u.Role]++
		}
		return err
	})
	if err := g.Wait(); err != nil {
		fail(w, err)
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := appinfo.Uptime()

	utils.WriteJSON(w, http.StatusOK, statsResponse{
		Database:      dbStats,
		Roles:         roles,
		Invitations:   appinfo.TotalInvitations.Load(),
		DataSize:      appinfo.TotalDataSize.Load(),
		RSVPs:         appinfo.TotalRSVPs.Load(),
		EditSessions:  a.Editors.Len(),
		CachedItems:   a.Cache.Len(),
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		RamUsage:      m.Alloc,
		NumGoroutines: runtime.NumGoroutine(),
		MaxUploadSize: utils.FormatBytes(a.uploadLimit()),
	})
}
