package handlers

import (
	"io/fs"
	"net/http"
	"sync"
	"time"

	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/config"
	"glow/internal/database"
	"glow/internal/editor"
	"glow/internal/identity"
	"glow/internal/layout"
	"glow/internal/media"
	"glow/internal/middleware"
	"glow/internal/rsvp"
	"glow/pkg/cache"
	"glow/pkg/utils"
)

// Deps is everything the HTTP surface needs. Google may be nil when sign-in
// is not configured.
type Deps struct {
	Config   *config.Config
	Store    *database.Store
	Editors  *editor.Manager
	Sessions *auth.Registry
	Tokens   *auth.Tokens
	Google   *identity.Google
	Media    media.Store
	RSVP     *rsvp.Service
	Cache    *cache.MemoryCache
	Pages    *layout.Renderer
	Static   fs.FS
}

type App struct {
	Deps

	limiter      *middleware.Limiter
	loginLimiter *middleware.Limiter
	rsvpLimiter  *middleware.Limiter

	mu   sync.Mutex
	live map[string]*liveSession

	backupMu sync.Mutex
	now      func() time.Time
}

func New(d Deps) *App {
	gl, rl := d.Config.Security.RateLimit, d.Config.Security.RSVPRateLimit
	return &App{
		Deps:    d,
		limiter: middleware.NewLimiter(gl.Requests, config.Duration(gl.Window, time.Second), gl.Burst),
		loginLimiter: middleware.NewLimiter(1, time.Second, 10).
			WithError(utils.ErrAuthRateLimitExceed, "Bạn đăng nhập quá nhiều lần, vui lòng chờ một chút."),
		rsvpLimiter: middleware.NewLimiter(rl.Requests, config.Duration(rl.Window, time.Minute), rl.Burst).
			WithError(utils.ErrRequestRateLimitExceeded, "Bạn gửi phản hồi quá nhanh, vui lòng thử lại sau."),
		live: make(map[string]*liveSession),
		now:  time.Now,
	}
}

// Limiters returns the route-level limiters so the caller can run their
// cleanup loops.
func (a *App) Limiters() []*middleware.Limiter {
	return []*middleware.Limiter{a.limiter, a.loginLimiter, a.rsvpLimiter}
}

func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("GET /{$}", a.Home)
	mux.HandleFunc("GET /editor/{sid}", a.EditorPage)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(a.Static)))
	mux.HandleFunc("GET /avatar/{seed}", a.Avatar)

	// Sign-in
	mux.Handle("GET /auth/login", a.loginLimiter.HandlerFunc(a.Login))
	mux.Handle("GET /auth/callback", a.loginLimiter.HandlerFunc(a.Callback))
	mux.HandleFunc("POST /auth/logout", a.Logout)
	mux.HandleFunc("GET /api/me", a.Me)

	// Edit sessions
	mux.HandleFunc("POST /api/sessions", a.CreateSession)
	mux.HandleFunc("GET /api/sessions/{sid}", a.SessionStatus)
	mux.HandleFunc("DELETE /api/sessions/{sid}", a.CloseSession)
	mux.HandleFunc("POST /api/sessions/{sid}/mode", a.SetMode)
	mux.HandleFunc("GET /api/sessions/{sid}/fields/{field}", a.OpenField)
	mux.HandleFunc("PUT /api/sessions/{sid}/fields/{field}", a.SaveField)
	mux.HandleFunc("DELETE /api/sessions/{sid}/fields/{field}", a.CancelField)
	mux.HandleFunc("POST /api/sessions/{sid}/images/{field}", a.UploadImage)
	mux.HandleFunc("POST /api/sessions/{sid}/music", a.UploadMusic)
	mux.HandleFunc("POST /api/sessions/{sid}/save", a.SaveSession)
	mux.HandleFunc("POST /api/sessions/{sid}/reveals/{section}", a.RevealSection)

	// Invitations
	mux.HandleFunc("GET /api/invitations", a.ListInvitations)
	mux.HandleFunc("GET /api/invitations/{id}", a.GetInvitation)
	mux.HandleFunc("DELETE /api/invitations/{id}", a.DeleteInvitation)
	mux.HandleFunc("GET /api/invitations/{id}/rsvps", a.ListRSVPs)
	mux.HandleFunc("POST /api/invitations/{id}/links", a.CreateLink)
	var submit http.Handler = http.HandlerFunc(a.SubmitRSVP)
	if a.Config.Security.RSVPRateLimit.Enabled {
		submit = a.rsvpLimiter.Handler(submit)
	}
	mux.Handle("POST /api/invitations/{id}/rsvp", submit)

	// Admin
	mux.HandleFunc("GET /api/admin/users", a.ListUsers)
	mux.HandleFunc("PUT /api/admin/users/{uid}/role", a.SetRole)
	mux.HandleFunc("GET /api/admin/stats", a.Stats)
	mux.HandleFunc("GET /api/admin/backup", a.Backup)

	if a.Config.Metrics.Enabled {
		appinfo.RegisterMetrics(a.Editors.Len)
		mux.Handle("GET /metrics", appinfo.MetricsHandler())
	}
	return mux
}

// Handler wraps the routes in the middleware chain.
func (a *App) Handler() http.Handler {
	sec := a.Config.Security
	var h http.Handler = a.Routes()
	h = middleware.Logger(h)
	h = middleware.Metrics(h)
	h = middleware.Cors(sec.CorsOrigins)(h)
	if sec.RateLimit.Enabled {
		h = a.limiter.Handler(h)
	}
	return middleware.Recover(h)
}
