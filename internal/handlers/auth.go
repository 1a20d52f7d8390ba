package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/identity"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

const (
	stateCookie    = "glow_oauth_state"
	verifierCookie = "glow_oauth_verifier"
	oauthCookieTTL = 10 * time.Minute
)

// Sign-in failures travel back to the landing page as a short code.
var loginErrors = map[string]error{
	"not_configured": identity.ErrNotConfigured,
	"cancelled":      identity.ErrCancelled,
	"invalid":        identity.ErrInvalidCredentials,
	"network":        identity.ErrNetwork,
}

func loginErrorCode(err error) string {
	for code, e := range loginErrors {
		if errors.Is(err, e) {
			return code
		}
	}
	return "failed"
}

// loginErrorMessage is the inverse of loginErrorCode for the landing page.
func loginErrorMessage(code string) string {
	if code == "" {
		return ""
	}
	if err, ok := loginErrors[code]; ok {
		return identity.Message(err)
	}
	return identity.Message(errors.New(code))
}

func setOAuthCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
	if ttl <= 0 {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

func (a *App) loginFailed(w http.ResponseWriter, r *http.Request, err error) {
	code := loginErrorCode(err)
	appinfo.SignIns.WithLabelValues(code).Inc()
	logger.LogWarn("Sign-in failed (%s): %v", code, err)
	http.Redirect(w, r, "/?login_error="+url.QueryEscape(code), http.StatusSeeOther)
}

// Login starts the Google authorization code flow with PKCE.
// GET /auth/login
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	if a.Google == nil {
		a.loginFailed(w, r, identity.ErrNotConfigured)
		return
	}
	state := uuid.NewString()
	verifier := identity.NewVerifier()
	setOAuthCookie(w, r, stateCookie, state, oauthCookieTTL)
	setOAuthCookie(w, r, verifierCookie, verifier, oauthCookieTTL)
	http.Redirect(w, r, a.Google.AuthCodeURL(state, verifier), http.StatusFound)
}

// Callback finishes the flow, reconciles the stored role and sets the
// session cookie.
// GET /auth/callback
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	if a.Google == nil {
		a.loginFailed(w, r, identity.ErrNotConfigured)
		return
	}
	q := r.URL.Query()
	if err := identity.CallbackError(q); err != nil {
		a.loginFailed(w, r, err)
		return
	}

	stateC, err1 := r.Cookie(stateCookie)
	verifierC, err2 := r.Cookie(verifierCookie)
	setOAuthCookie(w, r, stateCookie, "", 0)
	setOAuthCookie(w, r, verifierCookie, "", 0)
	if err1 != nil || err2 != nil || subtle.ConstantTimeCompare([]byte(stateC.Value), []byte(q.Get("state"))) != 1 {
		a.loginFailed(w, r, identity.ErrInvalidCredentials)
		return
	}

	profile, err := a.Google.Exchange(r.Context(), q.Get("code"), verifierC.Value)
	if err != nil {
		a.loginFailed(w, r, err)
		return
	}

	now := a.now()
	user, err := auth.Reconcile(r.Context(), a.Store, profile, a.Config.Auth.SuperAdmins, now)
	if err != nil {
		// Reconcile still returns a usable fail-closed user.
		logger.LogError("Sign-in: %v", err)
	}

	token, err := a.Tokens.Sign(user.UID, user.Email, now)
	if err != nil {
		a.loginFailed(w, r, err)
		return
	}
	a.Tokens.SetCookie(w, r, token)
	a.Sessions.For(user.UID).SignIn(user)
	appinfo.SignIns.WithLabelValues("ok").Inc()
	logger.LogInfo("Signed in: %s (%s)", user.Email, user.Role)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout clears the cookie and ends every edit session of the user.
// POST /auth/logout
func (a *App) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, err := a.Tokens.FromRequest(r); err == nil {
		if as, ok := a.Sessions.Lookup(claims.UserID); ok {
			as.SignOut()
		}
		for _, s := range a.Editors.ForOwner(claims.UserID) {
			a.Editors.Remove(s.ID)
		}
	}
	auth.ClearCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type meResponse struct {
	User         auth.User         `json:"user"`
	Capabilities auth.Capabilities `json:"capabilities"`
	Badge        string            `json:"badge"`
	Avatar       string            `json:"avatar"`
}

// GET /api/me
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := a.viewer(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, utils.ErrAuthRequired, "Vui lòng đăng nhập để tiếp tục.")
		return
	}
	utils.WriteJSON(w, http.StatusOK, meResponse{
		User:         u,
		Capabilities: u.Capabilities(),
		Badge:        u.Role.Badge(),
		Avatar:       avatarURL(u),
	})
}
