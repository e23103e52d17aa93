package handler

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/devforum/internal/apperror"
	"github.com/sakif/devforum/internal/auth"
	"github.com/sakif/devforum/internal/service"
)

// AuthHandler runs the login flow: redirect out to the identity provider,
// exchange the callback code for a profile, and turn that into a local
// session cookie.
type AuthHandler struct {
	provider      *auth.GitHubProvider
	authSvc       *service.AuthService
	profiles      *service.ProfileService
	secureCookies bool
	redirectAfter string
	logger        *slog.Logger
}

func NewAuthHandler(
	provider *auth.GitHubProvider,
	authSvc *service.AuthService,
	profiles *service.ProfileService,
	secureCookies bool,
	redirectAfter string,
	logger *slog.Logger,
) *AuthHandler {
	if redirectAfter == "" {
		redirectAfter = "/"
	}
	return &AuthHandler{
		provider:      provider,
		authSvc:       authSvc,
		profiles:      profiles,
		secureCookies: secureCookies,
		redirectAfter: redirectAfter,
		logger:        logger,
	}
}

// HandleLogin redirects the browser to the provider's authorization page.
// The random state lands in a short-lived cookie for the callback's CSRF
// check.
//
// GET /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, auth.StateCookie(state, h.secureCookies))
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the flow: state check, code exchange, account
// upsert, session cookie.
//
// GET /auth/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeError(w, apperror.Unauthorized("invalid OAuth state"))
		return
	}

	// Single-use: clear the state cookie regardless of outcome.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		writeError(w, apperror.Unauthorized("authorization was denied"))
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.Unauthorized("missing authorization code"))
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		writeError(w, apperror.Upstream("identity provider", err))
		return
	}

	_, token, err := h.authSvc.Login(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, 24*60*60, h.secureCookies))
	http.Redirect(w, r, h.redirectAfter, http.StatusTemporaryRedirect)
}

// HandleLogout clears the session cookie.
//
// POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.SessionCookie("", -1, h.secureCookies))
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// HandleMe returns the logged-in user's profile.
//
// GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("login required"))
		return
	}

	user, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileResponse(user))
}
