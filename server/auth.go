package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rustyeddy/tradejournal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	User    auth.User `json:"user"`
}

type sessionResponse struct {
	User *auth.User `json:"user"`
}

func (s *Server) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	u, err := s.deps.Users.Authenticate(req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logFrom(r).Info().Str("username", req.Username).Msg("login rejected")
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}

	token, err := s.deps.Tokens.Issue(u)
	if err != nil {
		s.writeStoreError(w, r, err, "")
		return
	}
	http.SetCookie(w, s.sessionCookie(token, int(s.deps.Tokens.TTL().Seconds())))
	logFrom(r).Info().Str("owner", u.ID).Msg("login")
	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, s.sessionCookie("", -1))
	writeOK(w)
}

// handleSession reports the signed-in user, or null. It never fails.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	u, err := s.sessionUser(r)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: &u})
}
