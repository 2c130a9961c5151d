package server

import (
	"net/http"
	"strconv"

	"github.com/diogenes-ai-code/gtadmin/internal/backend"
	"github.com/diogenes-ai-code/gtadmin/internal/errors"
)

// SignInRequest is the body of a sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse describes the signed-in account without its tokens.
type SessionResponse struct {
	SignedIn bool   `json:"signedIn"`
	Email    string `json:"email,omitempty"`
}

// requireBackend writes a 503 and returns nil when no backend is
// configured.
func (s *Server) requireBackend(w http.ResponseWriter) Backend {
	if s.config.Backend == nil {
		writeSharedError(w, errors.Unavailable("backend not configured").
			WithSuggestion("Set [backend] url in config.toml or GTADMIN_BACKEND_URL"))
		return nil
	}
	return s.config.Backend
}

func sessionResponse(sess *backend.Session) SessionResponse {
	if sess == nil {
		return SessionResponse{}
	}
	return SessionResponse{SignedIn: true, Email: sess.User.Email}
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	var req SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeSharedError(w, err)
		return
	}
	sess, err := b.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	if err := b.SignOut(r.Context()); err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(b.Session()))
}

func (s *Server) handleHouseholds(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	households, err := b.Households(r.Context())
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, households)
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	members, err := b.Members(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handleInvitations(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	invitations, err := b.Invitations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

func (s *Server) handleRoomActivity(w http.ResponseWriter, r *http.Request) {
	b := s.requireBackend(w)
	if b == nil {
		return
	}
	days := backend.DefaultActivityDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeSharedError(w, errors.InvalidArgs("invalid days: %q", v))
			return
		}
		days = n
	}
	rows, err := b.RoomActivity(r.Context(), r.PathValue("configId"), days)
	if err != nil {
		writeSharedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
