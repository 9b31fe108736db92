package httpapi

import (
	"net/http"
	"strings"

	"github.com/quillpost/quillpost"
	"github.com/quillpost/quillpost/middleware"
)

type credentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

func toUserResponse(u quillpost.UserRecord) userResponse {
	return userResponse{ID: u.ID, Login: u.Login}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	token, err := s.accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// handleLogout deletes the session the request was admitted with.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ int64) {
	token, _ := middleware.BearerToken(r.Header.Get("Authorization"))
	if err := s.accounts.Logout(r.Context(), token); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Login) == "" {
		s.writeError(w, r, quillpost.ErrInvalidRequest)
		return
	}

	user, err := s.accounts.CreateAccount(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}
