package httpapi

import (
	"net/http"
	"strings"

	"github.com/quillpost/quillpost"
)

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type changeLoginRequest struct {
	NewLogin string `json:"new_login"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.GetUserByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// ownUser parses the path id and checks that it is the caller's.
func ownUser(r *http.Request, callerID int64) (int64, error) {
	id, err := pathID(r)
	if err != nil {
		return 0, err
	}
	if id != callerID {
		return 0, quillpost.ErrForbidden
	}
	return id, nil
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := ownUser(r, callerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.users.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := ownUser(r, callerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.accounts.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeLogin(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := ownUser(r, callerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req changeLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.NewLogin) == "" {
		s.writeError(w, r, quillpost.ErrInvalidRequest)
		return
	}

	if err := s.users.ChangeLogin(r.Context(), id, req.NewLogin); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
