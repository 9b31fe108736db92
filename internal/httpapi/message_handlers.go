package httpapi

import (
	"context"
	"net/http"

	"github.com/quillpost/quillpost"
)

const defaultPageSize = 100

type createMessageRequest struct {
	UserID int64  `json:"user_id"`
	Text   string `json:"text"`
}

type updateMessageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, _ int64) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	messages, err := s.messages.List(r.Context(), limit, offset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if messages == nil {
		messages = []quillpost.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleCreateMessage only lets callers post as themselves.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request, callerID int64) {
	var req createMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.UserID != callerID {
		s.writeError(w, r, quillpost.ErrForbidden)
		return
	}

	msg, err := s.messages.Create(r.Context(), req.UserID, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request, _ int64) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.messages.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

// ownMessage loads message id and checks the caller wrote it. A missing
// message is reported before ownership.
func (s *Server) ownMessage(ctx context.Context, id, callerID int64) error {
	msg, err := s.messages.Get(ctx, id)
	if err != nil {
		return err
	}
	if msg.UserID != callerID {
		return quillpost.ErrForbidden
	}
	return nil
}

func (s *Server) handleUpdateMessage(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req updateMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownMessage(r.Context(), id, callerID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.messages.UpdateText(r.Context(), id, req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.ownMessage(r.Context(), id, callerID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.messages.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
