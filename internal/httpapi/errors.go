package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/quillpost/quillpost"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor is the single mapping from error class to status code.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, quillpost.ErrInvalidCredentials), errors.Is(err, quillpost.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, quillpost.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, quillpost.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, quillpost.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, quillpost.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as its status. The body never carries the error
// text; 500s are logged with it instead.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.writeStatus(w, r, status)
}

func (s *Server) writeStatus(w http.ResponseWriter, _ *http.Request, status int) {
	writeJSON(w, status, errorResponse{Error: strings.ToLower(http.StatusText(status))})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return quillpost.ErrInvalidRequest
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return quillpost.ErrInvalidRequest
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, quillpost.ErrInvalidRequest
	}
	return id, nil
}

// queryInt reads a non-negative integer parameter, def when absent.
func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, quillpost.ErrInvalidRequest
	}
	return v, nil
}
