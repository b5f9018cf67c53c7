package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/alexanderramin/ambitions/internal/app"
	"github.com/alexanderramin/ambitions/internal/contract"
	"github.com/alexanderramin/ambitions/internal/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(r.Context()); err != nil {
			s.logger.ErrorContext(r.Context(), "health check failed", "error", err)
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handlePatchStatus handles PATCH /goals/{id}/status.
func (s *Server) handlePatchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body contract.StatusPatchRequest
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Status) == "" {
		s.writeError(w, r, app.InvalidStatusError(""))
		return
	}

	view, err := s.lifecycle.Transition(r.Context(), body.ToTransition(id, callerEmail(r.Context())))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.FromView(view))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	views, err := s.goals.List(r.Context(), app.GoalListFilter{
		OwnerID:  q.Get("owner"),
		Status:   domain.GoalStatus(q.Get("status")),
		ParentID: q.Get("parent"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.FromViews(views))
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var body contract.CreateGoalRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.goals.Create(r.Context(), body.ToInput(), callerEmail(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, contract.FromView(view))
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	view, err := s.goals.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.FromView(view))
}

func (s *Server) handleEditGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var body contract.EditGoalRequest
	if !s.decode(w, r, &body) {
		return
	}
	view, err := s.goals.Edit(r.Context(), id, body.ToPatch(), callerEmail(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.FromView(view))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	warnings, err := s.goals.Delete(r.Context(), id, callerEmail(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.DeleteResponse{
		ID:       id,
		Deleted:  true,
		Warnings: contract.FromWarnings(warnings),
	})
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, contract.FromPeople(people))
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		s.writeError(w, r, app.ValidationError("id", "goal id is required"))
		return "", false
	}
	return id, true
}

// decode reads a JSON body into dst, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeError(w, r, app.ValidationError("body", "request body is required"))
			return false
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			s.writeError(w, r, app.ValidationError(typeErr.Field, "%s must be a %s", typeErr.Field, typeErr.Type))
			return false
		}
		s.writeError(w, r, app.ValidationError("body", "request body is not valid JSON"))
		return false
	}
	return true
}

// statusFor maps an error code to its HTTP status. Anything not caller-fixable
// is a 500.
func statusFor(err error) int {
	switch app.CodeOf(err) {
	case app.ErrValidation, app.ErrInvalidTransition:
		return http.StatusBadRequest
	case app.ErrForbiddenRole:
		return http.StatusForbidden
	case app.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	s.writeJSON(w, status, contract.FromError(err))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", "error", err)
	}
}
