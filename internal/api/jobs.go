package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/jobtrack-core/internal/auth"
	"github.com/nerrad567/jobtrack-core/internal/jobs"
)

// statusRequest is the body of PATCH /jobs/{id}/status.
type statusRequest struct {
	Status jobs.Status `json:"status"`
}

// handleListJobs returns a page of the caller's applications (all of them
// for admins).
//
// Query parameters:
//   - status: APPLIED, INTERVIEW, OFFER or REJECTED
//   - page: zero-based page number (default 0)
//   - size: page size, 1-100 (default 10)
//   - sort: asc or desc by applied date (default desc)
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := jobs.ListQuery{Sort: jobs.ParseSort(q.Get("sort"))}

	if v := q.Get("status"); v != "" {
		status, ok := jobs.ParseStatus(v)
		if !ok {
			writeValidationError(w, "status must be one of APPLIED, INTERVIEW, OFFER, REJECTED")
			return
		}
		query.Status = status
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"page", &query.Page},
		{"size", &query.Size},
	} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			writeValidationError(w, p.name+" must be an integer")
			return
		}
		*p.dst = n
	}
	if q.Has("size") && query.Size == 0 {
		writeValidationError(w, "size must be between 1 and 100")
		return
	}

	page, err := s.jobs.List(r.Context(), auth.FromContext(r.Context()), query)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleCreateJob creates an application owned by the caller.
func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var in jobs.Input
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	app, err := s.jobs.Create(r.Context(), auth.FromContext(r.Context()), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// handleJobStats returns outcome counts for the caller's applications.
func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.jobs.Stats(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGetJob returns a single application.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	app, err := s.jobs.Get(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleUpdateJob replaces the editable fields of an application.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	var in jobs.Input
	if err := decodeJSON(r, &in); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	app, err := s.jobs.Update(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleUpdateJobStatus changes only the status of an application.
func (s *Server) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	app, err := s.jobs.UpdateStatus(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleDeleteJob removes an application.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.jobs.Delete(r.Context(), auth.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
