// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/research-agent/internal/jobs"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

const (
	minQueryLength    = 5
	maxQueryLength    = 500
	defaultMaxResults = 10
	maxMaxResults     = 20
	maxRequestBytes   = 1 << 16
	maxPageSize       = 100
)

type researchRequest struct {
	Query            string `json:"query"`
	UserID           string `json:"user_id"`
	MaxResults       *int   `json:"max_results"`
	IncludeCitations *bool  `json:"include_citations"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationResponse struct {
	Error   string       `json:"error"`
	Details []fieldError `json:"details"`
}

// validate applies the request rules and defaults.
func (in researchRequest) validate() (types.ResearchRequest, []fieldError) {
	var errs []fieldError

	n := utf8.RuneCountInString(in.Query)
	switch {
	case n < minQueryLength:
		errs = append(errs, fieldError{"query", fmt.Sprintf("must be at least %d characters", minQueryLength)})
	case n > maxQueryLength:
		errs = append(errs, fieldError{"query", fmt.Sprintf("must be at most %d characters", maxQueryLength)})
	}

	maxResults := defaultMaxResults
	if in.MaxResults != nil {
		maxResults = *in.MaxResults
		if maxResults < 1 || maxResults > maxMaxResults {
			errs = append(errs, fieldError{"max_results", fmt.Sprintf("must be between 1 and %d", maxMaxResults)})
		}
	}

	includeCitations := true
	if in.IncludeCitations != nil {
		includeCitations = *in.IncludeCitations
	}

	return types.ResearchRequest{
		Query:            in.Query,
		UserID:           in.UserID,
		MaxResults:       maxResults,
		IncludeCitations: includeCitations,
	}, errs
}

func (s *Server) createResearch(w http.ResponseWriter, r *http.Request) {
	var in researchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&in); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Error:   "Validation Error",
			Details: []fieldError{{"body", "invalid JSON: " + err.Error()}},
		})
		return
	}

	req, errs := in.validate()
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "Validation Error", Details: errs})
		return
	}

	job, err := s.runner.Submit(r.Context(), req)
	if err != nil {
		s.log.Error("creating research job", logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to create research job: "+err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) getResearch(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type statusResponse struct {
	JobID        string          `json:"job_id"`
	Status       types.JobStatus `json:"status"`
	Progress     types.Step      `json:"progress,omitempty"`
	DocumentURL  string          `json:"document_url,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		JobID:        job.ID,
		Status:       job.Status,
		Progress:     job.Progress,
		DocumentURL:  job.DocumentURL,
		ErrorMessage: job.ErrorMessage,
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*types.Job, bool) {
	id := chi.URLParam(r, "id")
	job, err := s.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Job %s not found", id))
		return nil, false
	}
	if err != nil {
		s.log.Error("reading job", logging.String("job_id", id), logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to read job")
		return nil, false
	}
	return job, true
}

type listResponse struct {
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Jobs   []*types.Job `json:"jobs"`
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 10, 1, maxPageSize)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "Validation Error", Details: []fieldError{{"limit", err.Error()}}})
		return
	}
	offset, err := intParam(r, "offset", 0, 0, -1)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Error: "Validation Error", Details: []fieldError{{"offset", err.Error()}}})
		return
	}

	list, total, err := s.store.List(r.Context(), limit, offset)
	if err != nil {
		s.log.Error("listing jobs", logging.Err(err))
		writeError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Total: total, Limit: limit, Offset: offset, Jobs: list})
}

// intParam reads an integer query parameter in [lo, hi]. A negative hi
// means unbounded.
func intParam(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if v < lo || (hi >= 0 && v > hi) {
		if hi < 0 {
			return 0, fmt.Errorf("must be at least %d", lo)
		}
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	return v, nil
}
