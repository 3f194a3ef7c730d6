package http

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"gofinances/internal/core"
	applog "gofinances/internal/log"
	"gofinances/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady pings every configured dependency.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := s.checks[name].Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", "check", name, "error", err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := map[string]any{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	writeJSON(w, status, body)
}

// Stats are the request counters kept by the middleware chain.
type Stats struct {
	Requests      int64 `json:"requests"`
	RateLimited   int64 `json:"rate_limited"`
	Suspicious    int64 `json:"suspicious"`
	ActiveClients int   `json:"active_clients"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Stats{
		Requests:      s.tracer.TotalRequests(),
		RateLimited:   s.limiter.Rejected(),
		Suspicious:    s.detector.Flagged(),
		ActiveClients: s.limiter.ActiveClients(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.summary.Catalog())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	d, err := s.summary.Dashboard(r.Context(), userID)
	if err != nil {
		s.serviceError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	res, err := s.summary.Resume(r.Context(), userID, params.Year, params.Month)
	if err != nil {
		s.serviceError(w, r, "resume", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleResumeSnapshot returns the breakdown last stored by the worker.
func (s *Server) handleResumeSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		ErrorResponse(http.StatusNotFound, "snapshots are not enabled").Write(w)
		return
	}
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}
	params, err := ParseMonthParams(r.URL.Query(), s.now().In(s.loc))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	snap, found, err := s.snapshots.LoadResume(r.Context(), userID, params.Year, params.Month)
	if err != nil {
		s.serviceError(w, r, "snapshot", err)
		return
	}
	if !found {
		ErrorResponse(http.StatusNotFound, "no snapshot for this month").Write(w)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	in, err := ParseCreateInput(p, s.loc)
	if err != nil {
		ValidationError("invalid transaction", err.Error()).Write(w)
		return
	}

	tx, err := s.register.Create(r.Context(), userID, in)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			ValidationError("invalid transaction", validationDetail(err)).Write(w)
			return
		}
		s.serviceError(w, r, "create transaction", err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/users/"+userID+"/dashboard").
		Body(tx).
		Write(w)
}

func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, core.ErrEmptyUserID):
		BadRequestError("user id is required").Write(w)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		applog.FromContext(ctx).WarnContext(ctx, "Request cancelled", "operation", op, "error", err)
		ErrorResponse(http.StatusServiceUnavailable, "request cancelled").Write(w)
	default:
		applog.FromContext(ctx).ErrorContext(ctx, "Request failed", "operation", op, "error", err)
		InternalError().Write(w)
	}
}

func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.PathValue("userID"))
	if userID == "" {
		BadRequestError("user id is required").Write(w)
		return "", false
	}
	return userID, true
}

// validationDetail strips the wrapping sentinel from a validation error.
func validationDetail(err error) string {
	return strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": ")
}
