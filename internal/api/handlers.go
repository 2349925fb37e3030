package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"diff-review-planner/internal/processor"
	"diff-review-planner/internal/types"
)

// readPlanRequest extracts a plan request from the body. A JSON body
// carries the diff plus optional PR metadata; a text/plain body is
// taken as the raw diff itself. On failure the error response has
// already been written and ok is false.
func (s *Server) readPlanRequest(w http.ResponseWriter, r *http.Request) (*processor.PlanRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	if !utf8.Valid(body) {
		writeError(w, http.StatusBadRequest, "request body is not valid UTF-8")
		return nil, false
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		return &processor.PlanRequest{Diff: string(body)}, true
	}

	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	diff := gjson.GetBytes(body, "diff")
	if !diff.Exists() {
		writeError(w, http.StatusBadRequest, "diff is required")
		return nil, false
	}
	return &processor.PlanRequest{
		Diff:        diff.String(),
		Title:       gjson.GetBytes(body, "title").String(),
		Description: gjson.GetBytes(body, "description").String(),
	}, true
}

// handleParse returns the diff index without building a plan.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readPlanRequest(w, r)
	if !ok {
		return
	}
	index, err := s.processor.ParseDiff(req.Diff)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, index)
}

// handlePlan builds a heuristic plan. It never calls a model.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := s.readPlanRequest(w, r)
	if !ok {
		return
	}
	plan, err := s.processor.HeuristicPlan(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// handlePlanModel builds a model-raised plan. The semaphore bounds
// in-flight model work; callers beyond the cap get 429 instead of
// queueing behind slow generations.
func (s *Server) handlePlanModel(w http.ResponseWriter, r *http.Request) {
	if !s.processor.ModelEnabled() {
		writeError(w, http.StatusServiceUnavailable, "model planning is not configured")
		return
	}
	req, ok := s.readPlanRequest(w, r)
	if !ok {
		return
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	default:
		writeError(w, http.StatusTooManyRequests, "server busy, please retry later")
		return
	}

	plan, err := s.processor.ModelPlan(r.Context(), req)
	if err != nil {
		writeError(w, modelErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// modelErrorStatus maps a model-plan failure to a status code. Our own
// engine violating its schema is a 500; the provider failing is a 502;
// running out of time is a 504.
func modelErrorStatus(err error) int {
	switch {
	case errors.Is(err, processor.ErrModelDisabled):
		return http.StatusServiceUnavailable
	case types.IsEngineViolation(err):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

type batchRequest struct {
	Requests []processor.PlanRequest `json:"requests"`
	UseModel bool                    `json:"use_model,omitempty"`
}

type batchResponse struct {
	Results []processor.BatchResult `json:"results"`
}

// handlePlanBatch plans several diffs in one call. Results come back
// in request order; item failures are reported per item.
func (s *Server) handlePlanBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	var req batchRequest
	if err := readJSON(r, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := s.processor.PlanBatch(r.Context(), req.Requests, req.UseModel)
	if err != nil {
		if errors.Is(err, processor.ErrModelDisabled) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// handleLive reports process liveness.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports readiness plus whether model planning is
// available on this deployment.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"model_enabled": s.processor.ModelEnabled(),
	})
}
