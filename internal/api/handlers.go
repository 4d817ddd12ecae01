package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cynthialmy/llm-decision-flow/internal/governance"
	"github.com/cynthialmy/llm-decision-flow/internal/model"
)

const maxTranscriptBytes = 1 << 20 // 1 MiB

type analyzeRequest struct {
	Transcript string `json:"transcript"`
	Persist    *bool  `json:"persist,omitempty"`
}

type analyzeResponse struct {
	RecordID string                `json:"record_id,omitempty"`
	Result   *model.AnalysisResult `json:"result"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTranscriptBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		respondError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	result := s.analyzer.Analyze(r.Context(), req.Transcript, nil)

	resp := analyzeResponse{Result: result}
	persist := req.Persist == nil || *req.Persist
	if persist && s.store != nil {
		id, err := s.store.SaveDecision(r.Context(), req.Transcript, result)
		if err != nil {
			s.logger.Error("failed to persist decision", "error", err)
		} else {
			resp.RecordID = id
		}
		if result.Decision.RequiresHumanReview {
			reviewID, err := s.store.CreateReview(r.Context(), req.Transcript, result)
			if err != nil {
				s.logger.Error("failed to create review request", "error", err)
			} else {
				result.ReviewRequestID = reviewID
			}
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "governance store not configured")
		return
	}

	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.ReviewPending
	}
	if status == "all" {
		status = ""
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	reviews, err := s.store.ListReviews(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("failed to list reviews", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []model.ReviewRequest{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"reviews": reviews})
}

type submitReviewRequest struct {
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "governance store not configured")
		return
	}

	reviewID := chi.URLParam(r, "reviewID")
	var req submitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action, ok := parseAction(req.Action)
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}

	if err := s.store.SubmitReview(r.Context(), reviewID, action, req.Rationale); err != nil {
		if errors.Is(err, governance.ErrNoPendingReview) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error("submit review failed", "review_id", reviewID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to record review")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": reviewID, "status": model.ReviewReviewed})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "governance store not configured")
		return
	}

	windowDays := 30
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid days")
			return
		}
		windowDays = n
	}

	metrics, err := s.store.Metrics(r.Context(), windowDays)
	if err != nil {
		s.logger.Error("failed to compute metrics", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to compute metrics")
		return
	}
	respondJSON(w, http.StatusOK, metrics)
}

type saveConfigRequest struct {
	Thresholds map[string]float64 `json:"thresholds"`
	Prompts    map[string]string  `json:"prompts"`
	Rationale  string             `json:"rationale"`
	Activate   bool               `json:"activate"`
}

func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "governance store not configured")
		return
	}

	var req saveConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Thresholds) == 0 && len(req.Prompts) == 0 {
		respondError(w, http.StatusBadRequest, "thresholds or prompts required")
		return
	}

	id, err := s.store.SaveConfigVersion(r.Context(), req.Thresholds, req.Prompts, req.Rationale, req.Activate)
	if err != nil {
		s.logger.Error("failed to save config version", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save config version")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "active": req.Activate})
}

func parseAction(v string) (model.DecisionAction, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "allow":
		return model.ActionAllow, true
	case "label", "label / downrank", "downrank":
		return model.ActionLabelDownrank, true
	case "escalate", "escalate to human":
		return model.ActionEscalateHuman, true
	case "human confirmation", "confirm":
		return model.ActionHumanConfirmation, true
	default:
		return "", false
	}
}
