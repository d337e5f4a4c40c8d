package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/matcher"
	"github.com/jonathan/resume-matcher/internal/server/middleware"
	"github.com/jonathan/resume-matcher/internal/types"
)

// MaxBatchPairs bounds one batch request.
const MaxBatchPairs = 50

type matchRequest struct {
	Job            string                `json:"job" validate:"required"`
	Resume         string                `json:"resume" validate:"required_without=ResumeFeatures"`
	ResumeFeatures *types.ResumeFeatures `json:"resume_features,omitempty"`
	Options        *matcher.Options      `json:"options,omitempty"`
}

func (m matchRequest) pair() matcher.Pair {
	return matcher.Pair{
		Job:     m.Job,
		Resume:  matcher.ResumeInput{Content: m.Resume, Features: m.ResumeFeatures},
		Options: m.Options,
	}
}

type batchRequest struct {
	Pairs []matchRequest `json:"pairs" validate:"required,min=1,max=50,dive"`
}

func (b batchRequest) pairs() []matcher.Pair {
	out := make([]matcher.Pair, len(b.Pairs))
	for i, p := range b.Pairs {
		out[i] = p.pair()
	}
	return out
}

type batchResponse struct {
	RequestID string               `json:"request_id"`
	Count     int                  `json:"count"`
	Failed    int                  `json:"failed"`
	Results   []types.MatchOutcome `json:"results"`
}

type quickResponse struct {
	RequestID string             `json:"request_id"`
	Scores    []types.QuickScore `json:"scores"`
}

type streamEvent struct {
	Index int `json:"index"`
	types.MatchOutcome
}

// handleMatch analyzes a single job/resume pair.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	p := req.pair()
	out := s.matcher.AnalyzeMatch(r.Context(), p.Job, p.Resume, p.Options)
	if !out.OK() {
		s.jsonResponse(w, MatchErrorStatus(out.Error.ErrorType), out.Error)
		return
	}
	s.jsonResponse(w, http.StatusOK, out.Result)
}

// handleBatch analyzes many pairs and returns outcomes in request order.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	results := s.matcher.AnalyzeBatchMatches(r.Context(), req.pairs())
	failed := 0
	for _, o := range results {
		if !o.OK() {
			failed++
		}
	}
	s.jsonResponse(w, http.StatusOK, batchResponse{
		RequestID: requestID(r),
		Count:     len(results),
		Failed:    failed,
		Results:   results,
	})
}

// handleBatchStream streams each outcome as a "result" event when ready.
func (s *Server) handleBatchStream(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	stream, err := newMatchStream(w)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	failed := 0
	results := s.matcher.AnalyzeBatchStream(r.Context(), req.pairs(), func(i int, o types.MatchOutcome) {
		if !o.OK() {
			failed++
		}
		if err := stream.Result(streamEvent{Index: i, MatchOutcome: o}); err != nil {
			s.logger.Warn("failed to write stream event", zap.Int("index", i), zap.Error(err))
		}
	})
	if err := stream.Complete(requestID(r), len(results), failed); err != nil {
		s.logger.Warn("failed to write stream completion", zap.Error(err))
	}
}

// handleQuick returns lightweight scores without explanations.
func (s *Server) handleQuick(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}

	scores := s.matcher.GetQuickScores(r.Context(), req.pairs())
	s.jsonResponse(w, http.StatusOK, quickResponse{RequestID: requestID(r), Scores: scores})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.matcher.CacheStats())
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.matcher.ClearCache(r.Context()); err != nil {
		s.logger.Error("failed to clear embedding cache", zap.Error(err))
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScoringConfig(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.matcher.ScoringConfig())
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a size-limited JSON body into dst and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrBadJSON{Cause: err}
	}
	if err := s.validate.Struct(dst); err != nil {
		return toValidationError(err)
	}
	return nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := verrs[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return &ErrValidation{Field: field, Message: msg}
}

func requestID(r *http.Request) string {
	if id, err := middleware.GetRequestID(r); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
