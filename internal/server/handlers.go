package server

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/opdusage/internal/chart"
	"github.com/theirongolddev/opdusage/internal/pipeline"
)

// AnalyzeRequest is the POST /v1/analyze body. An omitted field selects every
// observed value; an empty array selects none.
type AnalyzeRequest struct {
	RenewalTypes     []string `json:"renewal_types" validate:"max=256,dive,max=256"`
	PolicyStartYears []int    `json:"policy_start_years" validate:"max=256"`
	PlanTypes        []string `json:"plan_types" validate:"max=256,dive,max=256"`
	FamilyStructures []string `json:"family_structures" validate:"max=256,dive,max=256"`
	AgeBands         []string `json:"age_bands" validate:"max=256,dive,max=256"`
}

func (req AnalyzeRequest) selection() pipeline.Selection {
	sel := pipeline.Selection{
		RenewalTypes:     req.RenewalTypes,
		PlanTypes:        req.PlanTypes,
		FamilyStructures: req.FamilyStructures,
		AgeBands:         req.AgeBands,
	}
	if req.PolicyStartYears != nil {
		sel.PolicyStartYears = make([]string, len(req.PolicyStartYears))
		for i, y := range req.PolicyStartYears {
			sel.PolicyStartYears[i] = strconv.Itoa(y)
		}
	}
	return sel
}

// AnalyzeResponse wraps a pipeline result.
type AnalyzeResponse struct {
	SessionID string          `json:"session_id"`
	Empty     bool            `json:"empty"`
	Notice    string          `json:"notice,omitempty"`
	Result    pipeline.Result `json:"result"`
}

// ErrorResponse is the body of every 4xx/5xx reply.
type ErrorResponse struct {
	Error      string `json:"error"`
	Dimension  string `json:"dimension,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

var validate = validator.New()

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.snapshotStatus())
}

func (s *Service) handleDimensions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.session.Dimensions())
}

func (s *Service) handleAnalyzeQuery(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, selectionFromQuery(r.URL.Query()))
}

func (s *Service) handleAnalyzeBody(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.analyze(w, r, req.selection())
}

func (s *Service) analyze(w http.ResponseWriter, r *http.Request, sel pipeline.Selection) {
	res, ok := s.compute(w, r, sel)
	if !ok {
		return
	}

	resp := AnalyzeResponse{SessionID: s.session.ID, Result: res}
	if err := res.Err(); errors.Is(err, pipeline.ErrEmptyResult) {
		resp.Empty = true
		resp.Notice = err.Error()
	}
	render.JSON(w, r, resp)
}

func (s *Service) handleChart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := s.cfg.Chart
	if v, err := strconv.Atoi(q.Get("width")); err == nil && v > 0 && v <= 4096 {
		opts.Width = v
	}
	if v, err := strconv.Atoi(q.Get("height")); err == nil && v > 0 && v <= 4096 {
		opts.Height = v
	}

	res, ok := s.compute(w, r, selectionFromQuery(q))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderSlabs(&buf, res.Slabs, opts); err != nil {
		writeError(w, r, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// compute resolves the selection and runs the pipeline, writing a 400 on
// unknown filter values.
func (s *Service) compute(w http.ResponseWriter, r *http.Request, sel pipeline.Selection) (pipeline.Result, bool) {
	f, err := pipeline.ResolveFilter(s.session.Dimensions(), sel)
	if err != nil {
		resp := ErrorResponse{Error: err.Error()}
		var uv *pipeline.UnknownValueError
		if errors.As(err, &uv) {
			resp.Dimension = uv.Dimension
			resp.Suggestion = uv.Suggestion
		}
		writeError(w, r, http.StatusBadRequest, resp)
		return pipeline.Result{}, false
	}

	start := time.Now()
	res := pipeline.Compute(s.session, f)
	elapsed := time.Since(start)
	s.metrics.observeCompute(elapsed)

	s.recordAnalysis(Event{
		Type:       "analysis",
		Timestamp:  time.Now(),
		RequestID:  middleware.GetReqID(r.Context()),
		Matched:    res.Matched,
		Summary:    res.Summary,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
	})
	return res, true
}

func writeError(w http.ResponseWriter, r *http.Request, code int, resp ErrorResponse) {
	resp.RequestID = middleware.GetReqID(r.Context())
	render.Status(r, code)
	render.JSON(w, r, resp)
}

// Query parameter names for the five filter dimensions.
const (
	paramRenewal = "renewal"
	paramYear    = "year"
	paramPlan    = "plan"
	paramFamily  = "family"
	paramAgeBand = "age_band"
)

// selectionFromQuery reads repeatable parameters. An absent parameter selects
// everything; a present but empty one selects nothing.
func selectionFromQuery(q url.Values) pipeline.Selection {
	return pipeline.Selection{
		RenewalTypes:     queryList(q, paramRenewal),
		PolicyStartYears: queryList(q, paramYear),
		PlanTypes:        queryList(q, paramPlan),
		FamilyStructures: queryList(q, paramFamily),
		AgeBands:         queryList(q, paramAgeBand),
	}
}

func queryList(q url.Values, key string) []string {
	raw, ok := q[key]
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range raw {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
