package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/opdusage/internal/model"
	"github.com/theirongolddev/opdusage/internal/pipeline"
)

func f64(v float64) *float64 { return &v }

func testService(t *testing.T) *Service {
	t.Helper()
	raw := []model.RawRecord{
		{RenewalType: "New", PolicyStartYear: 2023, PlanType: "Gold", FamilyStructure: "Self", AgeBand: "26-35", Age: 30,
			OPDMRPAmount: f64(500), RefundAmount: nil, OPDLimit: f64(1000)},
		{RenewalType: "Renewal", PolicyStartYear: 2024, PlanType: "Silver", FamilyStructure: "Family", AgeBand: "36-45", Age: 40,
			OPDMRPAmount: f64(2000), RefundAmount: f64(400), OPDLimit: f64(2000)},
	}
	records, _ := pipeline.Clean(raw)
	session := pipeline.NewSession("test.csv", &pipeline.LoadResult{Records: records, TotalRows: len(raw)})
	return New(Config{EventsBuffer: 10}, session)
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func slabCount(resp AnalyzeResponse, label string) int {
	for _, s := range resp.Result.Slabs {
		if s.Label == label {
			return s.Count
		}
	}
	return -1
}

func TestHealthz(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAnalyze_GetSelectsAllByDefault(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/analyze", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Empty)
	assert.Equal(t, 3000.0, resp.Result.Summary.OPDAssigned)
	assert.Equal(t, 2900.0, resp.Result.Summary.OPDExhausted)
	assert.Equal(t, 2, resp.Result.Summary.TotalCustomers)
	require.Len(t, resp.Result.Slabs, 12)
	assert.Equal(t, 1, slabCount(resp, "41-50%"))
	assert.Equal(t, 1, slabCount(resp, ">100%"))
}

func TestAnalyze_GetWithFilters(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/analyze?plan=Silver&year=2024", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result.Matched)
	assert.Equal(t, 2000.0, resp.Result.Summary.OPDAssigned)
}

func TestAnalyze_EmptySelection(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/analyze?family=", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Empty)
	assert.Equal(t, pipeline.ErrEmptyResult.Error(), resp.Notice)
	require.Len(t, resp.Result.Slabs, 12)
	for _, s := range resp.Result.Slabs {
		assert.Zero(t, s.Count)
	}
}

func TestAnalyze_Post(t *testing.T) {
	body := `{"plan_types":["Gold"],"policy_start_years":[2023]}`
	rec := do(t, testService(t).Handler(), http.MethodPost, "/v1/analyze", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Result.Matched)
	assert.Equal(t, []int{2023}, resp.Result.Filter.PolicyStartYears)
	assert.Equal(t, []string{"New", "Renewal"}, resp.Result.Filter.RenewalTypes)
}

func TestAnalyze_UnknownValue(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/analyze?plan=Gld", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, pipeline.DimPlanType, resp.Dimension)
	assert.Equal(t, "Gold", resp.Suggestion)
	assert.NotEmpty(t, resp.RequestID)
}

func TestAnalyze_BadJSON(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodPost, "/v1/analyze", strings.NewReader(`{"plan_types":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDimensions(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/dimensions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var d model.Dimensions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, []string{"Gold", "Silver"}, d.PlanTypes)
	assert.Equal(t, []int{2023, 2024}, d.PolicyStartYears)
}

func TestChart(t *testing.T) {
	rec := do(t, testService(t).Handler(), http.MethodGet, "/v1/chart.png?width=640&height=320", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestStatusAndEvents(t *testing.T) {
	s := testService(t)
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/analyze", nil)
	req.Header.Set("X-Request-ID", "req-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	rec := do(t, h, http.MethodGet, "/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, s.session.ID, st.SessionID)
	assert.Equal(t, int64(1), st.AnalysisCount)
	assert.Equal(t, 2, st.Load.Records)

	rec = do(t, h, http.MethodGet, "/v1/events", nil)
	var events []Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, 2, events[0].Matched)
}

func TestMetrics(t *testing.T) {
	h := testService(t).Handler()
	do(t, h, http.MethodGet, "/v1/analyze", nil)
	do(t, h, http.MethodGet, "/v1/analyze?plan=nope", nil)

	rec := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `opdusage_http_requests_total{code="200",route="/v1/analyze"} 1`)
	assert.Contains(t, body, `opdusage_http_requests_total{code="400",route="/v1/analyze"} 1`)
	assert.Contains(t, body, "opdusage_session_records 2")
	assert.Contains(t, body, "opdusage_compute_duration_seconds_count 1")
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := testService(t)
	s.cfg.EventsBuffer = 2

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	require.Len(t, s.events, 2)
	assert.Equal(t, int64(2), s.events[0].ID)
	assert.Equal(t, int64(3), s.events[1].ID)
}

func TestPublishEventFanOut(t *testing.T) {
	s := testService(t)
	ch := make(chan Event, 1)
	id := s.addSubscriber(ch)

	s.recordAnalysis(Event{Type: "analysis", Matched: 5})
	ev := <-ch
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, 5, ev.Matched)

	s.removeSubscriber(id)
	s.recordAnalysis(Event{Type: "analysis"})
	assert.Empty(t, ch)
}
