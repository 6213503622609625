package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/recurring-bookings/internal/generation"
	"github.com/example/recurring-bookings/internal/occurrence"
)

type stubService struct {
	report    generation.Report
	reports   []generation.Report
	summaries []generation.ScheduleSummary
	err       error

	lastScheduleID string
	lastMonth      occurrence.Month
}

func (s *stubService) Generate(_ context.Context, scheduleID string, month occurrence.Month) (generation.Report, error) {
	s.lastScheduleID = scheduleID
	s.lastMonth = month
	return s.report, s.err
}

func (s *stubService) GenerateAll(_ context.Context, month occurrence.Month) ([]generation.Report, error) {
	s.lastMonth = month
	return s.reports, s.err
}

func (s *stubService) GenerateDue(context.Context) ([]generation.Report, error) {
	return s.reports, s.err
}

func (s *stubService) ListSchedules(context.Context) ([]generation.ScheduleSummary, error) {
	return s.summaries, s.err
}

func (s *stubService) GetSchedule(_ context.Context, id string) (generation.ScheduleSummary, error) {
	s.lastScheduleID = id
	if s.err != nil {
		return generation.ScheduleSummary{}, s.err
	}
	if len(s.summaries) == 0 {
		return generation.ScheduleSummary{}, generation.ErrNotFound
	}
	return s.summaries[0], nil
}

func newTestServer(service *stubService, health func(context.Context) error) *httptest.Server {
	router := NewRouter(RouterConfig{
		Generation: NewGenerationHandler(service, nil),
		Schedules:  NewScheduleHandler(service, nil),
		Health:     health,
	})
	return httptest.NewServer(router)
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func TestGenerateForSchedule(t *testing.T) {
	t.Parallel()

	t.Run("returns the report", func(t *testing.T) {
		t.Parallel()

		service := &stubService{report: generation.Report{
			ScheduleID: "sched-1",
			Month:      "2024-01",
			Created: []generation.CreatedBooking{{
				BookingID: "bk-1",
				Reference: "BK-1700000000-A1B2",
				Date:      time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
			}},
		}}
		server := newTestServer(service, nil)
		defer server.Close()

		resp := postJSON(t, server.URL+"/api/schedules/sched-1/generate", `{"year":2024,"month":1}`)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var report generation.Report
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
		assert.Equal(t, "sched-1", report.ScheduleID)
		require.Len(t, report.Created, 1)
		assert.Equal(t, "BK-1700000000-A1B2", report.Created[0].Reference)

		assert.Equal(t, "sched-1", service.lastScheduleID)
		assert.Equal(t, occurrence.Month{Year: 2024, Month: time.January}, service.lastMonth)
	})

	t.Run("unknown schedule maps to 404", func(t *testing.T) {
		t.Parallel()

		service := &stubService{err: generation.ErrNotFound}
		server := newTestServer(service, nil)
		defer server.Close()

		resp := postJSON(t, server.URL+"/api/schedules/missing/generate", `{"year":2024,"month":1}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(&stubService{}, nil)
		defer server.Close()

		resp := postJSON(t, server.URL+"/api/schedules/sched-1/generate", `{"year":`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid month maps to 400", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(&stubService{}, nil)
		defer server.Close()

		resp := postJSON(t, server.URL+"/api/schedules/sched-1/generate", `{"year":2024,"month":13}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unexpected failure maps to 500", func(t *testing.T) {
		t.Parallel()

		service := &stubService{err: errors.New("storage down")}
		server := newTestServer(service, nil)
		defer server.Close()

		resp := postJSON(t, server.URL+"/api/schedules/sched-1/generate", `{"year":2024,"month":1}`)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGenerateAll(t *testing.T) {
	t.Parallel()

	service := &stubService{reports: []generation.Report{
		{ScheduleID: "sched-1", Month: "2024-01"},
		{ScheduleID: "sched-2", Month: "2024-01", SkippedReason: generation.SkipInvalid},
	}}
	server := newTestServer(service, nil)
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/schedules/generate-all", `{"year":2024,"month":1}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reports []generation.Report `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Reports, 2)
	assert.Equal(t, generation.SkipInvalid, body.Reports[1].SkippedReason)
}

func TestGenerateDue(t *testing.T) {
	t.Parallel()

	service := &stubService{reports: []generation.Report{{ScheduleID: "sched-1", Month: "2024-02"}}}
	server := newTestServer(service, nil)
	defer server.Close()

	resp := postJSON(t, server.URL+"/api/generation/due", ``)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Reports []generation.Report `json:"reports"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, "2024-02", body.Reports[0].Month)
}

func TestScheduleListing(t *testing.T) {
	t.Parallel()

	t.Run("list returns summaries with due hints", func(t *testing.T) {
		t.Parallel()

		service := &stubService{summaries: []generation.ScheduleSummary{{
			ID:                  "sched-1",
			CustomerID:          "cust-1",
			Frequency:           "weekly",
			NextGenerationMonth: "2024-02",
		}}}
		server := newTestServer(service, nil)
		defer server.Close()

		resp, err := http.Get(server.URL + "/api/schedules")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Schedules []generation.ScheduleSummary `json:"schedules"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Schedules, 1)
		assert.Equal(t, "2024-02", body.Schedules[0].NextGenerationMonth)
	})

	t.Run("get of unknown schedule maps to 404", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(&stubService{}, nil)
		defer server.Close()

		resp, err := http.Get(server.URL + "/api/schedules/missing")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(&stubService{}, func(context.Context) error { return nil })
		defer server.Close()

		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unhealthy storage maps to 503", func(t *testing.T) {
		t.Parallel()

		server := newTestServer(&stubService{}, func(context.Context) error { return errors.New("down") })
		defer server.Close()

		resp, err := http.Get(server.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
