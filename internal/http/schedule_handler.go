package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/recurring-bookings/internal/generation"
)

// ScheduleReader is the read-only schedule surface the handlers use.
type ScheduleReader interface {
	ListSchedules(ctx context.Context) ([]generation.ScheduleSummary, error)
	GetSchedule(ctx context.Context, id string) (generation.ScheduleSummary, error)
}

// ScheduleHandler exposes read-only schedule listings over HTTP.
type ScheduleHandler struct {
	service   ScheduleReader
	logger    *slog.Logger
	responder responder
}

// NewScheduleHandler wires the schedule listing endpoints.
func NewScheduleHandler(service ScheduleReader, logger *slog.Logger) *ScheduleHandler {
	logger = defaultLogger(logger)
	return &ScheduleHandler{
		service:   service,
		logger:    logger,
		responder: newResponder(logger),
	}
}

// List handles GET /api/schedules.
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "schedules", "list")

	summaries, err := h.service.ListSchedules(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "listing schedules failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if summaries == nil {
		summaries = []generation.ScheduleSummary{}
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, schedulesResponse{Schedules: summaries})
}

// Get handles GET /api/schedules/{id}.
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID := chi.URLParam(r, "id")
	logger := handlerLogger(ctx, h.logger, "schedules", "get", "schedule_id", scheduleID)

	summary, err := h.service.GetSchedule(ctx, scheduleID)
	if err != nil {
		logger.ErrorContext(ctx, "loading schedule failed", "error", err, "kind", generation.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, summary)
}

type schedulesResponse struct {
	Schedules []generation.ScheduleSummary `json:"schedules"`
}
