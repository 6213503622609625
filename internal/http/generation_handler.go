package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/recurring-bookings/internal/generation"
	"github.com/example/recurring-bookings/internal/occurrence"
)

// GenerationService is the surface of the booking generator the handlers use.
type GenerationService interface {
	Generate(ctx context.Context, scheduleID string, month occurrence.Month) (generation.Report, error)
	GenerateAll(ctx context.Context, month occurrence.Month) ([]generation.Report, error)
	GenerateDue(ctx context.Context) ([]generation.Report, error)
}

// GenerationHandler exposes booking generation over HTTP.
type GenerationHandler struct {
	service   GenerationService
	logger    *slog.Logger
	responder responder
}

// NewGenerationHandler wires the generation endpoints.
func NewGenerationHandler(service GenerationService, logger *slog.Logger) *GenerationHandler {
	logger = defaultLogger(logger)
	return &GenerationHandler{
		service:   service,
		logger:    logger,
		responder: newResponder(logger),
	}
}

type monthRequest struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (h *GenerationHandler) decodeMonth(w http.ResponseWriter, r *http.Request) (occurrence.Month, bool) {
	var body monthRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return occurrence.Month{}, false
	}

	month, err := occurrence.NewMonth(body.Year, body.Month)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMonth)
		return occurrence.Month{}, false
	}
	return month, true
}

// GenerateForSchedule handles POST /api/schedules/{id}/generate.
func (h *GenerationHandler) GenerateForSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scheduleID := chi.URLParam(r, "id")

	month, ok := h.decodeMonth(w, r)
	if !ok {
		return
	}

	logger := handlerLogger(ctx, h.logger, "generation", "generate",
		"schedule_id", scheduleID, "month", month.String())

	report, err := h.service.Generate(ctx, scheduleID, month)
	if err != nil {
		logger.ErrorContext(ctx, "generation failed", "error", err, "kind", generation.ErrorKind(err))
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "generation finished", "created", len(report.Created))
	h.responder.writeJSON(ctx, w, http.StatusOK, report)
}

// GenerateAll handles POST /api/schedules/generate-all.
func (h *GenerationHandler) GenerateAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	month, ok := h.decodeMonth(w, r)
	if !ok {
		return
	}

	logger := handlerLogger(ctx, h.logger, "generation", "generate_all", "month", month.String())

	reports, err := h.service.GenerateAll(ctx, month)
	if err != nil {
		logger.ErrorContext(ctx, "bulk generation failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "bulk generation finished", "schedules", len(reports))
	h.responder.writeJSON(ctx, w, http.StatusOK, reportsResponse{Reports: reports})
}

// GenerateDue handles POST /api/generation/due.
func (h *GenerationHandler) GenerateDue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := handlerLogger(ctx, h.logger, "generation", "generate_due")

	reports, err := h.service.GenerateDue(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "due generation failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	logger.InfoContext(ctx, "due generation finished", "schedules", len(reports))
	h.responder.writeJSON(ctx, w, http.StatusOK, reportsResponse{Reports: reports})
}

type reportsResponse struct {
	Reports []generation.Report `json:"reports"`
}
