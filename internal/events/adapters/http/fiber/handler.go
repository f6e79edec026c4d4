package fiber

import (
	"context"
	"errors"
	"net/http"

	"churn-metrics-pipeline/internal/events/core/domain"
	"churn-metrics-pipeline/internal/events/core/usecase"
	"churn-metrics-pipeline/internal/pkg/daterange"
	platform "churn-metrics-pipeline/internal/platform/postgres"

	"github.com/gofiber/fiber/v2"
)

type LoadEventsUseCase interface {
	Execute(ctx context.Context, in usecase.LoadEventsInput) (usecase.LoadEventsResult, error)
}

type AnalyzeEventsUseCase interface {
	EventsPerAccount(ctx context.Context, in usecase.EventsPerAccountInput) ([]domain.EventFrequency, error)
	EventsPerDay(ctx context.Context, in usecase.EventsPerDayInput) (usecase.EventsPerDayResult, error)
}

type EventHandler struct {
	loadUC    LoadEventsUseCase
	analyzeUC AnalyzeEventsUseCase
	batchSize int
}

func NewEventHandler(loadUC LoadEventsUseCase, analyzeUC AnalyzeEventsUseCase, batchSize int) *EventHandler {
	return &EventHandler{loadUC: loadUC, analyzeUC: analyzeUC, batchSize: batchSize}
}

// Register mounts the event routes.
func (h *EventHandler) Register(r fiber.Router) {
	r.Post("/events", h.CreateEvent)
	r.Post("/events/bulk", h.BulkCreateEvents)
	r.Get("/events/per-account", h.EventsPerAccount)
	r.Get("/events/per-day", h.EventsPerDay)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Stores a single event; an existing (account_id, event_time, event_type) is reported as duplicate
// @Tags Events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event payload"
// @Success 201 {object} CreateEventResponse
// @Success 200 {object} CreateEventResponse "Duplicate event"
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}

	e, err := toEvent(req)
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.loadUC.Execute(c.UserContext(), usecase.LoadEventsInput{
		Source:    usecase.SliceSource{e},
		BatchSize: 1,
	})
	if err != nil {
		return writeError(c, err)
	}

	if res.Inserted == 0 {
		return c.Status(http.StatusOK).JSON(CreateEventResponse{Status: "duplicate"})
	}
	return c.Status(http.StatusCreated).JSON(CreateEventResponse{Status: "created"})
}

// BulkCreateEvents godoc
// @Summary Bulk create events
// @Description Validates every event, then inserts them in batches with one transaction per batch
// @Tags Events
// @Accept json
// @Produce json
// @Param request body BulkCreateEventsRequest true "Bulk event payload"
// @Success 201 {object} BulkCreateEventsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events/bulk [post]
func (h *EventHandler) BulkCreateEvents(c *fiber.Ctx) error {
	var req BulkCreateEventsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_json"})
	}
	if len(req.Events) == 0 {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "events_list_required"})
	}

	src := make(usecase.SliceSource, 0, len(req.Events))
	for _, r := range req.Events {
		e, err := toEvent(r)
		if err != nil {
			return writeError(c, err)
		}
		src = append(src, e)
	}

	res, err := h.loadUC.Execute(c.UserContext(), usecase.LoadEventsInput{Source: src, BatchSize: h.batchSize})
	if err != nil {
		return writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(BulkCreateEventsResponse{
		Created:    res.Inserted,
		Duplicates: res.Duplicates,
		Batches:    res.Batches,
	})
}

// EventsPerAccount godoc
// @Summary Event frequency per account per month
// @Tags Events
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} EventFrequencyResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events/per-account [get]
func (h *EventHandler) EventsPerAccount(c *fiber.Ctx) error {
	r, err := daterange.Parse(c.Query("start"), c.Query("end"))
	if err != nil {
		return writeError(c, err)
	}

	freqs, err := h.analyzeUC.EventsPerAccount(c.UserContext(), usecase.EventsPerAccountInput{Range: r})
	if err != nil {
		return writeError(c, err)
	}

	out := make([]EventFrequencyResponse, len(freqs))
	for i, f := range freqs {
		out[i] = EventFrequencyResponse(f)
	}
	return c.JSON(out)
}

// EventsPerDay godoc
// @Summary Daily counts for one event type
// @Tags Events
// @Produce json
// @Param event_type query string true "Event type name"
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} EventsPerDayResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /events/per-day [get]
func (h *EventHandler) EventsPerDay(c *fiber.Ctx) error {
	r, err := daterange.Parse(c.Query("start"), c.Query("end"))
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.analyzeUC.EventsPerDay(c.UserContext(), usecase.EventsPerDayInput{
		EventType: c.Query("event_type"),
		Range:     r,
	})
	if err != nil {
		return writeError(c, err)
	}

	s := res.Summary
	return c.JSON(EventsPerDayResponse{
		EventType: c.Query("event_type"),
		Days:      toDailyResponse(res.Counts),
		Summary: DailySummaryResponse{
			Days:         s.Days,
			DaysWithData: s.DaysWithData,
			ZeroDays:     s.ZeroDays,
			Mean:         s.Mean,
			Median:       s.Median,
			Min:          s.Min,
			Max:          s.Max,
			Gaps:         s.Gaps,
			Outliers:     toDailyResponse(s.Outliers),
		},
	})
}

func toEvent(r CreateEventRequest) (domain.Event, error) {
	t, err := domain.ParseEventTime(r.EventTime)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.Event{
		AccountID:      r.AccountID,
		EventTime:      t,
		EventType:      r.EventType,
		ProductID:      r.ProductID,
		AdditionalData: r.AdditionalData,
	}, nil
}

func toDailyResponse(counts []domain.DailyCount) []DailyCountResponse {
	out := make([]DailyCountResponse, len(counts))
	for i, c := range counts {
		out[i] = DailyCountResponse{EventDate: c.Day.Format(daterange.Layout), NEvent: c.NEvent}
	}
	return out
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidEvent),
		errors.Is(err, domain.ErrInvalidTimestamp):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_event", Message: err.Error()})
	case errors.Is(err, daterange.ErrInvalidDate),
		errors.Is(err, daterange.ErrInvalidRange),
		errors.Is(err, usecase.ErrEventTypeRequired):
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{Error: "invalid_query", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicateEvent):
		return c.Status(http.StatusConflict).JSON(ErrorResponse{Error: "duplicate_event", Message: err.Error()})
	case errors.Is(err, platform.ErrSchemaMissing):
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{Error: "not_loaded", Message: "no events loaded yet"})
	default:
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{Error: "internal_server_error"})
	}
}
