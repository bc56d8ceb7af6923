package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SebastienMelki/numwindow/internal/nats"
	"github.com/SebastienMelki/numwindow/internal/numbers"
	"github.com/SebastienMelki/numwindow/internal/window"
)

// NumberFetcher retrieves the numbers for one identifier from upstream.
type NumberFetcher interface {
	Fetch(ctx context.Context, id numbers.Identifier) ([]float64, error)
}

// EventPublisher publishes window merge events.
type EventPublisher interface {
	PublishMerge(ctx context.Context, evt *nats.MergeEvent) error
}

// numbersResponse is the JSON body of a successful GET /numbers/{id}.
type numbersResponse struct {
	WindowPrevState []float64 `json:"windowPrevState"`
	WindowCurrState []float64 `json:"windowCurrState"`
	Numbers         []float64 `json:"numbers"`
	Avg             string    `json:"avg"`
}

// windowResponse is the JSON body of GET /window.
type windowResponse struct {
	WindowCurrState []float64 `json:"windowCurrState"`
	Avg             string    `json:"avg"`
	Capacity        int       `json:"capacity"`
}

// NumbersHandler serves the number window endpoints.
type NumbersHandler struct {
	fetcher   NumberFetcher
	window    window.Merger
	publisher EventPublisher
	logger    *slog.Logger
}

// NewNumbersHandler creates a handler. publisher may be nil.
func NewNumbersHandler(fetcher NumberFetcher, merger window.Merger, publisher EventPublisher, logger *slog.Logger) *NumbersHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NumbersHandler{
		fetcher:   fetcher,
		window:    merger,
		publisher: publisher,
		logger:    logger.With("component", "numbers-handler"),
	}
}

// RegisterRoutes mounts the number endpoints on the given ServeMux.
//
// Endpoints:
//   - GET /numbers/{id} - fetch from upstream and merge into the window
//   - GET /window       - current window without fetching
func (h *NumbersHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /numbers/{id}", h.handleNumbers)
	mux.HandleFunc("GET /window", h.handleWindow)
}

// handleNumbers handles GET /numbers/{id}.
func (h *NumbersHandler) handleNumbers(w http.ResponseWriter, r *http.Request) {
	id, err := numbers.ParseIdentifier(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidNumberID)
		return
	}

	fetched, err := h.fetcher.Fetch(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to fetch numbers",
			"identifier", id.String(),
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		if errors.Is(err, numbers.ErrInvalidIdentifier) {
			writeError(w, http.StatusBadRequest, msgInvalidNumberID)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	res := h.window.Merge(r.Context(), fetched)

	writeJSON(w, http.StatusOK, numbersResponse{
		WindowPrevState: res.Previous,
		WindowCurrState: res.Current,
		Numbers:         res.Fetched,
		Avg:             res.FormattedAverage(),
	})

	h.publish(r.Context(), id, res)
}

// handleWindow handles GET /window.
func (h *NumbersHandler) handleWindow(w http.ResponseWriter, _ *http.Request) {
	res := h.window.Snapshot()
	writeJSON(w, http.StatusOK, windowResponse{
		WindowCurrState: res.Current,
		Avg:             res.FormattedAverage(),
		Capacity:        h.window.Capacity(),
	})
}

// publish hands the merge event to the publisher. The server wraps the
// broker publisher in an eventQueue, so this never waits on the broker.
// Failures are logged only.
func (h *NumbersHandler) publish(ctx context.Context, id numbers.Identifier, res window.Result) {
	if h.publisher == nil {
		return
	}

	evt := &nats.MergeEvent{
		Identifier: id.String(),
		Category:   id.Category(),
		Fetched:    res.Fetched,
		Previous:   res.Previous,
		Current:    res.Current,
		Novel:      res.Novel,
		Avg:        res.FormattedAverage(),
	}

	if err := h.publisher.PublishMerge(ctx, evt); err != nil {
		h.logger.Warn("failed to publish merge event",
			"identifier", id.String(),
			"error", err,
		)
	}
}

// writeJSON writes a JSON response with the given status code and body.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
