package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/service"
)

// EventHandler serves the /api/event routes. Every route sits behind the
// auth guard.
type EventHandler struct {
	events *service.EventService
	logger *slog.Logger
}

func NewEventHandler(events *service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		logger: logger,
	}
}

// CreateEventResponse is the body of a successful create.
type CreateEventResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// HandleCreate stores a new event.
//
// HTTP: POST /api/event/events
// REQUEST BODY: all nine event fields, see model.EventFields
// RESPONSE: 201 {"id": "...", "title": "..."}
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var fields model.EventFields
	if err := decodeJSON(w, r, &fields, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	event, err := h.events.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateEventResponse{ID: event.ID, Title: event.Title})
}

// HandleUpdate replaces every field of an event. An "id" in the body is
// ignored; the URL decides which event changes.
//
// HTTP: PUT /api/event/events/{id}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fields model.EventFields
	if err := decodeJSON(w, r, &fields, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if _, err := h.events.Update(r.Context(), id, fields); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Event updated successfully."})
}

// HandleDelete removes an event.
//
// HTTP: DELETE /api/event/events/{id}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Event has been deleted successfully."})
}

// HandleList returns every event in creation order.
//
// HTTP: GET /api/event/events
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// HandleGetByID returns one event.
//
// HTTP: GET /api/event/events/{id}
func (h *EventHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// HandleFilter searches events.
//
// HTTP: POST /api/event/events/filter
// REQUEST BODY (all optional): {"title": "go", "startDate": "2024-01-01", "endDate": "2024-12-31"}
//
// Older clients send the same criteria as query parameters
// (?title=go&startDate=...). A query value is used for any field the body
// leaves empty, and the body itself may be empty.
func (h *EventHandler) HandleFilter(w http.ResponseWriter, r *http.Request) {
	var filter model.EventFilter
	if err := decodeJSON(w, r, &filter, true); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	q := r.URL.Query()
	if filter.Title == "" {
		filter.Title = q.Get("title")
	}
	if filter.StartDate == "" {
		filter.StartDate = q.Get("startDate")
	}
	if filter.EndDate == "" {
		filter.EndDate = q.Get("endDate")
	}

	events, err := h.events.Filter(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
