// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the JSON data files
//
// Services accept plain Go values, never *http.Request, and return
// apperror values. The handler layer alone decides status codes.
//
// Services depend on repository interfaces (repository.EventRepository,
// repository.UserRepository, ...), not on the jsonfile package, so tests can
// pass in-memory fakes and main.go decides which store backs them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/repository"
)

const msgEventFieldsRequired = "All fields are mandatory: title, description, category, venue, capacity, speakerPerformer, totalNumberOfParticipants, startDate, endDate."

// EventService handles business logic for events.
type EventService struct {
	repo   repository.EventRepository
	logger *slog.Logger
}

func NewEventService(repo repository.EventRepository, logger *slog.Logger) *EventService {
	return &EventService{
		repo:   repo,
		logger: logger,
	}
}

// Create validates fields and stores a new event. The repository assigns
// the ID.
//
// All nine fields are mandatory. For capacity and totalNumberOfParticipants
// zero counts as missing.
func (s *EventService) Create(ctx context.Context, fields model.EventFields) (*model.Event, error) {
	if err := validateRequired(fields, msgEventFieldsRequired); err != nil {
		return nil, err
	}

	event := &model.Event{EventFields: fields}
	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event",
			slog.String("title", fields.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.String("id", event.ID),
		slog.String("title", event.Title),
	)
	return event, nil
}

// Update replaces every field of the event with the given ID. The ID itself
// never changes, whatever the request body says.
func (s *EventService) Update(ctx context.Context, id string, fields model.EventFields) (*model.Event, error) {
	if err := validateRequired(fields, msgEventFieldsRequired); err != nil {
		return nil, err
	}

	event := &model.Event{ID: id, EventFields: fields}
	if err := s.repo.Update(ctx, event); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update event",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating event %s: %w", id, err)
	}

	s.logger.Info("event updated", slog.String("id", id))
	return event, nil
}

// Delete removes the event with the given ID.
// Returns apperror.ErrNotFound if there is no such event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete event",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting event %s: %w", id, err)
	}

	s.logger.Info("event deleted", slog.String("id", id))
	return nil
}

// GetByID returns apperror.ErrNotFound if the event doesn't exist.
func (s *EventService) GetByID(ctx context.Context, id string) (*model.Event, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every event in the order they were created.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Filter returns the events matching every non-empty criterion of f.
// An empty filter returns all events.
func (s *EventService) Filter(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("filtering events: %w", err)
	}
	if f.IsEmpty() {
		return events, nil
	}

	matched, err := filterEvents(events, f)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("events filtered",
		slog.String("title", f.Title),
		slog.String("startDate", f.StartDate),
		slog.String("endDate", f.EndDate),
		slog.Int("matched", len(matched)),
		slog.Int("total", len(events)),
	)
	return matched, nil
}
