package jsonfile

import (
	"context"
	"log/slog"

	"github.com/rs/xid"
	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/repository"
)

var _ repository.EventRepository = (*EventStore)(nil)

// EventStore holds event records in insertion order, backed by events.json.
type EventStore struct {
	events *Collection[model.Event]
}

func NewEventStore(path string, logger *slog.Logger) *EventStore {
	return &EventStore{events: NewCollection[model.Event](path, logger)}
}

func errEventNotFound() error {
	return apperror.NotFound("Event not found.")
}

// Create assigns a new xid to event.ID and appends the event.
func (s *EventStore) Create(ctx context.Context, event *model.Event) error {
	return s.events.Update(ctx, func(events []model.Event) ([]model.Event, error) {
		event.ID = xid.New().String()
		return append(events, *event), nil
	})
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	events, err := s.events.Load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range events {
		if events[i].ID == id {
			e := events[i]
			return &e, nil
		}
	}
	return nil, errEventNotFound()
}

// List returns every event in insertion order.
func (s *EventStore) List(ctx context.Context) ([]model.Event, error) {
	return s.events.Load(ctx)
}

// Update replaces the stored event with the same ID. The record keeps its
// position in the file.
func (s *EventStore) Update(ctx context.Context, event *model.Event) error {
	return s.events.Update(ctx, func(events []model.Event) ([]model.Event, error) {
		for i := range events {
			if events[i].ID == event.ID {
				events[i] = *event
				return events, nil
			}
		}
		return nil, errEventNotFound()
	})
}

func (s *EventStore) Delete(ctx context.Context, id string) error {
	return s.events.Update(ctx, func(events []model.Event) ([]model.Event, error) {
		for i := range events {
			if events[i].ID == id {
				return append(events[:i], events[i+1:]...), nil
			}
		}
		return nil, errEventNotFound()
	})
}
