package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// EventFields is the client-editable part of an Event: everything except the ID.
//
// It doubles as the request schema for create and update. Every field is
// mandatory: the `validate:"required"` tags are enforced by the service layer
// with go-playground/validator. For the Count fields "required" means
// non-zero, so 0 counts as missing.
type EventFields struct {
	Title                     string `json:"title"                     validate:"required"`
	Description               string `json:"description"               validate:"required"`
	Category                  string `json:"category"                  validate:"required"`
	Venue                     string `json:"venue"                     validate:"required"`
	Capacity                  Count  `json:"capacity"                  validate:"required"`
	SpeakerPerformer          string `json:"speakerPerformer"          validate:"required"`
	TotalNumberOfParticipants Count  `json:"totalNumberOfParticipants" validate:"required"`
	StartDate                 string `json:"startDate"                 validate:"required"`
	EndDate                   string `json:"endDate"                   validate:"required"`
}

// Event is a stored event record.
//
// EMBEDDED STRUCT:
// Embedding EventFields (no field name) promotes its fields, so e.Title works
// directly and encoding/json flattens them into the same JSON object:
//
//	{"id":"cv37rs3pp9olc6atsptg","title":"Demo","description":"...",...}
//
// An update replaces the whole embedded EventFields and keeps ID.
type Event struct {
	ID string `json:"id"`
	EventFields
}

// EventFilter holds the optional criteria of an event search.
// An empty field does not restrict the result.
type EventFilter struct {
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// IsEmpty reports whether no criterion is set.
func (f EventFilter) IsEmpty() bool {
	return f.Title == "" && f.StartDate == "" && f.EndDate == ""
}

// Count is a non-negative quantity such as a capacity. It is written as a
// JSON number but also accepts a quoted number ("120"), which is what HTML
// form inputs submit.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*c = 0
			return nil
		}
		data = []byte(s)
	}

	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("model: %q is not a whole number", data)
	}
	if n < 0 {
		return fmt.Errorf("model: %d must not be negative", n)
	}
	*c = Count(n)
	return nil
}
