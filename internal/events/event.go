// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"phonebook_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Phone Number Domain Events
// =============================================================================

// PhoneNumberCreated is published after a number is stored, whatever the path.
type PhoneNumberCreated struct {
	BaseEvent
	PhoneNumberID    int64  `json:"phoneNumberId"`
	NormalizedNumber string `json:"normalizedNumber"`
	CategoryID       int64  `json:"categoryId"`
	Source           string `json:"source"`
}

func (e PhoneNumberCreated) EventName() string { return "phonenumbers.created" }

// PhoneNumberDeleted is published after a number is removed.
type PhoneNumberDeleted struct {
	BaseEvent
	PhoneNumberID int64 `json:"phoneNumberId"`
}

func (e PhoneNumberDeleted) EventName() string { return "phonenumbers.deleted" }

// BulkImportCompleted is published once per bulk import with its summary.
type BulkImportCompleted struct {
	BaseEvent
	Source     string         `json:"source"`
	Total      int            `json:"total"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	ErrorCodes map[string]int `json:"errorCodes"`
}

func (e BulkImportCompleted) EventName() string { return "phonenumbers.bulk_import.completed" }

// =============================================================================
// Category Domain Events
// =============================================================================

// CategoryCreated is published after a category is stored.
type CategoryCreated struct {
	BaseEvent
	CategoryID int64  `json:"categoryId"`
	Name       string `json:"name"`
}

func (e CategoryCreated) EventName() string { return "categories.created" }

// CategoryDeleted is published after a category is removed.
type CategoryDeleted struct {
	BaseEvent
	CategoryID int64 `json:"categoryId"`
}

func (e CategoryDeleted) EventName() string { return "categories.deleted" }
