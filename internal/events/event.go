package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MessageCreated Type = "message.created"
	MessageUpdated Type = "message.updated"
	MessageDeleted Type = "message.deleted"
)

// Event describes one successful mutation of a message.
type Event struct {
	Type           Type      `json:"type"`
	OrganizationID uuid.UUID `json:"organizationId"`
	MessageID      uuid.UUID `json:"messageId"`
	Title          string    `json:"title,omitempty"`
	At             time.Time `json:"at"`
}

// Sink receives dispatched events. Implementations must honour ctx.
type Sink interface {
	Name() string
	Publish(ctx context.Context, event Event) error
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops every event. Useful when no dispatcher is running.
var Discard = discard{}
