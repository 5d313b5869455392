package suppliers

import (
	"context"
	"time"
)

// Action names a supplier mutation.
type Action string

const (
	ActionCreated Action = "supplier.created"
	ActionUpdated Action = "supplier.updated"
	ActionDeleted Action = "supplier.deleted"
)

// Event describes a committed supplier mutation.
type Event struct {
	ID         string
	Action     Action
	SupplierID int64
	At         time.Time
}

// EventPublisher hands mutation events to the audit pipeline.
type EventPublisher interface {
	PublishSupplierEvent(ctx context.Context, ev Event) error
}

// OperationRecorder counts handler outcomes per operation.
type OperationRecorder interface {
	ObserveOperation(operation, outcome string)
}

type noopPublisher struct{}

func (noopPublisher) PublishSupplierEvent(context.Context, Event) error { return nil }

type noopRecorder struct{}

func (noopRecorder) ObserveOperation(string, string) {}
