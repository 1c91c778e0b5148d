package ports

import (
	"context"

	"exportdocs/internal/core/domain/model/shipment"
)

// EventPublisher delivers committed status changes to other systems.
// It is called after the unit of work commits; failures do not undo the change.
type EventPublisher interface {
	Publish(ctx context.Context, event shipment.StatusChangedEvent) error
}
