// Package postgres provides the GORM-based unit of work.
//
// A unit of work wraps one database transaction. Repositories obtained from
// it run inside that transaction and register every shipment they write;
// once Commit succeeds the status changes of those shipments are handed to
// the event publisher.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	s, err := uow.ShipmentRepository().Get(ctx, id)
//	// ... change s
//	if err := uow.ShipmentRepository().Update(ctx, s); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
package postgres

import (
	"context"
	"log/slog"
	"time"

	"exportdocs/internal/adapters/out/postgres/shipmentrepo"
	"exportdocs/internal/adapters/out/postgres/userrepo"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// DefaultPublishTimeout bounds the publication of one commit's events.
const DefaultPublishTimeout = 3 * time.Second

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db             *gorm.DB
	rate           shipment.VATRate
	publisher      ports.EventPublisher
	publishTimeout time.Duration
	logger         *slog.Logger
}

type FactoryOption func(*GormUnitOfWorkFactory)

// WithPublishTimeout overrides DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) FactoryOption {
	return func(f *GormUnitOfWorkFactory) {
		if d > 0 {
			f.publishTimeout = d
		}
	}
}

// NewGormUnitOfWorkFactory creates a factory. rate is used to recompute the
// totals of loaded shipments; publisher receives committed status changes.
func NewGormUnitOfWorkFactory(
	db *gorm.DB,
	rate shipment.VATRate,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	opts ...FactoryOption,
) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{
		db:             db,
		rate:           rate,
		publisher:      publisher,
		publishTimeout: DefaultPublishTimeout,
		logger:         logger.With("component", "unit_of_work"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create produces a fresh unit of work with its own transaction state.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		rate:              f.rate,
		publisher:         f.publisher,
		publishTimeout:    f.publishTimeout,
		logger:            f.logger,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one transaction and the aggregates written in it.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	rate      shipment.VATRate
	publisher ports.EventPublisher
	logger    *slog.Logger

	publishTimeout    time.Duration
	trackedAggregates []trackedAggregate
}

// Begin starts the transaction. Calling it again while a transaction is
// active is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit commits the transaction and then publishes the status changes of
// every tracked shipment. Publication runs detached from ctx cancellation
// under its own deadline. Failures are logged, not returned: the change is
// already durable.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	uow.publishTracked(ctx)
	return nil
}

// Rollback discards the transaction and every tracked aggregate.
// It returns gorm.ErrInvalidTransaction when no transaction is active.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

// ShipmentRepository returns a repository bound to the active transaction,
// or to the connection pool when none is active.
func (uow *GormUnitOfWork) ShipmentRepository() ports.ShipmentRepository {
	return shipmentrepo.NewGormShipmentRepository(uow.conn(), uow, uow.rate)
}

// UserRepository returns a repository bound to the active transaction,
// or to the connection pool when none is active.
func (uow *GormUnitOfWork) UserRepository() ports.UserRepository {
	return userrepo.NewGormUserRepository(uow.conn())
}

// TrackAggregate registers an aggregate written in this unit of work.
// An aggregate tracked twice is kept once.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	for i, tracked := range uow.trackedAggregates {
		if tracked.ID.IsEqual(id) {
			uow.trackedAggregates[i].Aggregate = aggregate
			return
		}
	}
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) publishTracked(parent context.Context) {
	tracked := uow.trackedAggregates
	uow.trackedAggregates = make([]trackedAggregate, 0)
	if len(tracked) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), uow.publishTimeout)
	defer cancel()

	for _, t := range tracked {
		s, ok := t.Aggregate.(*shipment.Shipment)
		if !ok {
			continue
		}
		for _, event := range s.StatusChangedEvents() {
			if err := uow.publisher.Publish(ctx, event); err != nil {
				uow.logger.ErrorContext(ctx, "failed to publish status change",
					"shipment_id", event.ShipmentID.String(),
					"waybill", event.Waybill,
					"new_status", event.NewStatus.String(),
					"error", err,
				)
			}
		}
		s.ClearPendingStatusChanges()
	}
}
