package shipmentrepo

import (
	"context"
	"errors"
	"fmt"

	"exportdocs/internal/adapters/out/postgres/pgerr"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// waybillLockKey is the pg_advisory_xact_lock key that serializes waybill allocation.
const waybillLockKey int64 = 0x45585742

// GormShipmentRepository implements ports.ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
	rate    shipment.VATRate
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormShipmentRepository creates a repository bound to db. Loaded
// shipments have their totals recomputed with rate.
func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker, rate shipment.VATRate) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
		rate:    rate,
	}
}

// Add saves a new shipment with its items and any pending ledger entries.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err, waybillUniqueIndex) {
			return fmt.Errorf("%w: %s", ports.ErrDuplicateWaybill, dto.WaybillNumber)
		}
		return err
	}

	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the shipment only if its stored version still equals the
// version it was loaded with, then replaces its items and appends pending
// ledger entries. On success the aggregate's version is advanced.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&ShipmentDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "created_at", "created_by", "Items", "History").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate.ID())
	}

	if err := r.replaceItems(ctx, dto); err != nil {
		return err
	}

	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	aggregate.MarkUpdated()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a shipment with its items by ID.
func (r *GormShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.withItems(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipment", id.String())
		}
		return nil, err
	}

	return toDomain(dto, r.rate)
}

// GetByWaybill retrieves a shipment with its items by waybill number.
func (r *GormShipmentRepository) GetByWaybill(ctx context.Context, waybill string) (*shipment.Shipment, error) {
	var dto ShipmentDTO
	if err := r.withItems(ctx).First(&dto, "waybill_number = ?", waybill).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("waybill", waybill)
		}
		return nil, err
	}

	return toDomain(dto, r.rate)
}

// Delete purges a shipment. Items and ledger rows are removed by cascade.
func (r *GormShipmentRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&ShipmentDTO{}, "id = ?", id.Bytes())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("shipment", id.String())
	}
	return nil
}

// LockWaybillSequence takes a transaction-scoped advisory lock; it is
// released when the surrounding transaction commits or rolls back.
func (r *GormShipmentRepository) LockWaybillSequence(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", waybillLockKey).Error
}

// LastWaybillNumber returns the waybill of the most recently created shipment.
func (r *GormShipmentRepository) LastWaybillNumber(ctx context.Context) (*shipment.WaybillNumber, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&ShipmentDTO{}).
		Order("created_at DESC").
		Order("length(waybill_number) DESC").
		Order("waybill_number DESC").
		Limit(1).
		Pluck("waybill_number", &numbers).Error
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		return nil, nil
	}

	last, err := shipment.ParseWaybillNumber(numbers[0])
	if err != nil {
		return nil, fmt.Errorf("%w: last waybill: %v", ports.ErrStoredDataIsCorrupt, err)
	}
	return &last, nil
}

// History returns the ledger of a shipment ordered by changed_at.
func (r *GormShipmentRepository) History(ctx context.Context, id kernel.UUID) ([]shipment.StatusChange, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dtos []StatusChangeDTO
	if err := r.db.WithContext(ctx).
		Where("shipment_id = ?", id.Bytes()).
		Order("changed_at ASC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	changes := make([]shipment.StatusChange, 0, len(dtos))
	for _, dto := range dtos {
		change, err := statusChangeToDomain(dto)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}

	return changes, nil
}

func (r *GormShipmentRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormShipmentRepository) missingOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&ShipmentDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("shipment", id.String())
	}
	return fmt.Errorf("%w: shipment %s", ports.ErrConcurrentModification, id)
}

func (r *GormShipmentRepository) replaceItems(ctx context.Context, dto ShipmentDTO) error {
	if err := r.db.WithContext(ctx).Where("shipment_id = ?", dto.ID).Delete(&ItemDTO{}).Error; err != nil {
		return err
	}
	if len(dto.Items) == 0 {
		return nil
	}
	return parentGone(dto.ID, r.db.WithContext(ctx).Create(&dto.Items).Error)
}

// appendHistory inserts the aggregate's pending ledger entries. Entries
// already written by an earlier call in the same transaction are skipped.
func (r *GormShipmentRepository) appendHistory(ctx context.Context, aggregate *shipment.Shipment) error {
	pending := aggregate.PendingStatusChanges()
	if len(pending) == 0 {
		return nil
	}

	dtos := make([]StatusChangeDTO, 0, len(pending))
	for _, change := range pending {
		dtos = append(dtos, statusChangeFromDomain(change))
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dtos).Error
	return parentGone(aggregate.ID().Bytes(), err)
}

// parentGone reports a child row insert that lost its shipment to a purge as
// not found.
func parentGone(id uuid.UUID, err error) error {
	if err != nil && pgerr.IsForeignKeyViolation(err) {
		return errs.NewObjectNotFoundErrorWithCause("shipment", id.String(), err)
	}
	return err
}
