package shipmentrepo_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	postgres_adapter "exportdocs/internal/adapters/out/postgres"
	"exportdocs/internal/adapters/out/postgres/shipmentrepo"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, shipment.StatusChangedEvent) error { return nil }

// ShipmentRepositoryIntegrationTestSuite runs the repository against a real
// PostgreSQL container.
type ShipmentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *shipmentrepo.GormShipmentRepository
	tracker    *MockAggregateTracker
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(connStr)
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
}

func (suite *ShipmentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE shipments, shipment_items, shipment_status_history").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = shipmentrepo.NewGormShipmentRepository(suite.db, suite.tracker, shipment.DefaultVATRate)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAdd_PersistsShipmentAndItems() {
	ctx := context.Background()
	s := suite.createTestShipment("EX000001", time.Now())
	suite.tracker.On("TrackAggregate", s.ID(), s).Once()

	suite.Require().NoError(suite.repository.Add(ctx, s))

	loaded, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal("EX000001", loaded.Waybill().String())
	suite.Equal(shipment.Pending, loaded.Status())
	suite.Equal(1, loaded.Version())
	suite.Equal("Somchai Export", loaded.Sender().Name())
	suite.Equal("2000", loaded.Destination().Postcode())
	suite.Equal("107.00", loaded.Totals().Total.String())
	suite.Require().Len(loaded.Items(), 2)
	suite.Equal("Ceramic bowls", loaded.Items()[0].Description())
	suite.Equal("Teak spoons", loaded.Items()[1].Description())
	suite.True(loaded.Items()[1].Weight().Equal(decimal.RequireFromString("0.750")))
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestAdd_DuplicateWaybill() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	suite.Require().NoError(suite.repository.Add(ctx, suite.createTestShipment("EX000001", time.Now())))
	err := suite.repository.Add(ctx, suite.createTestShipment("EX000001", time.Now()))

	suite.Require().ErrorIs(err, ports.ErrDuplicateWaybill)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestGetByWaybill() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000005", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))

	loaded, err := suite.repository.GetByWaybill(ctx, "EX000005")
	suite.Require().NoError(err)
	suite.True(loaded.ID().IsEqual(s.ID()))

	_, err = suite.repository.GetByWaybill(ctx, "EX999999")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_WritesStatusAndLedger() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))

	actor := kernel.NewUUID()
	_, err := s.RequestTransition(shipment.Confirmed, actor, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, s))
	suite.Equal(2, s.Version())

	loaded, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal(shipment.Confirmed, loaded.Status())
	suite.Equal(2, loaded.Version())
	suite.Require().NotNil(loaded.StatusChangedBy())
	suite.Equal(actor, *loaded.StatusChangedBy())

	history, err := suite.repository.History(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal(shipment.Pending, history[0].OldStatus())
	suite.Equal(shipment.Confirmed, history[0].NewStatus())
	suite.Equal(actor, history[0].ChangedBy())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_StaleVersion() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))

	first, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)

	_, err = first.RequestTransition(shipment.Confirmed, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, first))

	_, err = second.RequestTransition(shipment.Cancelled, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	err = suite.repository.Update(ctx, second)
	suite.Require().ErrorIs(err, ports.ErrConcurrentModification)

	history, err := suite.repository.History(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Len(history, 1)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_ReplacesItemsAndKeepsImages() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))

	kept := s.Items()[0]
	image, err := shipment.NewImageRef("img-1", "bowls.jpg")
	suite.Require().NoError(err)
	_, err = s.AttachItemImage(kept.ID(), image)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, s))

	replacement, err := shipment.NewItem(kept.ID(), "Ceramic bowls, glazed", kernel.MustMoney("12"), 3, decimal.NewFromInt(4))
	suite.Require().NoError(err)
	_, err = s.Amend(s.Details(), []*shipment.Item{replacement}, shipment.DefaultVATRate)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, s))

	loaded, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Require().Len(loaded.Items(), 1)
	suite.Equal("Ceramic bowls, glazed", loaded.Items()[0].Description())
	suite.Require().NotNil(loaded.Items()[0].Image())
	suite.Equal("img-1", loaded.Items()[0].Image().FileID())
	suite.Equal(3, loaded.Version())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_NotFound() {
	s := suite.createTestShipment("EX000001", time.Now())

	err := suite.repository.Update(context.Background(), s)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

// TestUpdate_ParentPurgedMidWrite removes the shipment row right after its
// update, so the item insert that follows fails its foreign key.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestUpdate_ParentPurgedMidWrite() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))
	suite.Require().NotEmpty(s.Items())

	suite.Require().NoError(suite.db.Exec(`
		CREATE FUNCTION purge_updated_shipment() RETURNS trigger AS $$
		BEGIN
			DELETE FROM shipments WHERE id = NEW.id;
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`).Error)
	suite.Require().NoError(suite.db.Exec(`
		CREATE TRIGGER purge_updated_shipment AFTER UPDATE ON shipments
		FOR EACH ROW EXECUTE FUNCTION purge_updated_shipment()`).Error)
	defer func() {
		suite.Require().NoError(suite.db.Exec("DROP TRIGGER purge_updated_shipment ON shipments").Error)
		suite.Require().NoError(suite.db.Exec("DROP FUNCTION purge_updated_shipment()").Error)
	}()

	_, err := s.RequestTransition(shipment.Confirmed, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)

	err = suite.repository.Update(ctx, s)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.NotErrorIs(err, ports.ErrConcurrentModification)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestDelete_CascadesItemsAndLedger() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))
	_, err := s.RequestTransition(shipment.Confirmed, kernel.NewUUID(), time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, s))

	suite.Require().NoError(suite.repository.Delete(ctx, s.ID()))

	suite.assertRowCount(&shipmentrepo.ItemDTO{}, 0)
	suite.assertRowCount(&shipmentrepo.StatusChangeDTO{}, 0)
	suite.Require().ErrorIs(suite.repository.Delete(ctx, s.ID()), errs.ErrObjectNotFound)
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestLastWaybillNumber() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	last, err := suite.repository.LastWaybillNumber(ctx)
	suite.Require().NoError(err)
	suite.Nil(last)

	base := time.Now().Add(-time.Hour)
	suite.Require().NoError(suite.repository.Add(ctx, suite.createTestShipment("EX000009", base)))
	suite.Require().NoError(suite.repository.Add(ctx, suite.createTestShipment("EX000010", base.Add(time.Minute))))

	last, err = suite.repository.LastWaybillNumber(ctx)
	suite.Require().NoError(err)
	suite.Require().NotNil(last)
	suite.Equal("EX000010", last.String())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) TestLastWaybillNumber_CorruptRowIsNotAClientError() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.Require().NoError(suite.repository.Add(ctx, suite.createTestShipment("EX000003", time.Now())))
	suite.Require().NoError(suite.db.Exec("UPDATE shipments SET waybill_number = 'LEGACY-3'").Error)

	_, err := suite.repository.LastWaybillNumber(ctx)

	suite.Require().ErrorIs(err, ports.ErrStoredDataIsCorrupt)
	suite.NotErrorIs(err, errs.ErrValueIsInvalid)
}

// TestConcurrentTransitions races two units of work requesting different
// transitions from the same status: exactly one must commit.
func (suite *ShipmentRepositoryIntegrationTestSuite) TestConcurrentTransitions() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	s := suite.createTestShipment("EX000001", time.Now())
	suite.Require().NoError(suite.repository.Add(ctx, s))

	factory := postgres_adapter.NewGormUnitOfWorkFactory(
		suite.db, shipment.DefaultVATRate, nopPublisher{}, slog.New(slog.NewTextHandler(io.Discard, nil)),
	)

	targets := []shipment.Status{shipment.Confirmed, shipment.Cancelled}
	results := make([]error, len(targets))
	loaded := make(chan struct{}, len(targets))
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()

			uow := factory.Create()
			if err := uow.Begin(ctx); err != nil {
				results[i] = err
				loaded <- struct{}{}
				return
			}
			defer func() { _ = uow.Rollback(ctx) }()

			current, err := uow.ShipmentRepository().Get(ctx, s.ID())
			loaded <- struct{}{}
			<-start
			if err != nil {
				results[i] = err
				return
			}
			if _, err = current.RequestTransition(target, kernel.NewUUID(), time.Now()); err != nil {
				results[i] = err
				return
			}
			if err = uow.ShipmentRepository().Update(ctx, current); err != nil {
				results[i] = err
				return
			}
			results[i] = uow.Commit(ctx)
		}()
	}

	for range targets {
		<-loaded
	}
	close(start)
	wg.Wait()

	var committed, conflicted int
	for _, err := range results {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ports.ErrConcurrentModification):
			conflicted++
		}
	}
	suite.Equal(1, committed)
	suite.Equal(1, conflicted)

	history, err := suite.repository.History(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)

	final, err := suite.repository.Get(ctx, s.ID())
	suite.Require().NoError(err)
	suite.Equal(history[0].NewStatus(), final.Status())
	suite.Equal(2, final.Version())
}

func (suite *ShipmentRepositoryIntegrationTestSuite) createTestShipment(waybill string, createdAt time.Time) *shipment.Shipment {
	number, err := shipment.ParseWaybillNumber(waybill)
	suite.Require().NoError(err)

	sender, err := kernel.NewContact("Somchai Export", "0812345678", "somchai@example.com", "99 Sukhumvit", "Somchai Co")
	suite.Require().NoError(err)
	receiver, err := kernel.NewContact("Mia Chen", "+61 400 000 000", "", "12 Harbour St", "")
	suite.Require().NoError(err)

	bowls, err := shipment.NewItem(kernel.NewUUID(), "Ceramic bowls", kernel.MustMoney("10"), 2, decimal.NewFromInt(3))
	suite.Require().NoError(err)
	spoons, err := shipment.NewItem(kernel.NewUUID(), "Teak spoons", kernel.MustMoney("4.50"), 12, decimal.RequireFromString("0.750"))
	suite.Require().NoError(err)

	s, err := shipment.NewShipment(
		kernel.NewUUID(),
		number,
		shipment.Details{
			Sender:      sender,
			Receiver:    receiver,
			Destination: kernel.NewDestination("12 Harbour St", "Australia", "2000"),
			Pricing:     shipment.NewPricing(kernel.MustMoney("100"), kernel.Zero(), kernel.Zero(), kernel.Zero(), kernel.Zero(), kernel.Zero()),
			Booking:     shipment.Booking{CustomerGroup: "retail", OrderBookedBy: "front desk"},
		},
		[]*shipment.Item{bowls, spoons},
		kernel.NewUUID(),
		false,
		shipment.DefaultVATRate,
		createdAt,
	)
	suite.Require().NoError(err)
	return s
}

func (suite *ShipmentRepositoryIntegrationTestSuite) assertRowCount(model any, expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(model).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestShipmentRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ShipmentRepositoryIntegrationTestSuite))
}
