package commands_test

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	postgres_adapter "exportdocs/internal/adapters/out/postgres"
	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/domain/services"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, shipment.StatusChangedEvent) error { return nil }

type gormUoWFactory struct {
	factory *postgres_adapter.GormUnitOfWorkFactory
}

func (f gormUoWFactory) Create() commands.UoW {
	return f.factory.Create()
}

// CreateShipmentIntegrationTestSuite runs the create handler against a real
// PostgreSQL so waybill allocation is exercised under the advisory lock.
type CreateShipmentIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	uows      gormUoWFactory
	clerk     *user.User
}

func (suite *CreateShipmentIntegrationTestSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := postgres_adapter.Open(dsn)
	suite.Require().NoError(err)
	suite.db = db
	suite.Require().NoError(postgres_adapter.Migrate(db))

	suite.uows = gormUoWFactory{factory: postgres_adapter.NewGormUnitOfWorkFactory(
		db, shipment.DefaultVATRate, nopPublisher{}, slog.New(slog.DiscardHandler))}
}

func (suite *CreateShipmentIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *CreateShipmentIntegrationTestSuite) SetupTest() {
	ctx := context.Background()
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE shipments, shipment_items, shipment_status_history, users").Error)

	clerk, err := user.NewUser(kernel.NewUUID(), "clerk", "Nok Clerk", "password123", user.Role{})
	suite.Require().NoError(err)

	uow := suite.uows.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.UserRepository().Add(ctx, clerk))
	suite.Require().NoError(uow.Commit(ctx))
	suite.clerk = clerk
}

func (suite *CreateShipmentIntegrationTestSuite) handler() commands.CreateShipmentCommandHandler {
	sequencer, err := services.NewWaybillSequencer("EX")
	suite.Require().NoError(err)
	return commands.NewCreateShipmentCommandHandler(suite.uows, sequencer, services.NewPricingCalculator(shipment.DefaultVATRate))
}

func (suite *CreateShipmentIntegrationTestSuite) TestConcurrentCreatesGetContiguousWaybills() {
	const workers = 8
	handler := suite.handler()

	waybills := make([]string, workers)
	errs := make([]error, workers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			cmd, err := commands.NewCreateShipmentCommand(
				kernel.NewUUID(), suite.clerk.ID(), testDetails(suite.T()), testItemInputs(), false)
			if err != nil {
				errs[i] = err
				return
			}

			<-start
			created, err := handler.Handle(context.Background(), cmd)
			if err != nil {
				errs[i] = err
				return
			}
			waybills[i] = created.Waybill().String()
		}()
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		suite.Require().NoError(err, "worker %d", i)
	}

	slices.Sort(waybills)
	expected := make([]string, workers)
	for i := range workers {
		expected[i] = fmt.Sprintf("EX%06d", i+1)
	}
	suite.Equal(expected, waybills)

	var stored int64
	suite.Require().NoError(suite.db.Raw("SELECT count(DISTINCT waybill_number) FROM shipments").Scan(&stored).Error)
	suite.Equal(int64(workers), stored)
}

func (suite *CreateShipmentIntegrationTestSuite) TestCreateContinuesAfterExistingWaybill() {
	handler := suite.handler()

	for _, expected := range []string{"EX000001", "EX000002"} {
		cmd, err := commands.NewCreateShipmentCommand(
			kernel.NewUUID(), suite.clerk.ID(), testDetails(suite.T()), testItemInputs(), false)
		suite.Require().NoError(err)

		created, err := handler.Handle(context.Background(), cmd)

		suite.Require().NoError(err)
		suite.Equal(expected, created.Waybill().String())
	}
}

func TestCreateShipmentIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CreateShipmentIntegrationTestSuite))
}
