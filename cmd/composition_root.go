package cmd

import (
	"fmt"
	"log/slog"

	httpadapter "exportdocs/internal/adapters/in/http"
	"exportdocs/internal/adapters/out/postgres"
	"exportdocs/internal/adapters/out/qrcode"
	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/services"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/jobs"
	"exportdocs/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	storage    ports.ImageStorage
	encoder    ports.QREncoder
	sequencer  services.WaybillSequencer
	pricing    services.PricingCalculator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewCompositionRoot wires the use cases to their adapters. publisher is
// wrapped so that published transitions are counted.
func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	storage ports.ImageStorage,
	publisher ports.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) (CompositionRoot, error) {
	rateValue, err := decimal.NewFromString(config.VATRate)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("VAT_RATE: %w", err)
	}
	rate, err := shipment.NewVATRate(rateValue)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("VAT_RATE: %w", err)
	}
	sequencer, err := services.NewWaybillSequencer(config.WaybillPrefix)
	if err != nil {
		return CompositionRoot{}, fmt.Errorf("WAYBILL_PREFIX: %w", err)
	}
	encoder, err := qrcode.NewEncoder(qrcode.DefaultSize)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, rate, m.CountingPublisher(publisher), logger),
		storage:    storage,
		encoder:    encoder,
		sequencer:  sequencer,
		pricing:    services.NewPricingCalculator(rate),
		metrics:    m,
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) shipmentUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateShipmentCommandHandler() commands.CreateShipmentCommandHandler {
	return commands.NewCreateShipmentCommandHandler(c.shipmentUoWFactory(), c.sequencer, c.pricing)
}

func (c *CompositionRoot) CreateAmendShipmentCommandHandler() commands.AmendShipmentCommandHandler {
	return commands.NewAmendShipmentCommandHandler(c.shipmentUoWFactory(), c.storage, c.pricing, c.logger)
}

func (c *CompositionRoot) CreatePurgeShipmentCommandHandler() commands.PurgeShipmentCommandHandler {
	return commands.NewPurgeShipmentCommandHandler(c.shipmentUoWFactory(), c.storage, c.logger)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	return commands.NewRequestTransitionCommandHandler(c.shipmentUoWFactory())
}

func (c *CompositionRoot) CreateAttachItemImageCommandHandler() commands.AttachItemImageCommandHandler {
	return commands.NewAttachItemImageCommandHandler(c.shipmentUoWFactory(), c.storage, c.logger)
}

func (c *CompositionRoot) CreateGenerateQRCodeCommandHandler() commands.GenerateQRCodeCommandHandler {
	return commands.NewGenerateQRCodeCommandHandler(c.shipmentUoWFactory(), c.encoder, c.storage, c.logger)
}

func (c *CompositionRoot) userUoWFactory() commands.UserUoWFactory {
	return FuncUserUoWFactory(func() commands.UserUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateUserCommandHandler() commands.CreateUserCommandHandler {
	return commands.NewCreateUserCommandHandler(c.userUoWFactory())
}

func (c *CompositionRoot) CreateResetUserPasswordCommandHandler() commands.ResetUserPasswordCommandHandler {
	return commands.NewResetUserPasswordCommandHandler(c.userUoWFactory())
}

func (c *CompositionRoot) CreateDeleteUserCommandHandler() commands.DeleteUserCommandHandler {
	return commands.NewDeleteUserCommandHandler(c.userUoWFactory())
}

func (c *CompositionRoot) CreateChangePasswordCommandHandler() commands.ChangePasswordCommandHandler {
	return commands.NewChangePasswordCommandHandler(c.userUoWFactory())
}

func (c *CompositionRoot) CreateGetShipmentQueryHandler() queries.GetShipmentQueryHandler {
	return queries.NewGetShipmentQueryHandler(c.gormDB, c.pricing)
}

func (c *CompositionRoot) CreateListShipmentsQueryHandler() queries.ListShipmentsQueryHandler {
	return queries.NewListShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStatusHistoryQueryHandler() queries.GetStatusHistoryQueryHandler {
	return queries.NewGetStatusHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateTrackShipmentQueryHandler() queries.TrackShipmentQueryHandler {
	return queries.NewTrackShipmentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateNextWaybillNumberQueryHandler() queries.NextWaybillNumberQueryHandler {
	return queries.NewNextWaybillNumberQueryHandler(c.gormDB, c.sequencer)
}

func (c *CompositionRoot) CreateListShipmentsWithoutQRCodeQueryHandler() queries.ListShipmentsWithoutQRCodeQueryHandler {
	return queries.NewListShipmentsWithoutQRCodeQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListUsersQueryHandler() queries.ListUsersQueryHandler {
	return queries.NewListUsersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListContactsQueryHandler() queries.ListContactsQueryHandler {
	return queries.NewListContactsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateAuthenticateUserQueryHandler() queries.AuthenticateUserQueryHandler {
	return queries.NewAuthenticateUserQueryHandler(c.gormDB)
}

// CreateHTTPServer returns the echo instance with every route mounted.
func (c *CompositionRoot) CreateHTTPServer() (*echo.Echo, error) {
	contract, err := httpadapter.LoadContract()
	if err != nil {
		return nil, err
	}

	createShipment := c.CreateCreateShipmentCommandHandler()
	amendShipment := c.CreateAmendShipmentCommandHandler()
	purgeShipment := c.CreatePurgeShipmentCommandHandler()
	requestTransition := c.CreateRequestTransitionCommandHandler()
	attachItemImage := c.CreateAttachItemImageCommandHandler()
	generateQRCode := c.CreateGenerateQRCodeCommandHandler()
	createUser := c.CreateCreateUserCommandHandler()
	resetPassword := c.CreateResetUserPasswordCommandHandler()
	deleteUser := c.CreateDeleteUserCommandHandler()
	changePassword := c.CreateChangePasswordCommandHandler()

	server := httpadapter.NewServer(httpadapter.Handlers{
		CreateShipment:    &createShipment,
		AmendShipment:     &amendShipment,
		PurgeShipment:     &purgeShipment,
		RequestTransition: &requestTransition,
		AttachItemImage:   &attachItemImage,
		GenerateQRCode:    &generateQRCode,
		GetShipment:       c.CreateGetShipmentQueryHandler(),
		ListShipments:     c.CreateListShipmentsQueryHandler(),
		GetStatusHistory:  c.CreateGetStatusHistoryQueryHandler(),
		TrackShipment:     c.CreateTrackShipmentQueryHandler(),
		NextWaybillNumber: c.CreateNextWaybillNumberQueryHandler(),
		CreateUser:        &createUser,
		ResetPassword:     &resetPassword,
		DeleteUser:        &deleteUser,
		ChangePassword:    &changePassword,
		ListUsers:         c.CreateListUsersQueryHandler(),
		ListContacts:      c.CreateListContactsQueryHandler(),
	}, c.storage, c.metrics, c.logger)

	return httpadapter.NewRouter(server, contract, c.CreateAuthenticateUserQueryHandler(), c.metrics, c.logger), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	generateQRCode := c.CreateGenerateQRCodeCommandHandler()
	return jobs.NewJobManager(
		c.CreateListShipmentsWithoutQRCodeQueryHandler(),
		&generateQRCode,
		c.metrics,
		c.config.QRBackfillSchedule,
		c.logger,
	)
}

type FuncUserUoWFactory func() commands.UserUoW

func (f FuncUserUoWFactory) Create() commands.UserUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
