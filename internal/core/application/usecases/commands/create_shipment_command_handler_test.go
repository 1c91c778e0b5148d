package commands_test

import (
	"errors"
	"testing"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/domain/services"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCreateShipmentHandler(t *testing.T, factory commands.UoWFactory) commands.CreateShipmentCommandHandler {
	t.Helper()

	sequencer, err := services.NewWaybillSequencer("EX")
	require.NoError(t, err)
	return commands.NewCreateShipmentCommandHandler(factory, sequencer, services.NewPricingCalculator(shipment.DefaultVATRate))
}

func TestCreateShipmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	actor := testUser(t, user.Role{})
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), actor.ID(), testDetails(t), testItemInputs(), false)
	require.NoError(t, err)

	last, err := shipment.ParseWaybillNumber("EX000041")
	require.NoError(t, err)

	shipmentRepo := new(MockShipmentRepository)
	userRepo := new(MockUserRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("UserRepository").Return(userRepo).Once(),
		userRepo.On("Get", ctx, actor.ID()).Return(actor, nil).Once(),
		uow.On("ShipmentRepository").Return(shipmentRepo).Once(),
		shipmentRepo.On("LockWaybillSequence", ctx).Return(nil).Once(),
		shipmentRepo.On("LastWaybillNumber", ctx).Return(&last, nil).Once(),
		shipmentRepo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newCreateShipmentHandler(t, factory)
	s, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "EX000042", s.Waybill().String())
	assert.Equal(t, shipment.Pending, s.Status())
	assert.Equal(t, actor.ID(), s.CreatedBy())
	assert.Equal(t, "214.00", s.Totals().Total.String())
	shipmentRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestCreateShipmentCommandHandler_Handle_FirstShipmentAndDraft(t *testing.T) {
	ctx := t.Context()
	actor := testUser(t, user.Role{})
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), actor.ID(), testDetails(t), testItemInputs(), true)
	require.NoError(t, err)

	shipmentRepo := new(MockShipmentRepository)
	userRepo := new(MockUserRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("UserRepository").Return(userRepo).Once(),
		userRepo.On("Get", ctx, actor.ID()).Return(actor, nil).Once(),
		uow.On("ShipmentRepository").Return(shipmentRepo).Once(),
		shipmentRepo.On("LockWaybillSequence", ctx).Return(nil).Once(),
		shipmentRepo.On("LastWaybillNumber", ctx).Return(nil, nil).Once(),
		shipmentRepo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newCreateShipmentHandler(t, factory)
	s, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "EX000001", s.Waybill().String())
	assert.Equal(t, shipment.Saved, s.Status())
}

func TestCreateShipmentCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.CreateShipmentCommand{}

	factory := new(MockUoWFactory)
	handler := newCreateShipmentHandler(t, factory)
	_, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrCreateShipmentCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}

func TestCreateShipmentCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), kernel.NewUUID(), testDetails(t), testItemInputs(), false)
	require.NoError(t, err)

	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := newCreateShipmentHandler(t, factory)
	_, err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "begin error")
	uow.AssertNotCalled(t, "Rollback", ctx)
}

func TestCreateShipmentCommandHandler_Handle_UnknownActor(t *testing.T) {
	ctx := t.Context()
	actorID := kernel.NewUUID()
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), actorID, testDetails(t), testItemInputs(), false)
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("UserRepository").Return(userRepo).Once(),
		userRepo.On("Get", ctx, actorID).Return(nil, errs.NewObjectNotFoundError("user", actorID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newCreateShipmentHandler(t, factory)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	uow.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", ctx)
}

func TestCreateShipmentCommandHandler_Handle_DuplicateWaybill(t *testing.T) {
	ctx := t.Context()
	actor := testUser(t, user.Role{})
	cmd, err := commands.NewCreateShipmentCommand(kernel.NewUUID(), actor.ID(), testDetails(t), testItemInputs(), false)
	require.NoError(t, err)

	shipmentRepo := new(MockShipmentRepository)
	userRepo := new(MockUserRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("UserRepository").Return(userRepo).Once(),
		userRepo.On("Get", ctx, actor.ID()).Return(actor, nil).Once(),
		uow.On("ShipmentRepository").Return(shipmentRepo).Once(),
		shipmentRepo.On("LockWaybillSequence", ctx).Return(nil).Once(),
		shipmentRepo.On("LastWaybillNumber", ctx).Return(nil, nil).Once(),
		shipmentRepo.On("Add", ctx, mock.AnythingOfType("*shipment.Shipment")).Return(ports.ErrDuplicateWaybill).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := newCreateShipmentHandler(t, factory)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, ports.ErrDuplicateWaybill)
	shipmentRepo.AssertExpectations(t)
	uow.AssertNotCalled(t, "Commit", ctx)
}
