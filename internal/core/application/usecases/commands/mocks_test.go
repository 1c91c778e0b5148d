package commands_test

import (
	"context"
	"io"
	"testing"
	"time"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/domain/model/kernel"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetByWaybill(ctx context.Context, waybill string) (*shipment.Shipment, error) {
	args := m.Called(ctx, waybill)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShipmentRepository) LockWaybillSequence(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentRepository) LastWaybillNumber(ctx context.Context) (*shipment.WaybillNumber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.WaybillNumber), args.Error(1)
}

func (m *MockShipmentRepository) History(ctx context.Context, id kernel.UUID) ([]shipment.StatusChange, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipment.StatusChange), args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Add(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Get(ctx context.Context, id kernel.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) CountAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) UserRepository() ports.UserRepository {
	args := m.Called()
	return args.Get(0).(ports.UserRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockUserUoWFactory struct{ mock.Mock }

func (m *MockUserUoWFactory) Create() commands.UserUoW {
	args := m.Called()
	return args.Get(0).(commands.UserUoW)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) Store(ctx context.Context, filename, contentType string, content io.Reader) (ports.FileInfo, error) {
	args := m.Called(ctx, filename, contentType, content)
	return args.Get(0).(ports.FileInfo), args.Error(1)
}

func (m *MockImageStorage) Fetch(ctx context.Context, fileID string, w io.Writer) (ports.FileInfo, error) {
	args := m.Called(ctx, fileID, w)
	return args.Get(0).(ports.FileInfo), args.Error(1)
}

func (m *MockImageStorage) Delete(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

type MockQREncoder struct{ mock.Mock }

func (m *MockQREncoder) Encode(payload []byte) ([]byte, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func testDetails(t *testing.T) shipment.Details {
	t.Helper()

	sender, err := kernel.NewContact("Somchai Export", "0812345678", "", "99 Sukhumvit", "")
	require.NoError(t, err)
	receiver, err := kernel.NewContact("Mia Chen", "+61 400 000 000", "", "12 Harbour St", "")
	require.NoError(t, err)

	return shipment.Details{
		Sender:      sender,
		Receiver:    receiver,
		Destination: kernel.NewDestination("12 Harbour St", "Australia", "2000"),
		Pricing: shipment.NewPricing(
			kernel.MustMoney("100"), kernel.MustMoney("20"), kernel.MustMoney("10"),
			kernel.MustMoney("5"), kernel.MustMoney("15"), kernel.MustMoney("50"),
		),
	}
}

func testItemInputs() []commands.ItemInput {
	return []commands.ItemInput{
		{Description: "Ceramic bowls", Value: kernel.MustMoney("10"), Quantity: 2, Weight: decimal.NewFromInt(3)},
	}
}

func testShipment(t *testing.T) *shipment.Shipment {
	t.Helper()

	waybill, err := shipment.ParseWaybillNumber("EX000007")
	require.NoError(t, err)
	item, err := shipment.NewItem(kernel.NewUUID(), "Ceramic bowls", kernel.MustMoney("10"), 2, decimal.NewFromInt(3))
	require.NoError(t, err)

	s, err := shipment.NewShipment(
		kernel.NewUUID(),
		waybill,
		testDetails(t),
		[]*shipment.Item{item},
		kernel.NewUUID(),
		false,
		shipment.DefaultVATRate,
		time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return s
}

func testUser(t *testing.T, role user.Role) *user.User {
	t.Helper()

	u, err := user.NewUser(kernel.NewUUID(), "clerk", "Desk Clerk", "password123", role)
	require.NoError(t, err)
	return u
}
