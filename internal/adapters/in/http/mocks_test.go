package http_test

import (
	"context"
	"io"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/domain/model/user"
	"exportdocs/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockShipmentCreator struct{ mock.Mock }

func (m *MockShipmentCreator) Handle(ctx context.Context, cmd commands.CreateShipmentCommand) (*shipment.Shipment, error) {
	args := m.Called(ctx, cmd)
	s, _ := args.Get(0).(*shipment.Shipment)
	return s, args.Error(1)
}

type MockShipmentPurger struct{ mock.Mock }

func (m *MockShipmentPurger) Handle(ctx context.Context, cmd commands.PurgeShipmentCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockTransitionRequester struct{ mock.Mock }

func (m *MockTransitionRequester) Handle(ctx context.Context, cmd commands.RequestTransitionCommand) (commands.RequestTransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RequestTransitionResult), args.Error(1)
}

type MockShipmentReader struct{ mock.Mock }

func (m *MockShipmentReader) Handle(ctx context.Context, query queries.GetShipmentQuery) (queries.ShipmentView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ShipmentView), args.Error(1)
}

type MockShipmentLister struct{ mock.Mock }

func (m *MockShipmentLister) Handle(ctx context.Context, query queries.ListShipmentsQuery) (queries.ShipmentPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ShipmentPage), args.Error(1)
}

type MockShipmentTracker struct{ mock.Mock }

func (m *MockShipmentTracker) Handle(ctx context.Context, query queries.TrackShipmentQuery) (queries.TrackingView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.TrackingView), args.Error(1)
}

type MockUserCreator struct{ mock.Mock }

func (m *MockUserCreator) Handle(ctx context.Context, cmd commands.CreateUserCommand) (*user.User, error) {
	args := m.Called(ctx, cmd)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

type MockPasswordResetter struct{ mock.Mock }

func (m *MockPasswordResetter) Handle(ctx context.Context, cmd commands.ResetUserPasswordCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockUserDeleter struct{ mock.Mock }

func (m *MockUserDeleter) Handle(ctx context.Context, cmd commands.DeleteUserCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockPasswordChanger struct{ mock.Mock }

func (m *MockPasswordChanger) Handle(ctx context.Context, cmd commands.ChangePasswordCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockUserLister struct{ mock.Mock }

func (m *MockUserLister) Handle(ctx context.Context, query queries.ListUsersQuery) ([]queries.UserSummary, error) {
	args := m.Called(ctx, query)
	users, _ := args.Get(0).([]queries.UserSummary)
	return users, args.Error(1)
}

type MockContactLister struct{ mock.Mock }

func (m *MockContactLister) Handle(ctx context.Context, query queries.ListContactsQuery) (queries.ContactPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ContactPage), args.Error(1)
}

type MockImageStorage struct{ mock.Mock }

func (m *MockImageStorage) Store(ctx context.Context, filename, contentType string, content io.Reader) (ports.FileInfo, error) {
	args := m.Called(ctx, filename, contentType, content)
	return args.Get(0).(ports.FileInfo), args.Error(1)
}

func (m *MockImageStorage) Fetch(ctx context.Context, fileID string, w io.Writer) (ports.FileInfo, error) {
	args := m.Called(ctx, fileID, w)
	if body, ok := args.Get(2).([]byte); ok {
		_, _ = w.Write(body)
	}
	return args.Get(0).(ports.FileInfo), args.Error(1)
}

func (m *MockImageStorage) Delete(ctx context.Context, fileID string) error {
	return m.Called(ctx, fileID).Error(0)
}

// stubAuthenticator accepts the passwords of the users it holds.
type stubAuthenticator map[string]*user.User

func (s stubAuthenticator) Handle(_ context.Context, query queries.AuthenticateUserQuery) (user.Authenticatable, error) {
	u, ok := s[query.Username()]
	if !ok || !u.CheckPassword(query.Password()) {
		return nil, queries.ErrInvalidCredentials
	}
	return u, nil
}
