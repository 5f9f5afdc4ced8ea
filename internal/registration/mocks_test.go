package registration

import (
	"context"

	"github.com/stretchr/testify/mock"

	"ms-registration/internal/models"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserStore) CreatePendingOrder(ctx context.Context, pending *models.PendingOrder) error {
	args := m.Called(ctx, pending)
	return args.Error(0)
}

func (m *MockUserStore) GetPendingOrderByOrderID(ctx context.Context, orderID int64) (*models.PendingOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PendingOrder), args.Error(1)
}

func (m *MockUserStore) DeletePendingOrder(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockUserStore) IsRegistered(ctx context.Context, userID, workshopID string) (bool, error) {
	args := m.Called(ctx, userID, workshopID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) CommitOrder(ctx context.Context, user *models.User, pending *models.PendingOrder, outcome *models.TransactionOutcome) error {
	args := m.Called(ctx, user, pending, outcome)
	return args.Error(0)
}

func (m *MockUserStore) CommitFreeRegistration(ctx context.Context, user *models.User, workshopIDs []string) error {
	args := m.Called(ctx, user, workshopIDs)
	return args.Error(0)
}

type MockWorkshopStore struct {
	mock.Mock
}

func (m *MockWorkshopStore) GetByID(ctx context.Context, id string) (*models.Workshop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workshop), args.Error(1)
}

func (m *MockWorkshopStore) ReserveSeat(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockDiscountStore struct {
	mock.Mock
}

func (m *MockDiscountStore) GetByCode(ctx context.Context, code string) (*models.Discount, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Discount), args.Error(1)
}

func (m *MockDiscountStore) Redeem(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Purchase(ctx context.Context, req models.PurchaseRequest) (*models.PurchaseResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseResponse), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, token, signData string) (*models.TransactionOutcome, error) {
	args := m.Called(ctx, token, signData)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransactionOutcome), args.Error(1)
}

type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(fields ...string) (string, error) {
	args := m.Called(fields)
	return args.String(0), args.Error(1)
}

type MockVerifyLock struct {
	mock.Mock
}

func (m *MockVerifyLock) Acquire(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVerifyLock) Release(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(topic, key string, value []byte) error {
	args := m.Called(topic, key, value)
	return args.Error(0)
}
