package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/internal/plan"
	"github.com/kredipanel/credit-engine/internal/repository"
)

// MockTx is a no-op transaction handle for service tests.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (repository.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.Tx), args.Error(1)
}

// NewMockTxManager returns a manager whose transactions commit and roll back
// without error, which is what most service tests need.
func NewMockTxManager() *MockTxManager {
	tx := &MockTx{}
	tx.On("Commit").Return(nil).Maybe()
	tx.On("Rollback").Return(nil).Maybe()

	m := &MockTxManager{}
	m.On("Begin", mock.Anything).Return(tx, nil).Maybe()
	return m
}

type MockCreditRepository struct {
	mock.Mock
}

func (m *MockCreditRepository) WithTx(tx repository.Tx) repository.CreditRepository {
	return m
}

func (m *MockCreditRepository) Create(ctx context.Context, credit *domain.Credit) error {
	args := m.Called(ctx, credit)
	return args.Error(0)
}

func (m *MockCreditRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credit), args.Error(1)
}

func (m *MockCreditRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Credit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credit), args.Error(1)
}

func (m *MockCreditRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Credit), args.Error(1)
}

func (m *MockCreditRepository) ListOpenIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockCreditRepository) UpdateDerived(ctx context.Context, id uuid.UUID, derived plan.DerivedFields, updatedAt time.Time) error {
	args := m.Called(ctx, id, derived, updatedAt)
	return args.Error(0)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) WithTx(tx repository.Tx) repository.InstallmentRepository {
	return m
}

func (m *MockInstallmentRepository) BulkInsert(ctx context.Context, installments []*domain.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ListUnpaidDueBetween(ctx context.Context, ownerID uuid.UUID, since, until time.Time) ([]*domain.Installment, error) {
	args := m.Called(ctx, ownerID, since, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ListExportRows(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallmentExportRow), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, paymentDate *time.Time, updatedAt time.Time) (*domain.Installment, error) {
	args := m.Called(ctx, id, status, paymentDate, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) WithTx(tx repository.Tx) repository.PaymentRecordRepository {
	return m
}

func (m *MockPaymentRecordRepository) Insert(ctx context.Context, record *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}
