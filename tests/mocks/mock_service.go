package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/kredipanel/credit-engine/internal/domain"
)

type MockCreditService struct {
	mock.Mock
}

// NewMockCreditService creates a new mock credit service instance
func NewMockCreditService() *MockCreditService {
	return &MockCreditService{}
}

func (m *MockCreditService) CreateCredit(ctx context.Context, request *domain.CreateCreditRequest) (*domain.Credit, []*domain.Installment, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Credit), args.Get(1).([]*domain.Installment), args.Error(2)
}

func (m *MockCreditService) GetCredit(ctx context.Context, creditID uuid.UUID) (*domain.Credit, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Credit), args.Error(1)
}

func (m *MockCreditService) ListCredits(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Credit), args.Error(1)
}

func (m *MockCreditService) ListInstallments(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockCreditService) ListUpcoming(ctx context.Context, ownerID uuid.UUID, horizonDays int) ([]*domain.Installment, error) {
	args := m.Called(ctx, ownerID, horizonDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockCreditService) SetInstallmentStatus(ctx context.Context, installmentID uuid.UUID, request *domain.SetInstallmentStatusRequest) (*domain.Installment, *domain.Credit, error) {
	args := m.Called(ctx, installmentID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Installment), args.Get(1).(*domain.Credit), args.Error(2)
}

func (m *MockCreditService) GetPaymentHistory(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PaymentRecord), args.Error(1)
}

func (m *MockCreditService) ExportInstallments(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error) {
	args := m.Called(ctx, ownerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.InstallmentExportRow), args.Error(1)
}
