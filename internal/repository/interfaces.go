package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/internal/plan"
)

// Tx is a storage transaction handle. Repositories re-bind to one via WithTx
// so a mutation and its recompute commit or roll back together.
type Tx interface {
	Commit() error
	Rollback() error
}

// TxManager begins storage transactions.
type TxManager interface {
	Begin(ctx context.Context) (Tx, error)
}

// CreditRepository defines the interface for credit data operations
type CreditRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	WithTx(tx Tx) CreditRepository

	// Create creates a new credit
	Create(ctx context.Context, credit *domain.Credit) error

	// GetByID retrieves a credit by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credit, error)

	// GetByIDForUpdate retrieves a credit with a row lock, serializing
	// concurrent recomputes on the same credit
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Credit, error)

	// ListByOwner retrieves all credits belonging to an owner
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error)

	// ListOpenIDs retrieves ids of all credits not yet closed, for the sweep
	ListOpenIDs(ctx context.Context) ([]uuid.UUID, error)

	// UpdateDerived writes the derived field block in a single update
	UpdateDerived(ctx context.Context, id uuid.UUID, derived plan.DerivedFields, updatedAt time.Time) error
}

// InstallmentRepository defines the interface for installment data operations.
// It is a pure persistence boundary: status updates never trigger recomputes,
// callers sequence aggregation themselves.
type InstallmentRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	WithTx(tx Tx) InstallmentRepository

	// BulkInsert persists a generated schedule row by row. Callers must
	// invoke it on a tx-bound handle (WithTx) for the rows to become
	// visible all-or-nothing
	BulkInsert(ctx context.Context, installments []*domain.Installment) error

	// GetByID retrieves a single installment
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)

	// ListByCredit retrieves a credit's installments ordered by sequence number
	ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error)

	// ListUnpaidDueBetween retrieves pending installments across all of an
	// owner's credits due within [since, until], ordered by due date
	ListUnpaidDueBetween(ctx context.Context, ownerID uuid.UUID, since, until time.Time) ([]*domain.Installment, error)

	// ListExportRows retrieves an owner's installments joined with credit
	// names for the spreadsheet export, due within [from, to]
	ListExportRows(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error)

	// UpdateStatus flips an installment's status and payment date, stamping
	// updated_at with the given time. It rejects paid without a payment
	// date, pending with one, and unknown statuses
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, paymentDate *time.Time, updatedAt time.Time) (*domain.Installment, error)
}

// PaymentRecordRepository defines the interface for the append-only payment
// ledger. Records are never updated or deleted.
type PaymentRecordRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction
	WithTx(tx Tx) PaymentRecordRepository

	// Insert appends a ledger entry; inserting the same transaction ID again
	// is a no-op that returns the existing entry
	Insert(ctx context.Context, record *domain.PaymentRecord) (*domain.PaymentRecord, error)

	// ListByCredit retrieves a credit's ledger ordered by payment date
	ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error)
}
