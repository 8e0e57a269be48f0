package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	InstallmentStatusPending = "pending"
	InstallmentStatusPaid    = "paid"
)

// Installment is one payment-plan row ("taksit") of a credit. Everything but
// Status and PaymentDate is immutable after schedule generation; reopening a
// paid installment never alters its amounts.
type Installment struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CreditID        uuid.UUID       `json:"creditId" db:"credit_id"`
	SequenceNumber  int             `json:"sequenceNumber" db:"sequence_number"`
	DueDate         time.Time       `json:"dueDate" db:"due_date"`
	PrincipalAmount decimal.Decimal `json:"principalAmount" db:"principal_amount"`
	InterestAmount  decimal.Decimal `json:"interestAmount" db:"interest_amount"`
	TotalPayment    decimal.Decimal `json:"totalPayment" db:"total_payment"`
	Status          string          `json:"status" db:"status"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty" db:"payment_date"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsPaid reports whether the installment has been settled.
func (i *Installment) IsPaid() bool {
	return i.Status == InstallmentStatusPaid
}

// InstallmentExportRow is a read-only projection of an installment joined
// with its credit name, used by the spreadsheet export endpoint.
type InstallmentExportRow struct {
	CreditName     string          `json:"creditName" db:"credit_name"`
	SequenceNumber int             `json:"sequenceNumber" db:"sequence_number"`
	DueDate        time.Time       `json:"dueDate" db:"due_date"`
	TotalPayment   decimal.Decimal `json:"totalPayment" db:"total_payment"`
	Status         string          `json:"status" db:"status"`
	PaymentDate    *time.Time      `json:"paymentDate,omitempty" db:"payment_date"`
}
