package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentRecordStatusCompleted = "completed"

	PaymentChannelManual = "manual"
	PaymentChannelImport = "import"
)

// PaymentRecord is one row of the append-only payment ledger. A record is
// written on every pending→paid transition and is never mutated or deleted;
// reverting the installment to pending leaves the record in place. The
// TransactionID is unique and makes replayed writes a no-op.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CreditID      uuid.UUID       `json:"creditId" db:"credit_id"`
	InstallmentID *uuid.UUID      `json:"installmentId,omitempty" db:"installment_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"paymentDate" db:"payment_date"`
	Channel       string          `json:"channel" db:"channel"`
	Status        string          `json:"status" db:"status"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
}
