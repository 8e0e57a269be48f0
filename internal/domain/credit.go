package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CreditStatusActive  = "active"
	CreditStatusOverdue = "overdue"
	CreditStatusClosed  = "closed"
)

// Credit represents a tracked credit ("kredi") with its immutable terms and
// the derived fields maintained by the recompute path. The derived block
// (RemainingDebt through Status) is never written directly by callers.
type Credit struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	OwnerID               uuid.UUID       `json:"ownerId" db:"owner_id"`
	Name                  string          `json:"name" db:"name"`
	Principal             decimal.Decimal `json:"principal" db:"principal"`
	MonthlyPayment        decimal.Decimal `json:"monthlyPayment" db:"monthly_payment"`
	AnnualRatePercent     decimal.Decimal `json:"annualRatePercent" db:"annual_rate_percent"`
	TotalInstallments     int             `json:"totalInstallments" db:"total_installments"`
	StartDate             time.Time       `json:"startDate" db:"start_date"`
	RemainingDebt         decimal.Decimal `json:"remainingDebt" db:"remaining_debt"`
	RemainingInstallments int             `json:"remainingInstallments" db:"remaining_installments"`
	PaymentProgress       int             `json:"paymentProgress" db:"payment_progress"`
	OverdueDays           int             `json:"overdueDays" db:"overdue_days"`
	Status                string          `json:"status" db:"status"`
	CreatedAt             time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time       `json:"updatedAt" db:"updated_at"`
}

// TotalPayback returns the flat-schedule total the user will pay over the
// full term: monthly payment times number of installments.
func (c *Credit) TotalPayback() decimal.Decimal {
	return c.MonthlyPayment.Mul(decimal.NewFromInt(int64(c.TotalInstallments)))
}

// DTOs for requests and responses

type CreateCreditRequest struct {
	OwnerID           uuid.UUID       `json:"ownerId" validate:"required"`
	Name              string          `json:"name" validate:"required,max=200"`
	Principal         decimal.Decimal `json:"principal" validate:"required,gt=0"`
	MonthlyPayment    decimal.Decimal `json:"monthlyPayment" validate:"required,gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent" validate:"gte=0,lte=100"`
	TotalInstallments int             `json:"totalInstallments" validate:"required,min=1"`
	StartDate         time.Time       `json:"startDate" validate:"required"`
}

type CreateCreditResponse struct {
	Credit       *Credit        `json:"credit"`
	Installments []*Installment `json:"installments"`
}

type SetInstallmentStatusRequest struct {
	Status        string     `json:"status" validate:"required,oneof=pending paid"`
	PaymentDate   *time.Time `json:"paymentDate,omitempty"`
	Channel       string     `json:"channel,omitempty" validate:"omitempty,max=50"`
	TransactionID string     `json:"transactionId,omitempty" validate:"omitempty,max=100"`
}

type SetInstallmentStatusResponse struct {
	Installment *Installment `json:"installment"`
	Credit      *Credit      `json:"credit"`
}
