package plan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/pkg/utils"
)

// DerivedFields is the recomputed aggregate block of a credit.
type DerivedFields struct {
	RemainingDebt         decimal.Decimal
	RemainingInstallments int
	PaymentProgress       int
	OverdueDays           int
	Status                string
}

// ComputeDerived recomputes a credit's derived fields from its full
// installment set as of the given date. Pure function: calling it twice on
// the same input yields identical results.
//
// Remaining debt is the sum of total_payment over pending installments (the
// "kalan borç" figure shown to users includes remaining interest). Overdue
// days count from the earliest pending installment's due date; installments
// sharing a due date tie-break on the smallest sequence number.
func ComputeDerived(installments []*domain.Installment, asOf time.Time) DerivedFields {
	total := len(installments)
	paid := 0
	remainingDebt := decimal.Zero
	var earliestPending *domain.Installment

	for _, inst := range installments {
		if inst.IsPaid() {
			paid++
			continue
		}
		remainingDebt = remainingDebt.Add(inst.TotalPayment)
		if earliestPending == nil || dueBefore(inst, earliestPending) {
			earliestPending = inst
		}
	}

	remaining := total - paid

	// Progress reads 100 only once every installment is paid; while anything
	// is still pending the rounded value caps at 99 so 100 <=> closed holds.
	progress := 0
	switch {
	case total == 0:
	case remaining == 0:
		progress = 100
	default:
		progress = int(math.Round(100 * float64(paid) / float64(total)))
		if progress > 99 {
			progress = 99
		}
	}

	overdueDays := 0
	if earliestPending != nil {
		if days := utils.DaysBetween(earliestPending.DueDate, asOf); days > 0 {
			overdueDays = days
		}
	}

	status := domain.CreditStatusActive
	switch {
	case remaining == 0:
		status = domain.CreditStatusClosed
	case overdueDays > 0:
		status = domain.CreditStatusOverdue
	}

	return DerivedFields{
		RemainingDebt:         remainingDebt,
		RemainingInstallments: remaining,
		PaymentProgress:       progress,
		OverdueDays:           overdueDays,
		Status:                status,
	}
}

func dueBefore(a, b *domain.Installment) bool {
	if a.DueDate.Equal(b.DueDate) {
		return a.SequenceNumber < b.SequenceNumber
	}
	return a.DueDate.Before(b.DueDate)
}
