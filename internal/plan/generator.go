// Package plan holds the pure payment-plan math: schedule generation from
// credit terms and aggregation of derived credit fields from installments.
// Nothing in this package performs I/O.
package plan

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kredipanel/credit-engine/internal/domain"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
	"github.com/kredipanel/credit-engine/pkg/utils"
)

// principalShare is the fixed share of every installment booked as principal,
// the remainder being interest. Schedules are flat equal-installment with this
// fixed 70/30 split, not a declining-balance amortization curve.
var principalShare = decimal.NewFromFloat(0.7)

var maxAnnualRatePercent = decimal.NewFromInt(100)

// Terms are the immutable lending terms a schedule is generated from.
type Terms struct {
	Principal         decimal.Decimal
	MonthlyPayment    decimal.Decimal
	AnnualRatePercent decimal.Decimal
	StartDate         time.Time
	TotalInstallments int
}

// GenerateSchedule produces the full ordered installment sequence for a
// credit: installment k falls due k calendar months after the start date
// (clamped to month end), every installment owes exactly the monthly payment,
// and all start out pending. It returns either the complete sequence or an
// INVALID_SCHEDULE_PARAMETERS error, never a partial result.
func GenerateSchedule(creditID uuid.UUID, terms Terms) ([]*domain.Installment, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	now := time.Now()
	installments := make([]*domain.Installment, 0, terms.TotalInstallments)
	for k := 1; k <= terms.TotalInstallments; k++ {
		principalAmount := terms.MonthlyPayment.Mul(principalShare).Round(2)
		installments = append(installments, &domain.Installment{
			ID:              uuid.New(),
			CreditID:        creditID,
			SequenceNumber:  k,
			DueDate:         utils.AddMonths(terms.StartDate, k),
			PrincipalAmount: principalAmount,
			InterestAmount:  terms.MonthlyPayment.Sub(principalAmount),
			TotalPayment:    terms.MonthlyPayment,
			Status:          domain.InstallmentStatusPending,
			PaymentDate:     nil,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return installments, nil
}

func validateTerms(terms Terms) error {
	if terms.TotalInstallments < 1 {
		return customError.WrapInvalidScheduleParameters(
			fmt.Sprintf("total installments must be at least 1, got %d", terms.TotalInstallments))
	}
	if terms.Principal.LessThanOrEqual(decimal.Zero) {
		return customError.WrapInvalidScheduleParameters(
			fmt.Sprintf("principal must be positive, got %s", terms.Principal))
	}
	if terms.MonthlyPayment.LessThanOrEqual(decimal.Zero) {
		return customError.WrapInvalidScheduleParameters(
			fmt.Sprintf("monthly payment must be positive, got %s", terms.MonthlyPayment))
	}
	if terms.AnnualRatePercent.IsNegative() || terms.AnnualRatePercent.GreaterThan(maxAnnualRatePercent) {
		return customError.WrapInvalidScheduleParameters(
			fmt.Sprintf("annual rate must be between 0 and 100 percent, got %s", terms.AnnualRatePercent))
	}
	if terms.StartDate.IsZero() {
		return customError.WrapInvalidScheduleParameters("start date is required")
	}
	return nil
}
