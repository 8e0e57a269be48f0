package plan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kredipanel/credit-engine/internal/domain"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
)

func validTerms() Terms {
	return Terms{
		Principal:         decimal.NewFromInt(10000),
		MonthlyPayment:    decimal.NewFromInt(1000),
		AnnualRatePercent: decimal.NewFromInt(2),
		StartDate:         time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		TotalInstallments: 10,
	}
}

func TestGenerateSchedule(t *testing.T) {
	creditID := uuid.New()
	installments, err := GenerateSchedule(creditID, validTerms())
	require.NoError(t, err)
	require.Len(t, installments, 10)

	for i, inst := range installments {
		assert.Equal(t, creditID, inst.CreditID)
		assert.Equal(t, i+1, inst.SequenceNumber)
		assert.Equal(t, domain.InstallmentStatusPending, inst.Status)
		assert.Nil(t, inst.PaymentDate)
		assert.True(t, inst.TotalPayment.Equal(decimal.NewFromInt(1000)))
		assert.True(t, inst.PrincipalAmount.Add(inst.InterestAmount).Equal(inst.TotalPayment),
			"split must always sum back to the total payment")
		if i > 0 {
			assert.True(t, installments[i-1].DueDate.Before(inst.DueDate),
				"due dates must be strictly increasing")
		}
	}

	// Scenario from the surrounding product: 10,000 over 10 months at 1,000.
	first := installments[0]
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), first.DueDate)
	assert.True(t, first.PrincipalAmount.Equal(decimal.NewFromInt(700)), "got %s", first.PrincipalAmount)
	assert.True(t, first.InterestAmount.Equal(decimal.NewFromInt(300)), "got %s", first.InterestAmount)

	last := installments[9]
	assert.Equal(t, time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC), last.DueDate)
}

func TestGenerateSchedule_MonthEndClamping(t *testing.T) {
	terms := validTerms()
	terms.StartDate = time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	terms.TotalInstallments = 3

	installments, err := GenerateSchedule(uuid.New(), terms)
	require.NoError(t, err)
	require.Len(t, installments, 3)

	assert.Equal(t, time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	assert.Equal(t, time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC), installments[1].DueDate)
	assert.Equal(t, time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC), installments[2].DueDate)
}

func TestGenerateSchedule_SplitRounding(t *testing.T) {
	terms := validTerms()
	terms.MonthlyPayment = decimal.RequireFromString("333.33")
	terms.Principal = decimal.RequireFromString("3333.30")

	installments, err := GenerateSchedule(uuid.New(), terms)
	require.NoError(t, err)

	inst := installments[0]
	assert.True(t, inst.PrincipalAmount.Equal(decimal.RequireFromString("233.33")), "got %s", inst.PrincipalAmount)
	assert.True(t, inst.InterestAmount.Equal(decimal.RequireFromString("100.00")), "got %s", inst.InterestAmount)
	assert.True(t, inst.PrincipalAmount.Add(inst.InterestAmount).Equal(inst.TotalPayment))
}

func TestGenerateSchedule_InvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Terms)
	}{
		{"zero installments", func(tr *Terms) { tr.TotalInstallments = 0 }},
		{"negative installments", func(tr *Terms) { tr.TotalInstallments = -3 }},
		{"zero principal", func(tr *Terms) { tr.Principal = decimal.Zero }},
		{"negative monthly payment", func(tr *Terms) { tr.MonthlyPayment = decimal.NewFromInt(-10) }},
		{"negative rate", func(tr *Terms) { tr.AnnualRatePercent = decimal.NewFromInt(-1) }},
		{"rate above 100", func(tr *Terms) { tr.AnnualRatePercent = decimal.NewFromInt(101) }},
		{"missing start date", func(tr *Terms) { tr.StartDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := validTerms()
			tt.mutate(&terms)

			installments, err := GenerateSchedule(uuid.New(), terms)
			assert.Nil(t, installments, "no partial schedule on invalid terms")
			require.Error(t, err)
			assert.ErrorIs(t, err, customError.ErrInvalidScheduleParameters)
			assert.Equal(t, customError.ErrCodeInvalidScheduleParameters, customError.CodeOf(err))
		})
	}
}

func TestGenerateSchedule_SingleInstallment(t *testing.T) {
	terms := validTerms()
	terms.TotalInstallments = 1

	installments, err := GenerateSchedule(uuid.New(), terms)
	require.NoError(t, err)
	require.Len(t, installments, 1)
	assert.Equal(t, 1, installments[0].SequenceNumber)
	assert.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
}
