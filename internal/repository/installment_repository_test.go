package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kredipanel/credit-engine/internal/domain"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
)

// The status/payment-date pairing is enforced at the store boundary, before
// any SQL runs, so even callers bypassing the service cannot persist an
// inconsistent row. These cases are hermetic: the guard rejects the write
// before the database handle is touched.
func TestUpdateStatus_GuardsTransition(t *testing.T) {
	repo := NewInstallmentRepository(nil)
	paymentDate := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, time.February, 12, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      string
		paymentDate *time.Time
		wantErr     error
	}{
		{
			name:    "paid without payment date",
			status:  domain.InstallmentStatusPaid,
			wantErr: customError.ErrPaymentDateRequired,
		},
		{
			name:        "pending with payment date",
			status:      domain.InstallmentStatusPending,
			paymentDate: &paymentDate,
			wantErr:     customError.ErrPaymentDateNotAllowed,
		},
		{
			name:        "unknown status",
			status:      "cancelled",
			paymentDate: &paymentDate,
			wantErr:     customError.ErrUnknownInstallmentStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, err := repo.UpdateStatus(context.Background(), uuid.New(), tt.status, tt.paymentDate, now)

			require.Error(t, err)
			assert.Nil(t, inst)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, customError.ErrCodeInvalidTransition, customError.CodeOf(err))
		})
	}
}
