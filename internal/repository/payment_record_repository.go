package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kredipanel/credit-engine/internal/domain"
)

type paymentRecordRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRecordRepository(db *sqlx.DB) PaymentRecordRepository {
	return &paymentRecordRepository{db: db}
}

func (r *paymentRecordRepository) WithTx(tx Tx) PaymentRecordRepository {
	return &paymentRecordRepository{db: extFrom(tx, r.db)}
}

const paymentRecordColumns = `
	id, credit_id, installment_id, amount, payment_date, channel, status,
	transaction_id, created_at
`

// Insert appends a ledger entry. The transaction_id unique constraint makes
// replays a no-op: when the insert conflicts, the existing row is returned
// unchanged so retries never double-record a payment.
func (r *paymentRecordRepository) Insert(ctx context.Context, record *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	query := `
		INSERT INTO payment_records (
			id, credit_id, installment_id, amount, payment_date, channel,
			status, transaction_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING ` + paymentRecordColumns

	rows, err := r.db.QueryxContext(ctx, query,
		record.ID,
		record.CreditID,
		record.InstallmentID,
		record.Amount,
		record.PaymentDate,
		record.Channel,
		record.Status,
		record.TransactionID,
		record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var inserted domain.PaymentRecord
		if err := rows.StructScan(&inserted); err != nil {
			return nil, err
		}
		return &inserted, rows.Err()
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Conflict: the entry already exists, fetch and return it.
	existing := `SELECT ` + paymentRecordColumns + ` FROM payment_records WHERE transaction_id = $1`
	var record2 domain.PaymentRecord
	if err := sqlx.GetContext(ctx, r.db, &record2, existing, record.TransactionID); err != nil {
		return nil, err
	}

	return &record2, nil
}

func (r *paymentRecordRepository) ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentRecordColumns + ` FROM payment_records WHERE credit_id = $1 ORDER BY payment_date, created_at`

	var records []*domain.PaymentRecord
	if err := sqlx.SelectContext(ctx, r.db, &records, query, creditID); err != nil {
		return nil, err
	}

	return records, nil
}
