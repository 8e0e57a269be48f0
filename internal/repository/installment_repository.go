package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/kredipanel/credit-engine/internal/domain"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
)

// pq unique_violation
const uniqueViolationCode = "23505"

type installmentRepository struct {
	db sqlx.ExtContext
}

func NewInstallmentRepository(db *sqlx.DB) InstallmentRepository {
	return &installmentRepository{db: db}
}

func (r *installmentRepository) WithTx(tx Tx) InstallmentRepository {
	return &installmentRepository{db: extFrom(tx, r.db)}
}

const installmentColumns = `
	id, credit_id, sequence_number, due_date, principal_amount, interest_amount,
	total_payment, status, payment_date, created_at, updated_at
`

func (r *installmentRepository) BulkInsert(ctx context.Context, installments []*domain.Installment) error {
	if len(installments) == 0 {
		return nil
	}

	query := `
		INSERT INTO installments (
			id, credit_id, sequence_number, due_date, principal_amount,
			interest_amount, total_payment, status, payment_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, inst := range installments {
		_, err := r.db.ExecContext(ctx, query,
			inst.ID,
			inst.CreditID,
			inst.SequenceNumber,
			inst.DueDate,
			inst.PrincipalAmount,
			inst.InterestAmount,
			inst.TotalPayment,
			inst.Status,
			inst.PaymentDate,
			inst.CreatedAt,
			inst.UpdatedAt,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
				return customError.WrapDuplicateSequence(inst.CreditID.String())
			}
			return err
		}
	}

	return nil
}

func (r *installmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE id = $1`

	var inst domain.Installment
	if err := sqlx.GetContext(ctx, r.db, &inst, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapInstallmentNotFound(id.String())
		}
		return nil, err
	}

	return &inst, nil
}

func (r *installmentRepository) ListByCredit(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE credit_id = $1 ORDER BY sequence_number`

	var installments []*domain.Installment
	if err := sqlx.SelectContext(ctx, r.db, &installments, query, creditID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) ListUnpaidDueBetween(ctx context.Context, ownerID uuid.UUID, since, until time.Time) ([]*domain.Installment, error) {
	query := `
		SELECT i.id, i.credit_id, i.sequence_number, i.due_date, i.principal_amount,
		       i.interest_amount, i.total_payment, i.status, i.payment_date,
		       i.created_at, i.updated_at
		FROM installments i
		JOIN credits c ON c.id = i.credit_id
		WHERE c.owner_id = $1 AND i.status = $2 AND i.due_date BETWEEN $3 AND $4
		ORDER BY i.due_date, i.sequence_number
	`

	var installments []*domain.Installment
	err := sqlx.SelectContext(ctx, r.db, &installments, query,
		ownerID, domain.InstallmentStatusPending, since, until)
	if err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) ListExportRows(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error) {
	query := `
		SELECT c.name AS credit_name, i.sequence_number, i.due_date,
		       i.total_payment, i.status, i.payment_date
		FROM installments i
		JOIN credits c ON c.id = i.credit_id
		WHERE c.owner_id = $1 AND i.due_date BETWEEN $2 AND $3
		ORDER BY i.due_date, c.name, i.sequence_number
	`

	var rows []*domain.InstallmentExportRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, ownerID, from, to); err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *installmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, paymentDate *time.Time, updatedAt time.Time) (*domain.Installment, error) {
	switch status {
	case domain.InstallmentStatusPaid:
		if paymentDate == nil {
			return nil, customError.WrapInvalidTransition(
				"a paid installment must carry a payment date",
				customError.ErrPaymentDateRequired)
		}
	case domain.InstallmentStatusPending:
		if paymentDate != nil {
			return nil, customError.WrapInvalidTransition(
				"a pending installment must not carry a payment date",
				customError.ErrPaymentDateNotAllowed)
		}
	default:
		return nil, customError.WrapInvalidTransition(
			fmt.Sprintf("unknown status %q", status),
			customError.ErrUnknownInstallmentStatus)
	}

	query := `
		UPDATE installments
		SET status = $2, payment_date = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + installmentColumns

	rows, err := r.db.QueryxContext(ctx, query, id, status, paymentDate, updatedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, customError.WrapInstallmentNotFound(id.String())
	}

	var inst domain.Installment
	if err := rows.StructScan(&inst); err != nil {
		return nil, err
	}

	return &inst, rows.Err()
}
