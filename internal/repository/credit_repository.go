package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/internal/plan"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
)

type creditRepository struct {
	db sqlx.ExtContext
}

func NewCreditRepository(db *sqlx.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) WithTx(tx Tx) CreditRepository {
	return &creditRepository{db: extFrom(tx, r.db)}
}

func (r *creditRepository) Create(ctx context.Context, credit *domain.Credit) error {
	query := `
		INSERT INTO credits (
			id, owner_id, name, principal, monthly_payment, annual_rate_percent,
			total_installments, start_date, remaining_debt, remaining_installments,
			payment_progress, overdue_days, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		credit.ID,
		credit.OwnerID,
		credit.Name,
		credit.Principal,
		credit.MonthlyPayment,
		credit.AnnualRatePercent,
		credit.TotalInstallments,
		credit.StartDate,
		credit.RemainingDebt,
		credit.RemainingInstallments,
		credit.PaymentProgress,
		credit.OverdueDays,
		credit.Status,
		credit.CreatedAt,
		credit.UpdatedAt,
	)

	return err
}

const creditColumns = `
	id, owner_id, name, principal, monthly_payment, annual_rate_percent,
	total_installments, start_date, remaining_debt, remaining_installments,
	payment_progress, overdue_days, status, created_at, updated_at
`

func (r *creditRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE id = $1`

	var credit domain.Credit
	if err := sqlx.GetContext(ctx, r.db, &credit, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCreditNotFound(id.String())
		}
		return nil, err
	}

	return &credit, nil
}

func (r *creditRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE id = $1 FOR UPDATE`

	var credit domain.Credit
	if err := sqlx.GetContext(ctx, r.db, &credit, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCreditNotFound(id.String())
		}
		return nil, err
	}

	return &credit, nil
}

func (r *creditRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error) {
	query := `SELECT ` + creditColumns + ` FROM credits WHERE owner_id = $1 ORDER BY created_at`

	var credits []*domain.Credit
	if err := sqlx.SelectContext(ctx, r.db, &credits, query, ownerID); err != nil {
		return nil, err
	}

	return credits, nil
}

func (r *creditRepository) ListOpenIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT id FROM credits WHERE status <> $1 ORDER BY created_at`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, domain.CreditStatusClosed); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *creditRepository) UpdateDerived(ctx context.Context, id uuid.UUID, derived plan.DerivedFields, updatedAt time.Time) error {
	query := `
		UPDATE credits
		SET remaining_debt = $2, remaining_installments = $3, payment_progress = $4,
		    overdue_days = $5, status = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		id,
		derived.RemainingDebt,
		derived.RemainingInstallments,
		derived.PaymentProgress,
		derived.OverdueDays,
		derived.Status,
		updatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapCreditNotFound(id.String())
	}

	return nil
}
