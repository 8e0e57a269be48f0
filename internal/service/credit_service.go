package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/internal/plan"
	"github.com/kredipanel/credit-engine/internal/repository"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
)

const (
	creditCacheKeyPrefix = "credit:"
	creditCacheTTL       = 24 * time.Hour
)

// CreditService orchestrates the payment-plan engine: schedule creation,
// installment lifecycle, per-credit recompute of derived fields, and the
// append-only payment ledger.
type CreditService struct {
	txm             repository.TxManager
	creditRepo      repository.CreditRepository
	installmentRepo repository.InstallmentRepository
	recordRepo      repository.PaymentRecordRepository
	cache           *redis.Client
	logger          zerolog.Logger

	// now is injectable so overdue math is deterministic in tests.
	now func() time.Time
}

func NewCreditService(
	txm repository.TxManager,
	creditRepo repository.CreditRepository,
	installmentRepo repository.InstallmentRepository,
	recordRepo repository.PaymentRecordRepository,
	cache *redis.Client,
	logger zerolog.Logger,
) *CreditService {
	return &CreditService{
		txm:             txm,
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		recordRepo:      recordRepo,
		cache:           cache,
		logger:          logger,
		now:             time.Now,
	}
}

// CreateCredit creates a credit and its full installment schedule atomically:
// either the credit and all N installments are visible, or nothing is.
func (s *CreditService) CreateCredit(ctx context.Context, request *domain.CreateCreditRequest) (*domain.Credit, []*domain.Installment, error) {
	now := s.now()
	credit := &domain.Credit{
		ID:                uuid.New(),
		OwnerID:           request.OwnerID,
		Name:              request.Name,
		Principal:         request.Principal,
		MonthlyPayment:    request.MonthlyPayment,
		AnnualRatePercent: request.AnnualRatePercent,
		TotalInstallments: request.TotalInstallments,
		StartDate:         request.StartDate,
		Status:            domain.CreditStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	installments, err := plan.GenerateSchedule(credit.ID, plan.Terms{
		Principal:         request.Principal,
		MonthlyPayment:    request.MonthlyPayment,
		AnnualRatePercent: request.AnnualRatePercent,
		StartDate:         request.StartDate,
		TotalInstallments: request.TotalInstallments,
	})
	if err != nil {
		return nil, nil, err
	}

	derived := plan.ComputeDerived(installments, now)
	applyDerived(credit, derived)

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	if err := s.creditRepo.WithTx(tx).Create(ctx, credit); err != nil {
		return nil, nil, wrapStorageError(err)
	}
	if err := s.installmentRepo.WithTx(tx).BulkInsert(ctx, installments); err != nil {
		return nil, nil, wrapStorageError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.cacheCredit(ctx, credit)
	s.logger.Info().
		Str("credit_id", credit.ID.String()).
		Int("installments", len(installments)).
		Str("monthly_payment", credit.MonthlyPayment.String()).
		Msg("credit created")

	return credit, installments, nil
}

// GetCredit returns a credit with its derived fields, served from the cache
// when possible.
func (s *CreditService) GetCredit(ctx context.Context, creditID uuid.UUID) (*domain.Credit, error) {
	if credit := s.cachedCredit(ctx, creditID); credit != nil {
		return credit, nil
	}

	credit, err := s.creditRepo.GetByID(ctx, creditID)
	if err != nil {
		return nil, err
	}

	s.cacheCredit(ctx, credit)
	return credit, nil
}

// ListCredits returns all credits belonging to an owner.
func (s *CreditService) ListCredits(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error) {
	return s.creditRepo.ListByOwner(ctx, ownerID)
}

// ListInstallments returns a credit's installments ordered by sequence number.
func (s *CreditService) ListInstallments(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error) {
	if _, err := s.creditRepo.GetByID(ctx, creditID); err != nil {
		return nil, err
	}
	return s.installmentRepo.ListByCredit(ctx, creditID)
}

// ListUpcoming returns an owner's pending installments due within the horizon,
// backing the "upcoming due date" alerts.
func (s *CreditService) ListUpcoming(ctx context.Context, ownerID uuid.UUID, horizonDays int) ([]*domain.Installment, error) {
	if horizonDays < 1 {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidRequest,
			fmt.Sprintf("horizon must be at least 1 day, got %d", horizonDays), nil)
	}

	since := s.now()
	until := since.AddDate(0, 0, horizonDays)
	return s.installmentRepo.ListUnpaidDueBetween(ctx, ownerID, since, until)
}

// SetInstallmentStatus flips an installment between pending and paid and
// recomputes the credit's derived fields, all inside one transaction with a
// row lock on the credit so concurrent mutations on the same credit
// serialize. A pending→paid transition also appends a payment ledger entry;
// reverting to pending leaves prior ledger entries untouched.
func (s *CreditService) SetInstallmentStatus(ctx context.Context, installmentID uuid.UUID, request *domain.SetInstallmentStatusRequest) (*domain.Installment, *domain.Credit, error) {
	if err := validateTransition(request); err != nil {
		return nil, nil, err
	}

	// Resolve the owning credit before entering the critical section.
	current, err := s.installmentRepo.GetByID(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	creditRepo := s.creditRepo.WithTx(tx)
	installmentRepo := s.installmentRepo.WithTx(tx)

	// Lock the credit row: recomputes serialize per credit.
	credit, err := creditRepo.GetByIDForUpdate(ctx, current.CreditID)
	if err != nil {
		return nil, nil, err
	}

	// Re-read under the lock so the paid-transition decision is race-free.
	current, err = installmentRepo.GetByID(ctx, installmentID)
	if err != nil {
		return nil, nil, err
	}
	paidTransition := current.Status == domain.InstallmentStatusPending &&
		request.Status == domain.InstallmentStatusPaid

	asOf := s.now()
	updated, err := installmentRepo.UpdateStatus(ctx, installmentID, request.Status, request.PaymentDate, asOf)
	if err != nil {
		return nil, nil, err
	}

	installments, err := installmentRepo.ListByCredit(ctx, credit.ID)
	if err != nil {
		return nil, nil, err
	}

	derived := plan.ComputeDerived(installments, asOf)
	if err := creditRepo.UpdateDerived(ctx, credit.ID, derived, asOf); err != nil {
		return nil, nil, err
	}
	applyDerived(credit, derived)
	credit.UpdatedAt = asOf

	if paidTransition {
		record := &domain.PaymentRecord{
			ID:            uuid.New(),
			CreditID:      credit.ID,
			InstallmentID: &updated.ID,
			Amount:        updated.TotalPayment,
			PaymentDate:   *request.PaymentDate,
			Channel:       channelOrDefault(request.Channel),
			Status:        domain.PaymentRecordStatusCompleted,
			TransactionID: transactionRef(request.TransactionID, credit.ID, updated.SequenceNumber, asOf),
			CreatedAt:     asOf,
		}
		if _, err := s.recordRepo.WithTx(tx).Insert(ctx, record); err != nil {
			return nil, nil, wrapStorageError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	s.cacheCredit(ctx, credit)
	s.logger.Info().
		Str("credit_id", credit.ID.String()).
		Str("installment_id", installmentID.String()).
		Int("sequence", updated.SequenceNumber).
		Str("status", updated.Status).
		Str("credit_status", credit.Status).
		Msg("installment status updated")

	return updated, credit, nil
}

// Recompute re-derives a credit's aggregate fields from its installments.
// Idempotent: with no intervening installment change, repeated calls write
// identical fields, so it is safe to retry and to run as a batch sweep.
func (s *CreditService) Recompute(ctx context.Context, creditID uuid.UUID) (*domain.Credit, error) {
	tx, err := s.txm.Begin(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	defer tx.Rollback()

	creditRepo := s.creditRepo.WithTx(tx)
	credit, err := creditRepo.GetByIDForUpdate(ctx, creditID)
	if err != nil {
		return nil, err
	}

	installments, err := s.installmentRepo.WithTx(tx).ListByCredit(ctx, creditID)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	derived := plan.ComputeDerived(installments, asOf)
	if err := creditRepo.UpdateDerived(ctx, creditID, derived, asOf); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	applyDerived(credit, derived)
	credit.UpdatedAt = asOf
	s.cacheCredit(ctx, credit)

	return credit, nil
}

// SweepRecompute recomputes every non-closed credit so overdue days and
// statuses advance without a user action. Errors on individual credits are
// logged and skipped; the sweep is idempotent and safe to re-run.
func (s *CreditService) SweepRecompute(ctx context.Context) (int, error) {
	ids, err := s.creditRepo.ListOpenIDs(ctx)
	if err != nil {
		return 0, wrapStorageError(err)
	}

	recomputed := 0
	for _, id := range ids {
		if _, err := s.Recompute(ctx, id); err != nil {
			s.logger.Error().Err(err).Str("credit_id", id.String()).Msg("sweep recompute failed")
			continue
		}
		recomputed++
	}

	s.logger.Info().Int("credits", recomputed).Int("total", len(ids)).Msg("sweep completed")
	return recomputed, nil
}

// GetPaymentHistory returns a credit's immutable payment ledger.
func (s *CreditService) GetPaymentHistory(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error) {
	if _, err := s.creditRepo.GetByID(ctx, creditID); err != nil {
		return nil, err
	}
	return s.recordRepo.ListByCredit(ctx, creditID)
}

// ExportInstallments returns a read-only projection of an owner's
// installments due within [from, to], for spreadsheet export.
func (s *CreditService) ExportInstallments(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error) {
	if to.Before(from) {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidRequest,
			"export range end precedes start", nil)
	}
	return s.installmentRepo.ListExportRows(ctx, ownerID, from, to)
}

func validateTransition(request *domain.SetInstallmentStatusRequest) error {
	switch request.Status {
	case domain.InstallmentStatusPaid:
		if request.PaymentDate == nil {
			return customError.WrapInvalidTransition(
				"marking an installment paid requires a payment date",
				customError.ErrPaymentDateRequired)
		}
	case domain.InstallmentStatusPending:
		if request.PaymentDate != nil {
			return customError.WrapInvalidTransition(
				"reverting an installment to pending must not carry a payment date",
				customError.ErrPaymentDateNotAllowed)
		}
	default:
		return customError.WrapInvalidTransition(
			fmt.Sprintf("unknown status %q", request.Status),
			customError.ErrUnknownInstallmentStatus)
	}
	return nil
}

// transactionRef builds the idempotency key for a ledger entry. Callers may
// supply their own; otherwise it derives deterministically from the credit,
// installment sequence, and mutation time so a retried write replays as a
// no-op.
func transactionRef(supplied string, creditID uuid.UUID, sequence int, at time.Time) string {
	if supplied != "" {
		return supplied
	}
	return fmt.Sprintf("%s:%d:%d", creditID, sequence, at.Unix())
}

func channelOrDefault(channel string) string {
	if channel == "" {
		return domain.PaymentChannelManual
	}
	return channel
}

func applyDerived(credit *domain.Credit, derived plan.DerivedFields) {
	credit.RemainingDebt = derived.RemainingDebt
	credit.RemainingInstallments = derived.RemainingInstallments
	credit.PaymentProgress = derived.PaymentProgress
	credit.OverdueDays = derived.OverdueDays
	credit.Status = derived.Status
}

// wrapStorageError keeps business errors intact and tags everything else as
// a database failure.
func wrapStorageError(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

// cache helpers: the summary cache is best-effort, failures are logged and
// never surfaced.

func (s *CreditService) cacheCredit(ctx context.Context, credit *domain.Credit) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(credit)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, creditCacheKeyPrefix+credit.ID.String(), payload, creditCacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("credit_id", credit.ID.String()).Msg("credit cache write failed")
	}
}

func (s *CreditService) cachedCredit(ctx context.Context, creditID uuid.UUID) *domain.Credit {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, creditCacheKeyPrefix+creditID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug().Err(err).Str("credit_id", creditID.String()).Msg("credit cache read failed")
		}
		return nil
	}
	var credit domain.Credit
	if err := json.Unmarshal(payload, &credit); err != nil {
		return nil
	}
	return &credit
}
