package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/kredipanel/credit-engine/internal/domain"
	"github.com/kredipanel/credit-engine/pkg/response"
)

const defaultUpcomingHorizonDays = 30

// CreditService is the surface the HTTP layer needs from the engine.
type CreditService interface {
	CreateCredit(ctx context.Context, request *domain.CreateCreditRequest) (*domain.Credit, []*domain.Installment, error)
	GetCredit(ctx context.Context, creditID uuid.UUID) (*domain.Credit, error)
	ListCredits(ctx context.Context, ownerID uuid.UUID) ([]*domain.Credit, error)
	ListInstallments(ctx context.Context, creditID uuid.UUID) ([]*domain.Installment, error)
	ListUpcoming(ctx context.Context, ownerID uuid.UUID, horizonDays int) ([]*domain.Installment, error)
	SetInstallmentStatus(ctx context.Context, installmentID uuid.UUID, request *domain.SetInstallmentStatusRequest) (*domain.Installment, *domain.Credit, error)
	GetPaymentHistory(ctx context.Context, creditID uuid.UUID) ([]*domain.PaymentRecord, error)
	ExportInstallments(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]*domain.InstallmentExportRow, error)
}

type CreditHandler struct {
	service   CreditService
	validator *validator.Validate
}

func NewCreditHandler(service CreditService) *CreditHandler {
	v := validator.New()
	// Numeric validation tags (gt, gte, lte) need decimals as floats.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	return &CreditHandler{
		service:   service,
		validator: v,
	}
}

// CreateCredit handles POST /credits
func (h *CreditHandler) CreateCredit(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	credit, installments, err := h.service.CreateCredit(r.Context(), &request)
	if err != nil {
		response.BusinessError(w, "Failed to create credit", err)
		return
	}

	response.Created(w, domain.CreateCreditResponse{
		Credit:       credit,
		Installments: installments,
	})
}

// GetCredit handles GET /credits/{creditId}
func (h *CreditHandler) GetCredit(w http.ResponseWriter, r *http.Request) {
	creditID, ok := pathUUID(w, r, "creditId")
	if !ok {
		return
	}

	credit, err := h.service.GetCredit(r.Context(), creditID)
	if err != nil {
		response.BusinessError(w, "Failed to get credit", err)
		return
	}

	response.Success(w, credit)
}

// ListCredits handles GET /credits?ownerId=...
func (h *CreditHandler) ListCredits(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := queryUUID(w, r, "ownerId")
	if !ok {
		return
	}

	credits, err := h.service.ListCredits(r.Context(), ownerID)
	if err != nil {
		response.BusinessError(w, "Failed to list credits", err)
		return
	}

	response.Success(w, credits)
}

// ListInstallments handles GET /credits/{creditId}/installments
func (h *CreditHandler) ListInstallments(w http.ResponseWriter, r *http.Request) {
	creditID, ok := pathUUID(w, r, "creditId")
	if !ok {
		return
	}

	installments, err := h.service.ListInstallments(r.Context(), creditID)
	if err != nil {
		response.BusinessError(w, "Failed to list installments", err)
		return
	}

	response.Success(w, installments)
}

// SetInstallmentStatus handles POST /installments/{installmentId}/status
func (h *CreditHandler) SetInstallmentStatus(w http.ResponseWriter, r *http.Request) {
	installmentID, ok := pathUUID(w, r, "installmentId")
	if !ok {
		return
	}

	var request domain.SetInstallmentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	installment, credit, err := h.service.SetInstallmentStatus(r.Context(), installmentID, &request)
	if err != nil {
		response.BusinessError(w, "Failed to update installment status", err)
		return
	}

	response.Success(w, domain.SetInstallmentStatusResponse{
		Installment: installment,
		Credit:      credit,
	})
}

// ListUpcoming handles GET /installments/upcoming?ownerId=...&horizonDays=...
func (h *CreditHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := queryUUID(w, r, "ownerId")
	if !ok {
		return
	}

	horizonDays := defaultUpcomingHorizonDays
	if raw := r.URL.Query().Get("horizonDays"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "horizonDays must be an integer", err)
			return
		}
		horizonDays = parsed
	}

	installments, err := h.service.ListUpcoming(r.Context(), ownerID, horizonDays)
	if err != nil {
		response.BusinessError(w, "Failed to list upcoming installments", err)
		return
	}

	response.Success(w, installments)
}

// GetPaymentHistory handles GET /credits/{creditId}/payments
func (h *CreditHandler) GetPaymentHistory(w http.ResponseWriter, r *http.Request) {
	creditID, ok := pathUUID(w, r, "creditId")
	if !ok {
		return
	}

	records, err := h.service.GetPaymentHistory(r.Context(), creditID)
	if err != nil {
		response.BusinessError(w, "Failed to get payment history", err)
		return
	}

	response.Success(w, records)
}

// ExportInstallments handles GET /installments/export?ownerId=...&from=...&to=...
// and streams the rows as CSV.
func (h *CreditHandler) ExportInstallments(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := queryUUID(w, r, "ownerId")
	if !ok {
		return
	}

	from, err := queryDate(r, "from")
	if err != nil {
		response.BadRequest(w, "from must be a YYYY-MM-DD date", err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		response.BadRequest(w, "to must be a YYYY-MM-DD date", err)
		return
	}

	rows, err := h.service.ExportInstallments(r.Context(), ownerID, from, to)
	if err != nil {
		response.BusinessError(w, "Failed to export installments", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="installments.csv"`)
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"credit_name", "sequence_number", "due_date", "total_payment", "status", "payment_date"})
	for _, row := range rows {
		paymentDate := ""
		if row.PaymentDate != nil {
			paymentDate = row.PaymentDate.Format("2006-01-02")
		}
		_ = writer.Write([]string{
			row.CreditName,
			strconv.Itoa(row.SequenceNumber),
			row.DueDate.Format("2006-01-02"),
			row.TotalPayment.StringFixed(2),
			row.Status,
			paymentDate,
		})
	}
	writer.Flush()
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, fmt.Sprintf("%s must be a valid UUID", name), err)
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get(name))
	if err != nil {
		response.BadRequest(w, fmt.Sprintf("%s must be a valid UUID", name), err)
		return uuid.Nil, false
	}
	return id, true
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	return time.Parse("2006-01-02", raw)
}
