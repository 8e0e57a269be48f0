package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kredipanel/credit-engine/internal/domain"
	customError "github.com/kredipanel/credit-engine/pkg/errors"
	"github.com/kredipanel/credit-engine/tests/mocks"
)

func newTestRouter(service *mocks.MockCreditService) *mux.Router {
	h := NewCreditHandler(service)

	router := mux.NewRouter()
	router.HandleFunc("/credits", h.CreateCredit).Methods(http.MethodPost)
	router.HandleFunc("/credits", h.ListCredits).Methods(http.MethodGet)
	router.HandleFunc("/credits/{creditId}", h.GetCredit).Methods(http.MethodGet)
	router.HandleFunc("/credits/{creditId}/installments", h.ListInstallments).Methods(http.MethodGet)
	router.HandleFunc("/credits/{creditId}/payments", h.GetPaymentHistory).Methods(http.MethodGet)
	router.HandleFunc("/installments/upcoming", h.ListUpcoming).Methods(http.MethodGet)
	router.HandleFunc("/installments/export", h.ExportInstallments).Methods(http.MethodGet)
	router.HandleFunc("/installments/{installmentId}/status", h.SetInstallmentStatus).Methods(http.MethodPost)
	return router
}

func TestCreateCredit_Handler(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	ownerID := uuid.New()
	body := fmt.Sprintf(`{
		"ownerId": %q,
		"name": "İhtiyaç Kredisi",
		"principal": 10000,
		"monthlyPayment": 1000,
		"annualRatePercent": 2,
		"totalInstallments": 10,
		"startDate": "2024-01-15T00:00:00Z"
	}`, ownerID)

	credit := &domain.Credit{ID: uuid.New(), OwnerID: ownerID, Status: domain.CreditStatusActive}
	service.On("CreateCredit", mock.Anything, mock.MatchedBy(func(r *domain.CreateCreditRequest) bool {
		return r.OwnerID == ownerID &&
			r.TotalInstallments == 10 &&
			r.Principal.Equal(decimal.NewFromInt(10000))
	})).Return(credit, []*domain.Installment{{CreditID: credit.ID, SequenceNumber: 1}}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/credits", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusCreated, recorder.Code)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Credit       *domain.Credit        `json:"credit"`
			Installments []*domain.Installment `json:"installments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, credit.ID, envelope.Data.Credit.ID)
	assert.Len(t, envelope.Data.Installments, 1)
	service.AssertExpectations(t)
}

func TestCreateCredit_Handler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"ownerId": `},
		{"missing owner", `{"name": "x", "principal": 100, "monthlyPayment": 10, "totalInstallments": 5, "startDate": "2024-01-15T00:00:00Z"}`},
		{"zero principal", fmt.Sprintf(`{"ownerId": %q, "name": "x", "principal": 0, "monthlyPayment": 10, "totalInstallments": 5, "startDate": "2024-01-15T00:00:00Z"}`, uuid.New())},
		{"zero installments", fmt.Sprintf(`{"ownerId": %q, "name": "x", "principal": 100, "monthlyPayment": 10, "totalInstallments": 0, "startDate": "2024-01-15T00:00:00Z"}`, uuid.New())},
		{"rate above 100", fmt.Sprintf(`{"ownerId": %q, "name": "x", "principal": 100, "monthlyPayment": 10, "annualRatePercent": 150, "totalInstallments": 5, "startDate": "2024-01-15T00:00:00Z"}`, uuid.New())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mocks.MockCreditService{}
			router := newTestRouter(service)

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/credits", bytes.NewBufferString(tt.body)))

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			service.AssertNotCalled(t, "CreateCredit", mock.Anything, mock.Anything)
		})
	}
}

func TestGetCredit_Handler_NotFound(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	missing := uuid.New()
	service.On("GetCredit", mock.Anything, missing).Return(nil, customError.WrapCreditNotFound(missing.String()))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/credits/"+missing.String(), nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), customError.ErrCodeCreditNotFound)
}

func TestGetCredit_Handler_BadID(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/credits/not-a-uuid", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "GetCredit", mock.Anything, mock.Anything)
}

func TestSetInstallmentStatus_Handler(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	installmentID := uuid.New()
	paymentDate := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	installment := &domain.Installment{ID: installmentID, Status: domain.InstallmentStatusPaid, PaymentDate: &paymentDate}
	credit := &domain.Credit{ID: uuid.New(), PaymentProgress: 10, Status: domain.CreditStatusActive}

	service.On("SetInstallmentStatus", mock.Anything, installmentID, mock.MatchedBy(func(r *domain.SetInstallmentStatusRequest) bool {
		return r.Status == domain.InstallmentStatusPaid &&
			r.PaymentDate != nil && r.PaymentDate.Equal(paymentDate)
	})).Return(installment, credit, nil)

	body := `{"status": "paid", "paymentDate": "2024-02-10T00:00:00Z"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/installments/"+installmentID.String()+"/status", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusOK, recorder.Code)

	var envelope struct {
		Data domain.SetInstallmentStatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, domain.InstallmentStatusPaid, envelope.Data.Installment.Status)
	assert.Equal(t, 10, envelope.Data.Credit.PaymentProgress)
	service.AssertExpectations(t)
}

func TestSetInstallmentStatus_Handler_InvalidStatus(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	body := `{"status": "cancelled"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/installments/"+uuid.NewString()+"/status", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "SetInstallmentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetInstallmentStatus_Handler_InvalidTransition(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	installmentID := uuid.New()
	service.On("SetInstallmentStatus", mock.Anything, installmentID, mock.Anything).
		Return(nil, nil, customError.WrapInvalidTransition("marking an installment paid requires a payment date", customError.ErrPaymentDateRequired))

	body := `{"status": "paid"}`
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/installments/"+installmentID.String()+"/status", bytes.NewBufferString(body)))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), customError.ErrCodeInvalidTransition)
}

func TestListUpcoming_Handler(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	ownerID := uuid.New()
	service.On("ListUpcoming", mock.Anything, ownerID, 14).Return([]*domain.Installment{
		{SequenceNumber: 2, Status: domain.InstallmentStatusPending},
	}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/installments/upcoming?ownerId="+ownerID.String()+"&horizonDays=14", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	service.AssertExpectations(t)
}

func TestListUpcoming_Handler_DefaultHorizon(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	ownerID := uuid.New()
	service.On("ListUpcoming", mock.Anything, ownerID, defaultUpcomingHorizonDays).Return([]*domain.Installment{}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/installments/upcoming?ownerId="+ownerID.String(), nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	service.AssertExpectations(t)
}

func TestExportInstallments_Handler(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	ownerID := uuid.New()
	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC)
	paymentDate := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	service.On("ExportInstallments", mock.Anything, ownerID, from, to).Return([]*domain.InstallmentExportRow{
		{
			CreditName:     "İhtiyaç Kredisi",
			SequenceNumber: 1,
			DueDate:        time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
			TotalPayment:   decimal.NewFromInt(1000),
			Status:         domain.InstallmentStatusPaid,
			PaymentDate:    &paymentDate,
		},
		{
			CreditName:     "İhtiyaç Kredisi",
			SequenceNumber: 2,
			DueDate:        time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			TotalPayment:   decimal.NewFromInt(1000),
			Status:         domain.InstallmentStatusPending,
		},
	}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet,
		"/installments/export?ownerId="+ownerID.String()+"&from=2024-01-01&to=2024-03-31", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/csv", recorder.Header().Get("Content-Type"))

	lines := strings.Split(strings.TrimSpace(recorder.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "credit_name,sequence_number,due_date,total_payment,status,payment_date", lines[0])
	assert.Contains(t, lines[1], "1,2024-02-15,1000.00,paid,2024-02-10")
	assert.Contains(t, lines[2], "2,2024-03-15,1000.00,pending,")
}

func TestExportInstallments_Handler_BadRange(t *testing.T) {
	service := &mocks.MockCreditService{}
	router := newTestRouter(service)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet,
		"/installments/export?ownerId="+uuid.NewString()+"&from=January&to=2024-03-31", nil))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	service.AssertNotCalled(t, "ExportInstallments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
