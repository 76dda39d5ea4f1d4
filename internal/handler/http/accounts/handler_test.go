package accounts_http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"currencyexchange/internal/app/accounts"
	"currencyexchange/internal/domain"
	mock_accounts "currencyexchange/internal/mocks/accounts"
)

const accountID = "5f0c2a7e-3a5b-4c1e-9d8f-0a1b2c3d4e5f"

func newTestRouter(t *testing.T) (http.Handler, *mock_accounts.MockAccountService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mock_accounts.NewMockAccountService(ctrl)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zaptest.NewLogger(t))
	return r, svc
}

func sampleView() *domain.AccountView {
	return &domain.AccountView{
		AccountID: accountID,
		FirstName: "Jan",
		LastName:  "Kowalski",
		Balances: []domain.WalletView{
			{CurrencyCode: "PLN", Balance: decimal.RequireFromString("600")},
			{CurrencyCode: "USD", Balance: decimal.RequireFromString("100.5")},
		},
	}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateAccountHandler(t *testing.T) {
	h, svc := newTestRouter(t)
	svc.EXPECT().
		CreateAccount(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req accounts.CreateAccountRequest) (*domain.AccountView, error) {
			assert.Equal(t, "Jan", req.FirstName)
			assert.Equal(t, "Kowalski", req.LastName)
			assert.Equal(t, "1000.00", req.InitialBalance.StringFixed(2))
			return sampleView(), nil
		})

	rec := do(t, h, http.MethodPost, "/api/accounts", `{"firstName":"Jan","lastName":"Kowalski","initialBalancePLN":1000.00}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"accountId": "`+accountID+`",
		"firstName": "Jan",
		"lastName": "Kowalski",
		"balances": [
			{"currencyCode": "PLN", "balance": 600.00},
			{"currencyCode": "USD", "balance": 100.50}
		]
	}`, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"balance":600.00`)
}

func TestCreateAccountHandler_Validation(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/accounts", `{"firstName":"","lastName":"`+strings.Repeat("k", 51)+`"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var fields map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
	assert.Equal(t, map[string]string{
		"firstName":         "must not be empty",
		"lastName":          "must be at most 50 characters",
		"initialBalancePLN": "must not be empty",
	}, fields)
}

func TestCreateAccountHandler_MalformedBody(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, body := range []string{`{`, `{"firstName":"Jan","lastName":"K","initialBalancePLN":"lots"}`} {
		rec := do(t, h, http.MethodPost, "/api/accounts", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())
	}
}

func TestGetAccountHandler(t *testing.T) {
	h, svc := newTestRouter(t)
	svc.EXPECT().GetAccount(gomock.Any(), accountID).Return(sampleView(), nil)

	rec := do(t, h, http.MethodGet, "/api/accounts/"+accountID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, accountID, resp.AccountID)
	require.Len(t, resp.Balances, 2)
	assert.Equal(t, json.Number("100.50"), resp.Balances[1].Balance)
}

func TestExchangeHandler(t *testing.T) {
	h, svc := newTestRouter(t)
	svc.EXPECT().
		ExchangeCurrency(gomock.Any(), accountID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, req accounts.ExchangeRequest) (*domain.AccountView, error) {
			assert.Equal(t, "PLN", req.FromCurrency)
			assert.Equal(t, "USD", req.ToCurrency)
			assert.Equal(t, "400.00", req.Amount.StringFixed(2))
			return sampleView(), nil
		})

	rec := do(t, h, http.MethodPost, "/api/accounts/"+accountID+"/exchange", `{"fromCurrency":"PLN","toCurrency":"USD","amount":400}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExchangeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", fmt.Errorf("%w: x", domain.ErrAccountNotFound), http.StatusNotFound, "account not found: x"},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "invalid amount"},
		{"unsupported currency", domain.ErrUnsupportedCurrency, http.StatusBadRequest, "unsupported currency"},
		{"same currency", domain.ErrSameCurrency, http.StatusBadRequest, domain.ErrSameCurrency.Error()},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest, "insufficient funds"},
		{"limit exceeded", domain.ErrLimitExceeded, http.StatusBadRequest, domain.ErrLimitExceeded.Error()},
		{"conflict", domain.ErrConcurrentModification, http.StatusConflict, domain.ErrConcurrentModification.Error()},
		{"rate unavailable", fmt.Errorf("%w: timeout", domain.ErrRateUnavailable), http.StatusServiceUnavailable, "exchange rate unavailable: timeout"},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusInternalServerError, "internal server error"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newTestRouter(t)
			svc.EXPECT().ExchangeCurrency(gomock.Any(), accountID, gomock.Any()).Return(nil, tt.err)

			rec := do(t, h, http.MethodPost, "/api/accounts/"+accountID+"/exchange", `{"fromCurrency":"PLN","toCurrency":"USD","amount":1}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body.Error)
		})
	}
}

func TestExchangeHandler_MissingAmount(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/accounts/"+accountID+"/exchange", `{"fromCurrency":"PLN","toCurrency":"USD"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"amount":"must not be empty"}`, rec.Body.String())
}

func TestListCurrenciesHandler(t *testing.T) {
	h, svc := newTestRouter(t)
	svc.EXPECT().SupportedCurrencies(gomock.Any()).Return([]string{"EUR", "PLN", "USD"}, nil)

	rec := do(t, h, http.MethodGet, "/api/currencies", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"currencies":["EUR","PLN","USD"]}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Currency exchange service is healthy!", rec.Body.String())
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestHealth_LogsWriteFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := chi.NewRouter()
	RegisterRoutes(r, mock_accounts.NewMockAccountService(gomock.NewController(t)), zap.New(core))

	w := brokenWriter{httptest.NewRecorder()}
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("Failed to write health response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "connection reset by peer", entries[0].ContextMap()["error"])
}
