package accounts_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"currencyexchange/internal/app/accounts"
	"currencyexchange/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type AccountHandler struct {
	service accounts.AccountService
	logger  *zap.Logger
}

func NewAccountHandler(s accounts.AccountService, l *zap.Logger) *AccountHandler {
	return &AccountHandler{service: s, logger: l}
}

func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.service.CreateAccount(r.Context(), accounts.CreateAccountRequest{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		InitialBalance: *req.InitialBalancePLN,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newAccountResponse(view))
}

func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetAccount(r.Context(), chi.URLParam(r, "accountId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newAccountResponse(view))
}

func (h *AccountHandler) ExchangeHandler(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.service.ExchangeCurrency(r.Context(), chi.URLParam(r, "accountId"), accounts.ExchangeRequest{
		FromCurrency: req.FromCurrency,
		ToCurrency:   req.ToCurrency,
		Amount:       *req.Amount,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newAccountResponse(view))
}

func (h *AccountHandler) ListCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.SupportedCurrencies(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CurrenciesResponse{Currencies: codes})
}

// decode reads and validates a JSON body. On failure it writes the response
// and returns false.
func (h *AccountHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = validationMessage(fe)
		}
		h.writeJSON(w, http.StatusBadRequest, fields)
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

func (h *AccountHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		status = http.StatusNotFound
	case domain.IsBusinessRejection(err):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConcurrentModification):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
		h.writeJSON(w, status, ErrorResponse{Error: "internal server error"})
		return
	}
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *AccountHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
