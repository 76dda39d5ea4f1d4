package accounts_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"currencyexchange/internal/app/accounts"
)

func RegisterRoutes(r chi.Router, s accounts.AccountService, l *zap.Logger) {
	handler := NewAccountHandler(s, l.With(zap.String("component", "AccountHTTPHandler")))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Currency exchange service is healthy!")); err != nil {
			handler.logger.Warn("Failed to write health response", zap.Error(err))
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/currencies", handler.ListCurrenciesHandler)
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", handler.CreateAccountHandler)
			r.Get("/{accountId}", handler.GetAccountHandler)
			r.Post("/{accountId}/exchange", handler.ExchangeHandler)
		})
	})
}
