package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"currencyexchange/internal/domain"
	"currencyexchange/internal/domain/event"
	"currencyexchange/internal/rates"
	"currencyexchange/internal/repository"
	"currencyexchange/internal/repository/account_query_repo"
	"currencyexchange/internal/repository/accounts_repo"
	"currencyexchange/internal/repository/currency_repo"
	"currencyexchange/internal/repository/inbox_repo"
	"currencyexchange/internal/repository/outbox_repo"
	"currencyexchange/internal/util"
)

//go:generate mockgen -source=service.go -destination=../../mocks/accounts/mock_service.go -package=mock_accounts

type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.AccountView, error)
	ExchangeCurrency(ctx context.Context, accountID string, req ExchangeRequest) (*domain.AccountView, error)
	GetAccount(ctx context.Context, accountID string) (*domain.AccountView, error)
	SupportedCurrencies(ctx context.Context) ([]string, error)
	// ProcessExchangeCommand executes an exchange received as a message. A
	// message id is executed at most once; business rejections are recorded
	// and published instead of returned.
	ProcessExchangeCommand(ctx context.Context, messageID, topic string, cmd event.ExchangeRequestedEvent, rawPayload []byte) error
}

type accountService struct {
	txManager    repository.TxManager
	accountRepo  accounts_repo.AccountRepository
	queryRepo    account_query_repo.AccountQueryRepository
	currencyRepo currency_repo.CurrencyRepository
	inboxRepo    inbox_repo.InboxRepository
	outboxRepo   outbox_repo.OutboxRepository
	factory      *domain.AccountFactory
	rates        rates.Provider
	opts         Options
	logger       *zap.Logger
}

func NewAccountService(
	txManager repository.TxManager,
	accountRepo accounts_repo.AccountRepository,
	queryRepo account_query_repo.AccountQueryRepository,
	currencyRepo currency_repo.CurrencyRepository,
	inboxRepo inbox_repo.InboxRepository,
	outboxRepo outbox_repo.OutboxRepository,
	rateProvider rates.Provider,
	opts Options,
	logger *zap.Logger,
) AccountService {
	return &accountService{
		txManager:    txManager,
		accountRepo:  accountRepo,
		queryRepo:    queryRepo,
		currencyRepo: currencyRepo,
		inboxRepo:    inboxRepo,
		outboxRepo:   outboxRepo,
		factory:      domain.NewAccountFactory(),
		rates:        rateProvider,
		opts:         opts.withDefaults(),
		logger:       logger,
	}
}

func (s *accountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.AccountView, error) {
	account, err := s.factory.Create(req.FirstName, req.LastName, req.InitialBalance)
	if err != nil {
		s.logger.Warn("Rejected account creation", zap.Error(err))
		return nil, err
	}

	var view *domain.AccountView
	err = s.txManager.WithinTx(ctx, func(ctx context.Context, q domain.Querier) error {
		saved, err := s.accountRepo.SaveTx(ctx, q, account)
		if err != nil {
			return err
		}

		opening, _ := saved.Balance(domain.PLN)
		if err := s.enqueueTx(ctx, q, saved.ID(), event.TypeAccountOpened, event.AccountOpenedEvent{
			EventID:        util.GenerateUUID(),
			AccountID:      saved.ID().String(),
			FirstName:      saved.Name().FirstName(),
			LastName:       saved.Name().LastName(),
			Currency:       opening.Currency().Code(),
			InitialBalance: opening.Amount(),
			Timestamp:      time.Now().UTC(),
		}); err != nil {
			return err
		}

		view, err = s.queryRepo.GetByIDTx(ctx, q, saved.ID())
		return err
	})
	if err != nil {
		s.logger.Error("Failed to create account", zap.String("account_id", account.ID().String()), zap.Error(err))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account created",
		zap.String("account_id", view.AccountID),
		zap.String("initial_balance", req.InitialBalance.StringFixed(2)))
	return view, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*domain.AccountView, error) {
	id, err := domain.ParseAccountID(accountID)
	if err != nil {
		return nil, err
	}
	view, err := s.queryRepo.GetByIDTx(ctx, s.txManager.Querier(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Error("Failed to read account", zap.String("account_id", accountID), zap.Error(err))
		}
		return nil, err
	}
	return view, nil
}

func (s *accountService) SupportedCurrencies(ctx context.Context) ([]string, error) {
	codes, err := s.currencyRepo.ListTx(ctx, s.txManager.Querier())
	if err != nil {
		s.logger.Error("Failed to list supported currencies", zap.Error(err))
		return nil, err
	}
	return codes, nil
}

func (s *accountService) ExchangeCurrency(ctx context.Context, accountID string, req ExchangeRequest) (*domain.AccountView, error) {
	plan, err := s.prepareExchange(ctx, accountID, req)
	if err != nil {
		s.logExchangeFailure(accountID, req, err)
		return nil, err
	}

	view, err := s.applyExchange(ctx, plan, "", nil)
	if err != nil {
		s.logExchangeFailure(accountID, req, err)
		return nil, err
	}
	return view, nil
}

func (s *accountService) ProcessExchangeCommand(ctx context.Context, messageID, topic string, cmd event.ExchangeRequestedEvent, rawPayload []byte) error {
	logger := s.logger.With(zap.String("message_id", messageID), zap.String("account_id", cmd.AccountID))

	seen, err := s.inboxRepo.ExistsTx(ctx, s.txManager.Querier(), messageID)
	if err != nil {
		return fmt.Errorf("failed to check inbox for message %s: %w", messageID, err)
	}
	if seen {
		logger.Info("Exchange command already processed, skipping")
		return nil
	}

	req := ExchangeRequest{FromCurrency: cmd.FromCurrency, ToCurrency: cmd.ToCurrency, Amount: cmd.Amount}
	recordInbox := func(status domain.InboxMessageStatus) func(ctx context.Context, q domain.Querier) error {
		return func(ctx context.Context, q domain.Querier) error {
			now := time.Now().UTC()
			return s.inboxRepo.CreateMessageTx(ctx, q, &domain.InboxMessage{
				ID:          messageID,
				Topic:       topic,
				Payload:     rawPayload,
				Status:      status,
				ReceivedAt:  now,
				ProcessedAt: &now,
			})
		}
	}

	plan, err := s.prepareExchange(ctx, cmd.AccountID, req)
	if err == nil {
		_, err = s.applyExchange(ctx, plan, cmd.RequestID, recordInbox(domain.InboxStatusProcessed))
	}
	switch {
	case err == nil:
		logger.Info("Exchange command processed")
		return nil
	case errors.Is(err, domain.ErrMessageAlreadyProcessed):
		logger.Info("Exchange command processed concurrently, skipping")
		return nil
	case !domain.IsBusinessRejection(err):
		logger.Error("Failed to process exchange command", zap.Error(err))
		return err
	}

	logger.Warn("Exchange command rejected", zap.Error(err))
	rejectErr := s.txManager.WithinTx(ctx, func(ctx context.Context, q domain.Querier) error {
		if err := recordInbox(domain.InboxStatusRejected)(ctx, q); err != nil {
			return err
		}
		return s.enqueueTx(ctx, q, domain.AccountID(cmd.AccountID), event.TypeExchangeRejected, event.ExchangeRejectedEvent{
			EventID:   util.GenerateUUID(),
			RequestID: cmd.RequestID,
			AccountID: cmd.AccountID,
			Reason:    err.Error(),
			Timestamp: time.Now().UTC(),
		})
	})
	if rejectErr != nil && !errors.Is(rejectErr, domain.ErrMessageAlreadyProcessed) {
		return fmt.Errorf("failed to record rejected exchange command %s: %w", messageID, rejectErr)
	}
	return nil
}

type exchangePlan struct {
	accountID domain.AccountID
	amount    domain.Money
	rate      domain.ExchangeRate
}

// prepareExchange runs every check that does not need the account lock, in
// this order: amount, account existence, supported currencies, distinct
// currencies, rate lookup.
func (s *accountService) prepareExchange(ctx context.Context, accountID string, req ExchangeRequest) (exchangePlan, error) {
	if !req.Amount.IsPositive() {
		return exchangePlan{}, fmt.Errorf("%w: amount to exchange must be greater than zero", domain.ErrInvalidAmount)
	}
	if !req.Amount.Equal(req.Amount.Round(2)) {
		return exchangePlan{}, fmt.Errorf("%w: amount %s has more than 2 decimal places", domain.ErrInvalidAmount, req.Amount)
	}

	id, err := domain.ParseAccountID(accountID)
	if err != nil {
		return exchangePlan{}, err
	}
	if _, err := s.accountRepo.GetByIDTx(ctx, s.txManager.Querier(), id); err != nil {
		return exchangePlan{}, err
	}

	from, err := s.supportedCurrency(ctx, req.FromCurrency)
	if err != nil {
		return exchangePlan{}, err
	}
	to, err := s.supportedCurrency(ctx, req.ToCurrency)
	if err != nil {
		return exchangePlan{}, err
	}
	if from.Equal(to) {
		return exchangePlan{}, fmt.Errorf("%w: %s", domain.ErrSameCurrency, from)
	}

	amount, err := domain.NewMoney(req.Amount, from)
	if err != nil {
		return exchangePlan{}, err
	}

	rate, err := s.currentRate(ctx, from, to)
	if err != nil {
		return exchangePlan{}, err
	}
	return exchangePlan{accountID: id, amount: amount, rate: rate}, nil
}

func (s *accountService) supportedCurrency(ctx context.Context, code string) (domain.Currency, error) {
	currency, err := domain.NewCurrency(code)
	if err != nil {
		return domain.Currency{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, code)
	}
	ok, err := s.currencyRepo.ExistsTx(ctx, s.txManager.Querier(), currency.Code())
	if err != nil {
		return domain.Currency{}, fmt.Errorf("failed to check currency %s: %w", currency, err)
	}
	if !ok {
		return domain.Currency{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedCurrency, currency)
	}
	return currency, nil
}

func (s *accountService) currentRate(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.RateTimeout)
	defer cancel()

	value, err := s.rates.ExchangeRate(ctx, from.Code(), to.Code())
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %w", domain.ErrRateUnavailable, err)
	}
	rate, err := domain.NewExchangeRate(from, to, value)
	if err != nil {
		return domain.ExchangeRate{}, fmt.Errorf("%w: %w", domain.ErrRateUnavailable, err)
	}
	return rate, nil
}

// applyExchange locks the account, applies the exchange, saves it and queues
// the event in one transaction, retrying on optimistic-lock conflicts. inTx,
// if set, runs inside the same transaction.
func (s *accountService) applyExchange(ctx context.Context, plan exchangePlan, requestID string, inTx func(ctx context.Context, q domain.Querier) error) (*domain.AccountView, error) {
	var view *domain.AccountView
	for attempt := 1; ; attempt++ {
		err := s.txManager.WithinTx(ctx, func(ctx context.Context, q domain.Querier) error {
			account, err := s.accountRepo.GetByIDForUpdateTx(ctx, q, plan.accountID)
			if err != nil {
				return err
			}
			if err := account.Exchange(plan.amount, plan.rate); err != nil {
				return err
			}
			saved, err := s.accountRepo.SaveTx(ctx, q, account)
			if err != nil {
				return err
			}

			credited, err := plan.rate.Convert(plan.amount)
			if err != nil {
				return err
			}
			if err := s.enqueueTx(ctx, q, saved.ID(), event.TypeCurrencyExchanged, event.CurrencyExchangedEvent{
				EventID:      util.GenerateUUID(),
				RequestID:    requestID,
				AccountID:    saved.ID().String(),
				FromCurrency: plan.rate.From().Code(),
				ToCurrency:   plan.rate.To().Code(),
				Debited:      plan.amount.Amount(),
				Credited:     credited.Amount(),
				Rate:         plan.rate.Rate(),
				Version:      saved.Version(),
				Timestamp:    time.Now().UTC(),
			}); err != nil {
				return err
			}
			if inTx != nil {
				if err := inTx(ctx, q); err != nil {
					return err
				}
			}

			view, err = s.queryRepo.GetByIDTx(ctx, q, saved.ID())
			return err
		})
		if err == nil {
			s.logger.Info("Currency exchanged",
				zap.String("account_id", plan.accountID.String()),
				zap.Stringer("debited", plan.amount),
				zap.String("rate", plan.rate.Rate().String()),
				zap.String("to", plan.rate.To().Code()))
			return view, nil
		}
		if !errors.Is(err, domain.ErrConcurrentModification) || attempt >= s.opts.MaxAttempts {
			return nil, err
		}
		s.logger.Warn("Account modified concurrently, retrying exchange",
			zap.String("account_id", plan.accountID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
}

func (s *accountService) enqueueTx(ctx context.Context, q domain.Querier, accountID domain.AccountID, messageType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", messageType, err)
	}
	msg := &domain.OutboxMessage{
		ID:            util.GenerateUUID(),
		AggregateID:   accountID.String(),
		AggregateType: domain.AggregateTypeAccount,
		MessageType:   messageType,
		Topic:         s.opts.EventsTopic,
		Key:           accountID.String(),
		Payload:       body,
		Status:        domain.OutboxStatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, q, msg); err != nil {
		return fmt.Errorf("failed to queue %s event: %w", messageType, err)
	}
	return nil
}

func (s *accountService) logExchangeFailure(accountID string, req ExchangeRequest, err error) {
	fields := []zap.Field{
		zap.String("account_id", accountID),
		zap.String("from", req.FromCurrency),
		zap.String("to", req.ToCurrency),
		zap.String("amount", req.Amount.String()),
		zap.Error(err),
	}
	switch {
	case domain.IsBusinessRejection(err), errors.Is(err, domain.ErrRateUnavailable), errors.Is(err, domain.ErrConcurrentModification):
		s.logger.Warn("Exchange rejected", fields...)
	default:
		s.logger.Error("Exchange failed", fields...)
	}
}
