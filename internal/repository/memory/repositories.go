package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"currencyexchange/internal/domain"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) GetByIDTx(ctx context.Context, _ domain.Querier, id domain.AccountID) (*domain.Account, error) {
	r.store.mu.RLock()
	snapshot, ok := r.store.account(txFrom(ctx), id)
	r.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return domain.RehydrateAccount(cloneSnapshot(snapshot))
}

// GetByIDForUpdateTx is GetByIDTx: WithinTx already serializes writers.
func (r *AccountRepository) GetByIDForUpdateTx(ctx context.Context, q domain.Querier, id domain.AccountID) (*domain.Account, error) {
	return r.GetByIDTx(ctx, q, id)
}

func (r *AccountRepository) SaveTx(ctx context.Context, _ domain.Querier, account *domain.Account) (*domain.Account, error) {
	snapshot := account.Snapshot()
	tx := txFrom(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	previous, exists := r.store.account(tx, snapshot.ID)
	switch {
	case snapshot.Version == 0 && exists:
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountAlreadyExists, snapshot.ID)
	case snapshot.Version != 0 && (!exists || previous.Version != snapshot.Version):
		return nil, fmt.Errorf("%w: %s is no longer at version %d", domain.ErrConcurrentModification, snapshot.ID, snapshot.Version)
	}
	snapshot.Version++

	if tx == nil {
		r.store.accounts[snapshot.ID] = cloneSnapshot(snapshot)
		return domain.RehydrateAccount(cloneSnapshot(snapshot))
	}

	staged, restaged := tx.accounts[snapshot.ID]
	if !restaged {
		committed, existed := r.store.accounts[snapshot.ID]
		staged = stagedAccount{existed: existed, baseVersion: committed.Version}
	}
	staged.snapshot = cloneSnapshot(snapshot)
	tx.accounts[snapshot.ID] = staged
	return domain.RehydrateAccount(cloneSnapshot(snapshot))
}

type AccountQueryRepository struct {
	store *Store
}

func (r *AccountQueryRepository) GetByIDTx(ctx context.Context, _ domain.Querier, id domain.AccountID) (*domain.AccountView, error) {
	r.store.mu.RLock()
	snapshot, ok := r.store.account(txFrom(ctx), id)
	r.store.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	view := domain.ProjectAccount(cloneSnapshot(snapshot))
	return &view, nil
}

type CurrencyRepository struct {
	store *Store
}

func (r *CurrencyRepository) ExistsTx(_ context.Context, _ domain.Querier, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.currencies[strings.ToUpper(code)]
	return ok, nil
}

func (r *CurrencyRepository) ListTx(_ context.Context, _ domain.Querier) ([]string, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return sortedKeys(r.store.currencies), nil
}

type OutboxRepository struct {
	store *Store
}

func (r *OutboxRepository) CreateMessageTx(ctx context.Context, _ domain.Querier, msg *domain.OutboxMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if tx := txFrom(ctx); tx != nil {
		tx.outbox = append(tx.outbox, *msg)
	} else {
		r.store.outbox = append(r.store.outbox, *msg)
	}
	return nil
}

// GetPendingMessagesTx returns pending messages oldest first, including the
// ones written earlier in the same transaction.
func (r *OutboxRepository) GetPendingMessagesTx(ctx context.Context, _ domain.Querier, limit int) ([]domain.OutboxMessage, error) {
	tx := txFrom(ctx)

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	visible := make([]domain.OutboxMessage, 0, len(r.store.outbox))
	for _, msg := range r.store.outbox {
		if tx != nil {
			if updated, ok := tx.statuses[msg.ID]; ok {
				msg = updated
			}
		}
		visible = append(visible, msg)
	}
	if tx != nil {
		visible = append(visible, tx.outbox...)
	}

	var pending []domain.OutboxMessage
	for _, msg := range visible {
		if len(pending) == limit {
			break
		}
		if msg.Status == domain.OutboxStatusPending {
			pending = append(pending, msg)
		}
	}
	return pending, nil
}

// UpdateMessageStatusTx moves a pending message to its final status.
func (r *OutboxRepository) UpdateMessageStatusTx(ctx context.Context, _ domain.Querier, id string, status domain.OutboxMessageStatus) error {
	tx := txFrom(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if tx != nil {
		for i := range tx.outbox {
			if tx.outbox[i].ID == id {
				return setStatus(&tx.outbox[i], status)
			}
		}
		if updated, ok := tx.statuses[id]; ok {
			if err := setStatus(&updated, status); err != nil {
				return err
			}
			tx.statuses[id] = updated
			return nil
		}
	}

	for i := range r.store.outbox {
		if r.store.outbox[i].ID != id {
			continue
		}
		if tx == nil {
			return setStatus(&r.store.outbox[i], status)
		}
		updated := r.store.outbox[i]
		if err := setStatus(&updated, status); err != nil {
			return err
		}
		tx.statuses[id] = updated
		return nil
	}
	return fmt.Errorf("no outbox message found with id %s to update status", id)
}

func setStatus(msg *domain.OutboxMessage, status domain.OutboxMessageStatus) error {
	if msg.Status != domain.OutboxStatusPending {
		return fmt.Errorf("%w: %s", domain.ErrOutboxMessageNotPending, msg.ID)
	}
	msg.Status = status
	msg.SentAt = nil
	if status == domain.OutboxStatusSent {
		now := time.Now()
		msg.SentAt = &now
	}
	return nil
}

// Messages returns a copy of every committed outbox message in insertion
// order.
func (r *OutboxRepository) Messages() []domain.OutboxMessage {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]domain.OutboxMessage(nil), r.store.outbox...)
}

type InboxRepository struct {
	store *Store
}

func (r *InboxRepository) CreateMessageTx(ctx context.Context, _ domain.Querier, msg *domain.InboxMessage) error {
	tx := txFrom(ctx)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.hasInbox(tx, msg.ID) {
		return fmt.Errorf("inbox message %s: %w", msg.ID, domain.ErrMessageAlreadyProcessed)
	}
	if tx != nil {
		tx.inbox[msg.ID] = *msg
	} else {
		r.store.inbox[msg.ID] = *msg
	}
	return nil
}

func (r *InboxRepository) ExistsTx(ctx context.Context, _ domain.Querier, id string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.hasInbox(txFrom(ctx), id), nil
}

// Get returns the committed inbox message with id.
func (r *InboxRepository) Get(id string) (domain.InboxMessage, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	msg, ok := r.store.inbox[id]
	return msg, ok
}

func (s *Store) hasInbox(tx *txState, id string) bool {
	if tx != nil {
		if _, ok := tx.inbox[id]; ok {
			return true
		}
	}
	_, ok := s.inbox[id]
	return ok
}
