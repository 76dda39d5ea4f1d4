// Package memory is a single in-process store that backs every repository.
// The write-side account repository and the read-side projection share the
// same map, so the projection is derived on each read and never lags.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"currencyexchange/internal/domain"
)

type Store struct {
	// txMu serializes units of work.
	txMu sync.Mutex

	mu         sync.RWMutex
	accounts   map[domain.AccountID]domain.AccountSnapshot
	currencies map[string]struct{}
	outbox     []domain.OutboxMessage
	inbox      map[string]domain.InboxMessage
}

func NewStore(supportedCurrencies ...string) *Store {
	s := &Store{
		accounts:   make(map[domain.AccountID]domain.AccountSnapshot),
		currencies: make(map[string]struct{}),
		inbox:      make(map[string]domain.InboxMessage),
	}
	for _, code := range supportedCurrencies {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			s.currencies[code] = struct{}{}
		}
	}
	return s
}

// Querier returns nil: memory repositories ignore the querier argument.
func (s *Store) Querier() domain.Querier {
	return nil
}

// WithinTx runs fn while holding the store's transaction lock. Writes made
// through the store's repositories with fn's context are staged and become
// visible to other readers only once fn returns nil. Outside a transaction
// writes are final immediately.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, q domain.Querier) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := newTxState()
	if err := fn(context.WithValue(ctx, txKey{}, tx), nil); err != nil {
		return err
	}
	return s.commit(tx)
}

type txKey struct{}

// txState holds the writes of one open transaction. It is guarded by
// Store.mu like the committed data.
type txState struct {
	accounts map[domain.AccountID]stagedAccount
	outbox   []domain.OutboxMessage
	// statuses holds updated copies of already committed outbox messages.
	statuses map[string]domain.OutboxMessage
	inbox    map[string]domain.InboxMessage
}

type stagedAccount struct {
	snapshot domain.AccountSnapshot
	// existed and baseVersion describe the committed row the transaction
	// started from.
	existed     bool
	baseVersion int64
}

func newTxState() *txState {
	return &txState{
		accounts: make(map[domain.AccountID]stagedAccount),
		statuses: make(map[string]domain.OutboxMessage),
		inbox:    make(map[string]domain.InboxMessage),
	}
}

func txFrom(ctx context.Context) *txState {
	tx, _ := ctx.Value(txKey{}).(*txState)
	return tx
}

// commit re-checks staged account versions and inbox ids against writes
// made outside transactions, then applies everything at once.
func (s *Store) commit(tx *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, staged := range tx.accounts {
		current, exists := s.accounts[id]
		if exists != staged.existed || (exists && current.Version != staged.baseVersion) {
			if !staged.existed {
				return fmt.Errorf("%w: %s", domain.ErrAccountAlreadyExists, id)
			}
			return fmt.Errorf("%w: %s is no longer at version %d", domain.ErrConcurrentModification, id, staged.baseVersion)
		}
	}
	for id := range tx.inbox {
		if _, exists := s.inbox[id]; exists {
			return fmt.Errorf("inbox message %s: %w", id, domain.ErrMessageAlreadyProcessed)
		}
	}

	for id, staged := range tx.accounts {
		s.accounts[id] = staged.snapshot
	}
	for i := range s.outbox {
		if updated, ok := tx.statuses[s.outbox[i].ID]; ok {
			s.outbox[i] = updated
		}
	}
	s.outbox = append(s.outbox, tx.outbox...)
	for id, msg := range tx.inbox {
		s.inbox[id] = msg
	}
	return nil
}

// account returns the snapshot visible to tx. Callers hold s.mu.
func (s *Store) account(tx *txState, id domain.AccountID) (domain.AccountSnapshot, bool) {
	if tx != nil {
		if staged, ok := tx.accounts[id]; ok {
			return staged.snapshot, true
		}
	}
	snapshot, ok := s.accounts[id]
	return snapshot, ok
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) AccountQueries() *AccountQueryRepository {
	return &AccountQueryRepository{store: s}
}

func (s *Store) Currencies() *CurrencyRepository {
	return &CurrencyRepository{store: s}
}

func (s *Store) Outbox() *OutboxRepository {
	return &OutboxRepository{store: s}
}

func (s *Store) Inbox() *InboxRepository {
	return &InboxRepository{store: s}
}

func cloneSnapshot(snapshot domain.AccountSnapshot) domain.AccountSnapshot {
	snapshot.Wallets = append([]domain.WalletSnapshot(nil), snapshot.Wallets...)
	return snapshot
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
