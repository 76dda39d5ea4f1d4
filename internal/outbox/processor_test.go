package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"currencyexchange/internal/domain"
	"currencyexchange/internal/repository/memory"
)

type producedMessage struct {
	topic string
	key   string
	value string
}

type fakeProducer struct {
	mu       sync.Mutex
	produced []producedMessage
	failOn   string
}

func (p *fakeProducer) Produce(_ context.Context, topic string, key, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn != "" && string(message) == p.failOn {
		return errors.New("broker unavailable")
	}
	p.produced = append(p.produced, producedMessage{topic: topic, key: string(key), value: string(message)})
	return nil
}

func (p *fakeProducer) Close() error { return nil }

func (p *fakeProducer) messages() []producedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]producedMessage(nil), p.produced...)
}

func seed(t *testing.T, store *memory.Store, ids ...string) {
	t.Helper()
	for i, id := range ids {
		require.NoError(t, store.Outbox().CreateMessageTx(context.Background(), nil, &domain.OutboxMessage{
			ID:            id,
			AggregateID:   "acc-1",
			AggregateType: domain.AggregateTypeAccount,
			MessageType:   "CurrencyExchanged",
			Topic:         "account_events",
			Key:           "acc-1",
			Payload:       []byte(`{"n":"` + id + `"}`),
			Status:        domain.OutboxStatusPending,
			CreatedAt:     time.Now().Add(time.Duration(i) * time.Millisecond),
		}))
	}
}

func statuses(store *memory.Store) map[string]domain.OutboxMessageStatus {
	out := map[string]domain.OutboxMessageStatus{}
	for _, msg := range store.Outbox().Messages() {
		out[msg.ID] = msg.Status
	}
	return out
}

func TestProcessOutboxMessages(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "m1", "m2", "m3")
	producer := &fakeProducer{}
	p := NewProcessor(store, store.Outbox(), producer, time.Second, time.Second, 2, zaptest.NewLogger(t))

	sent, err := p.processOutboxMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	sent, err = p.processOutboxMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	sent, err = p.processOutboxMessages(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)

	assert.Equal(t, []producedMessage{
		{topic: "account_events", key: "acc-1", value: `{"n":"m1"}`},
		{topic: "account_events", key: "acc-1", value: `{"n":"m2"}`},
		{topic: "account_events", key: "acc-1", value: `{"n":"m3"}`},
	}, producer.messages())
	for id, status := range statuses(store) {
		assert.Equal(t, domain.OutboxStatusSent, status, id)
	}
}

func TestProcessOutboxMessages_StopsAtFirstFailure(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "m1", "m2", "m3")
	producer := &fakeProducer{failOn: `{"n":"m2"}`}
	p := NewProcessor(store, store.Outbox(), producer, time.Second, time.Second, 10, zaptest.NewLogger(t))

	sent, err := p.processOutboxMessages(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, map[string]domain.OutboxMessageStatus{
		"m1": domain.OutboxStatusSent,
		"m2": domain.OutboxStatusPending,
		"m3": domain.OutboxStatusPending,
	}, statuses(store))
}

func TestProcessor_StartStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	seed(t, store, "m1")
	producer := &fakeProducer{}
	p := NewProcessor(store, store.Outbox(), producer, 5*time.Millisecond, time.Second, 10, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(producer.messages()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop after cancel")
	}
}
