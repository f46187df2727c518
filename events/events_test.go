package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"betsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTransactionalBusFlushDelivers tests the flow from the transactional bus to the main bus
func TestTransactionalBusFlushDelivers(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan BetSettledEvent, 1)
	mainBus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		settled, ok := event.(BetSettledEvent)
		if !ok {
			t.Errorf("expected BetSettledEvent, got %T", event)
			return
		}
		received <- settled
	})

	sent := BetSettledEvent{
		PlayerID:       "player-1",
		BetID:          "bet-1",
		EventID:        "coin-flip",
		Amount:         100,
		Won:            true,
		Settlement:     100,
		BalanceBefore:  1000,
		BalanceAfter:   1100,
		RiskPercentage: 22,
		Persona:        "conservative",
	}
	txBus.Publish(sent)
	assert.Equal(t, 1, txBus.Pending())

	require.NoError(t, txBus.Flush(context.Background()))
	assert.Zero(t, txBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, sent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not received within timeout")
	}
}

// TestMultipleEventTypes tests that handlers only see the types they subscribed to
func TestMultipleEventTypes(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	seen := make(map[EventType]int)
	record := func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		seen[event.Type()]++
	}
	mainBus.Subscribe(EventTypeBetSettled, record)
	mainBus.Subscribe(EventTypeGameOver, record)

	txBus.Publish(BetSettledEvent{PlayerID: "p", Amount: 10})
	txBus.Publish(BetSettledEvent{PlayerID: "p", Amount: 20})
	txBus.Publish(GameOverEvent{PlayerID: "p", State: models.LedgerStateLost})
	txBus.Publish(LedgerResetEvent{PlayerID: "p", Balance: 1000})

	require.NoError(t, txBus.Flush(context.Background()))
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, seen[EventTypeBetSettled])
	assert.Equal(t, 1, seen[EventTypeGameOver])
	assert.Zero(t, seen[EventTypeLedgerReset])
}

// TestTransactionalBusDiscard tests that discarded events are not delivered
func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan bool, 1)
	mainBus.Subscribe(EventTypeWagerRejected, func(ctx context.Context, event Event) {
		received <- true
	})

	txBus.Publish(WagerRejectedEvent{PlayerID: "p", EventID: "roulette", Amount: 5, Reason: "below minimum"})
	txBus.Discard()

	require.NoError(t, txBus.Flush(context.Background()))
	mainBus.Wait()

	select {
	case <-received:
		t.Fatal("event was received despite being discarded")
	default:
	}
}

// TestHandlerPanicIsContained tests that a panicking handler does not affect the others
func TestHandlerPanicIsContained(t *testing.T) {
	mainBus := NewBus()

	var calls sync.WaitGroup
	calls.Add(1)
	mainBus.Subscribe(EventTypeLedgerReset, func(ctx context.Context, event Event) {
		panic("boom")
	})
	mainBus.Subscribe(EventTypeLedgerReset, func(ctx context.Context, event Event) {
		calls.Done()
	})

	assert.NotPanics(t, func() {
		mainBus.Emit(context.Background(), LedgerResetEvent{PlayerID: "p", Balance: 1000})
		mainBus.Wait()
	})
	calls.Wait()
}
