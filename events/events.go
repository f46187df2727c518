package events

import (
	"context"
	"sync"

	"betsim/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetSettled    EventType = "bet_settled"
	EventTypeWagerRejected EventType = "wager_rejected"
	EventTypeLedgerReset   EventType = "ledger_reset"
	EventTypeGameOver      EventType = "game_over"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetSettledEvent is published once a wager has been settled and recorded
type BetSettledEvent struct {
	PlayerID       string
	BetID          string
	EventID        string
	Amount         float64
	Won            bool
	Settlement     float64
	BalanceBefore  float64
	BalanceAfter   float64
	RiskPercentage int
	Persona        string
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// WagerRejectedEvent records a wager refused by validation
type WagerRejectedEvent struct {
	PlayerID string
	EventID  string
	Amount   float64
	Reason   string
}

func (e WagerRejectedEvent) Type() EventType {
	return EventTypeWagerRejected
}

// LedgerResetEvent is published when a ledger returns to its starting balance
type LedgerResetEvent struct {
	PlayerID string
	Balance  float64
}

func (e LedgerResetEvent) Type() EventType {
	return EventTypeLedgerReset
}

// GameOverEvent is published when a ledger enters a terminal state
type GameOverEvent struct {
	PlayerID string
	State    models.LedgerState
	Balance  float64
}

func (e GameOverEvent) Type() EventType {
	return EventTypeGameOver
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Publisher accepts events for later delivery
type Publisher interface {
	Publish(e Event)
}

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never blocks a wager
	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// TransactionalBus holds events coupled to a unit of work until it commits.
// Flushes to the underlying event bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Pending returns the number of events waiting for Flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// called after successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events to main event bus")

	// Handlers outlive the transaction, so they get a fresh context
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// called after rollback or to clear state.
func (b *TransactionalBus) Discard() {
	if len(b.pending) > 0 {
		log.WithField("discardedCount", len(b.pending)).Debug("Discarding pending events")
	}
	b.pending = nil
}
