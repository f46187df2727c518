package analytics

import (
	"time"

	"betsim/models"
)

// fixedSource returns the same draw forever
type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// historyBuilder assembles a chronological history with consistent balances
type historyBuilder struct {
	balance float64
	at      time.Time
	gap     time.Duration
	records []*models.BetRecord
}

func newHistory(balance float64) *historyBuilder {
	return &historyBuilder{balance: balance, at: baseTime, gap: 10 * time.Minute}
}

func (b *historyBuilder) every(gap time.Duration) *historyBuilder {
	b.gap = gap
	return b
}

func (b *historyBuilder) add(eventID string, amount float64, won bool, netWin float64, risk int) *historyBuilder {
	rec := &models.BetRecord{
		ID:             eventID + "-" + b.at.Format("150405"),
		EventID:        eventID,
		EventName:      eventID,
		BetAmount:      amount,
		RiskPercentage: risk,
		Timestamp:      b.at,
	}
	if won {
		rec.Outcome = models.OutcomeWin
		rec.SettlementAmount = netWin
		b.balance += netWin
	} else {
		rec.Outcome = models.OutcomeLoss
		rec.SettlementAmount = amount
		b.balance -= amount
	}
	rec.BalanceAfter = b.balance
	b.records = append(b.records, rec)
	b.at = b.at.Add(b.gap)
	return b
}

func (b *historyBuilder) win(amount float64, risk int) *historyBuilder {
	return b.add("coin-flip", amount, true, amount, risk)
}

func (b *historyBuilder) loss(amount float64, risk int) *historyBuilder {
	return b.add("coin-flip", amount, false, 0, risk)
}

func (b *historyBuilder) build() []*models.BetRecord {
	return b.records
}

func findWarning(warnings []models.Warning, id string) (models.Warning, bool) {
	for _, w := range warnings {
		if w.ID == id {
			return w, true
		}
	}
	return models.Warning{}, false
}
