package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"betsim/models"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

// MinProjectionHistory is the number of bets needed before projecting
const MinProjectionHistory = 5

// ValidHorizons lists the supported projection lengths in bets
var ValidHorizons = []int{10, 25, 50}

// ErrInvalidHorizon is returned for a horizon outside ValidHorizons
var ErrInvalidHorizon = errors.New("projection horizon must be 10, 25 or 50 bets")

const (
	recentWindow = 5

	winRateTrendWeight = 0.5
	betSizeTrendWeight = 0.3
	riskTrendWeight    = 0.2

	minSimulatedWinRate = 0.01
	maxSimulatedWinRate = 0.95
	minSimulatedBet     = 10.0
	minSimulatedRisk    = 5.0
	maxSimulatedRisk    = 95.0

	perturbation     = 0.10
	riskPerturbation = 0.05
	winPayoutFactor  = 0.8

	maxFinalShortfallPoints   = 30.0
	maxMinimumShortfallPoints = 25.0
	maxVolatilityPoints       = 20.0
	maxValueAtRiskPoints      = 15.0
	maxErraticismPoints       = 10.0

	volatilityScale  = 50.0
	valueAtRiskScale = 100.0
	erraticismScale  = 100.0
)

// Projector simulates future balance trajectories from the betting trend
type Projector struct {
	rng RandomSource
}

// NewProjector creates a projector drawing randomness from rng
func NewProjector(rng RandomSource) *Projector {
	return &Projector{rng: rng}
}

// IsValidHorizon reports whether horizon is supported
func IsValidHorizon(horizon int) bool {
	for _, h := range ValidHorizons {
		if h == horizon {
			return true
		}
	}
	return false
}

// Project runs one stochastic simulation of horizon bets starting from
// currentBalance. It returns nil without an error when history holds fewer
// than MinProjectionHistory bets.
func (p *Projector) Project(history []*models.BetRecord, currentBalance float64, horizon int) (*models.ProjectionResult, error) {
	if !IsValidHorizon(horizon) {
		return nil, ErrInvalidHorizon
	}
	if len(history) < MinProjectionHistory {
		return nil, nil
	}
	trend := ComputeTrend(history)
	return simulate(p.rng, trend, currentBalance, horizon), nil
}

// ProjectDistribution runs independent projections and summarizes the
// spread of outcomes. Runs execute concurrently, each with its own source
// seeded from the projector's source.
func (p *Projector) ProjectDistribution(ctx context.Context, history []*models.BetRecord, currentBalance float64, horizon, runs int) (*models.ProjectionDistribution, error) {
	if !IsValidHorizon(horizon) {
		return nil, ErrInvalidHorizon
	}
	if runs <= 0 {
		return nil, fmt.Errorf("runs must be positive, got %d", runs)
	}
	if len(history) < MinProjectionHistory {
		return nil, nil
	}
	trend := ComputeTrend(history)

	seeds := make([]int64, runs)
	for i := range seeds {
		seeds[i] = int64(p.rng.Float64() * math.MaxInt64)
	}

	results := make([]*models.ProjectionResult, runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = simulate(NewRandomSource(seeds[i]), trend, currentBalance, horizon)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to run projections: %w", err)
	}

	return summarizeRuns(results, horizon), nil
}

// ComputeTrend derives the baseline and recent behavior from history
func ComputeTrend(history []*models.BetRecord) models.TrendSnapshot {
	var trend models.TrendSnapshot
	if len(history) == 0 {
		return trend
	}

	trend.BaselineWinRate, trend.BaselineBetSize, trend.BaselineRisk = behavior(history)
	recent := history
	if len(history) > recentWindow {
		recent = history[len(history)-recentWindow:]
	}
	trend.RecentWinRate, trend.RecentBetSize, trend.RecentRisk = behavior(recent)

	trend.WinRateTrend = (trend.RecentWinRate - trend.BaselineWinRate) * winRateTrendWeight
	if trend.BaselineBetSize > 0 {
		trend.BetSizeTrend = (trend.RecentBetSize - trend.BaselineBetSize) / trend.BaselineBetSize * betSizeTrendWeight
	}
	if trend.BaselineRisk > 0 {
		trend.RiskTrend = (trend.RecentRisk - trend.BaselineRisk) / trend.BaselineRisk * riskTrendWeight
	}
	return trend
}

// behavior returns win rate, mean stake and mean risk of bets
func behavior(bets []*models.BetRecord) (winRate, betSize, risk float64) {
	stakes := make([]float64, len(bets))
	risks := make([]float64, len(bets))
	var wins int
	for i, bet := range bets {
		stakes[i] = bet.BetAmount
		risks[i] = float64(bet.RiskPercentage)
		if bet.IsWin() {
			wins++
		}
	}
	return float64(wins) / float64(len(bets)), stat.Mean(stakes, nil), stat.Mean(risks, nil)
}

func simulate(src RandomSource, trend models.TrendSnapshot, start float64, horizon int) *models.ProjectionResult {
	h := float64(horizon)
	winRate := clamp(trend.BaselineWinRate, minSimulatedWinRate, maxSimulatedWinRate)
	betSize := math.Max(trend.BaselineBetSize, minSimulatedBet)
	risk := clamp(trend.BaselineRisk, minSimulatedRisk, maxSimulatedRisk)

	balance := math.Max(start, 0)
	trajectory := make([]float64, 0, horizon+1)
	trajectory = append(trajectory, balance)

	var stakes, risks, fractions []float64
	var wins int
	for step := 0; step < horizon; step++ {
		if balance <= 0 {
			trajectory = append(trajectory, 0)
			continue
		}

		winRate = clamp(winRate+trend.WinRateTrend/h, minSimulatedWinRate, maxSimulatedWinRate)
		betSize = math.Max(betSize*(1+trend.BetSizeTrend/h), minSimulatedBet)
		risk = clamp(risk*(1+trend.RiskTrend/h), minSimulatedRisk, maxSimulatedRisk)

		stepWinRate := clamp(winRate*(1+uniform(src, -perturbation, perturbation)), minSimulatedWinRate, maxSimulatedWinRate)
		stake := math.Max(betSize*(1+uniform(src, -perturbation, perturbation)), minSimulatedBet)
		stepRisk := clamp(risk*(1+uniform(src, -riskPerturbation, riskPerturbation)), minSimulatedRisk, maxSimulatedRisk)
		stake = math.Min(stake, balance)

		stakes = append(stakes, stake)
		risks = append(risks, stepRisk)
		fractions = append(fractions, stake/balance)

		if src.Float64() < stepWinRate {
			balance += stake * (1 + stepRisk/100) * winPayoutFactor
			wins++
		} else {
			balance -= stake
		}
		balance = math.Max(balance, 0)
		trajectory = append(trajectory, balance)
	}

	result := &models.ProjectionResult{
		Horizon:      horizon,
		StartBalance: start,
		Trajectory:   trajectory,
		FinalBalance: trajectory[len(trajectory)-1],
		Trend:        trend,
	}
	result.MaxBalance, result.MinBalance = extremes(trajectory)
	result.MeanBalance, result.BalanceStdDev = stat.PopMeanStdDev(trajectory, nil)
	result.Bankrupt = result.FinalBalance <= 0
	if len(stakes) > 0 {
		result.RealizedWinRate = float64(wins) / float64(len(stakes))
		result.MeanBetSize = stat.Mean(stakes, nil)
		result.MeanRisk = stat.Mean(risks, nil)
	}
	result.ValueAtRisk95 = valueAtRisk(trajectory)

	var erraticism float64
	if len(fractions) > 1 {
		_, erraticism = stat.PopMeanStdDev(fractions, nil)
	}
	result.RiskBreakdown = scoreBankruptcyRisk(result, erraticism)
	result.BankruptcyRiskScore = result.RiskBreakdown.Total()
	result.RiskCategory = CategorizeRisk(result.BankruptcyRiskScore)
	return result
}

func extremes(values []float64) (hi, lo float64) {
	hi, lo = values[0], values[0]
	for _, v := range values[1:] {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	return hi, lo
}

// valueAtRisk is the magnitude of the 5th percentile step-to-step balance
// change. A trajectory whose 5th percentile is a gain has nothing at risk.
func valueAtRisk(trajectory []float64) float64 {
	if len(trajectory) < 2 {
		return 0
	}
	deltas := make([]float64, len(trajectory)-1)
	for i := 1; i < len(trajectory); i++ {
		deltas[i-1] = trajectory[i] - trajectory[i-1]
	}
	sort.Float64s(deltas)
	q := stat.Quantile(0.05, stat.Empirical, deltas, nil)
	return math.Max(0, -q)
}

func scoreBankruptcyRisk(r *models.ProjectionResult, stakeRatioStdDev float64) models.RiskBreakdown {
	var b models.RiskBreakdown

	if r.StartBalance > 0 {
		b.FinalBalanceShortfall = clamp(1-r.FinalBalance/r.StartBalance, 0, 1) * maxFinalShortfallPoints
		b.MinimumBalanceShortfall = clamp(1-r.MinBalance/r.StartBalance, 0, 1) * maxMinimumShortfallPoints
	} else {
		b.FinalBalanceShortfall = maxFinalShortfallPoints
		b.MinimumBalanceShortfall = maxMinimumShortfallPoints
	}

	if r.MeanBalance > 0 {
		b.Volatility = math.Min(r.BalanceStdDev/r.MeanBalance*volatilityScale, maxVolatilityPoints)
		b.ValueAtRisk = math.Min(r.ValueAtRisk95/r.MeanBalance*valueAtRiskScale, maxValueAtRiskPoints)
	} else {
		b.Volatility = maxVolatilityPoints
		b.ValueAtRisk = maxValueAtRiskPoints
	}

	b.BetSizingErraticism = math.Min(stakeRatioStdDev*erraticismScale, maxErraticismPoints)
	return b
}

// CategorizeRisk maps a bankruptcy risk score onto its category
func CategorizeRisk(score float64) models.RiskCategory {
	switch {
	case score < 20:
		return models.RiskCategoryVeryLow
	case score < 40:
		return models.RiskCategoryLow
	case score < 60:
		return models.RiskCategoryMedium
	case score < 80:
		return models.RiskCategoryHigh
	default:
		return models.RiskCategoryVeryHigh
	}
}

var categoryOrder = []models.RiskCategory{
	models.RiskCategoryVeryLow,
	models.RiskCategoryLow,
	models.RiskCategoryMedium,
	models.RiskCategoryHigh,
	models.RiskCategoryVeryHigh,
}

func summarizeRuns(results []*models.ProjectionResult, horizon int) *models.ProjectionDistribution {
	dist := &models.ProjectionDistribution{
		Horizon:        horizon,
		Runs:           len(results),
		CategoryCounts: make(map[models.RiskCategory]int, len(categoryOrder)),
	}

	finals := make([]float64, len(results))
	scores := make([]float64, len(results))
	var bankrupt int
	for i, r := range results {
		finals[i] = r.FinalBalance
		scores[i] = r.BankruptcyRiskScore
		dist.CategoryCounts[r.RiskCategory]++
		if r.Bankrupt {
			bankrupt++
		}
	}

	dist.MeanFinalBalance = stat.Mean(finals, nil)
	dist.MeanBankruptcyRiskScore = stat.Mean(scores, nil)
	dist.BankruptcyProbability = float64(bankrupt) / float64(len(results))

	sort.Float64s(finals)
	dist.FinalBalanceP5 = stat.Quantile(0.05, stat.Empirical, finals, nil)
	dist.FinalBalanceP50 = stat.Quantile(0.50, stat.Empirical, finals, nil)
	dist.FinalBalanceP95 = stat.Quantile(0.95, stat.Empirical, finals, nil)

	for _, c := range categoryOrder {
		if dist.CategoryCounts[c] > dist.CategoryCounts[dist.ModalCategory] {
			dist.ModalCategory = c
		}
	}
	return dist
}
