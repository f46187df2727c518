package models

// RiskCategory buckets a bankruptcy risk score
type RiskCategory string

const (
	RiskCategoryVeryLow  RiskCategory = "Very Low"
	RiskCategoryLow      RiskCategory = "Low"
	RiskCategoryMedium   RiskCategory = "Medium"
	RiskCategoryHigh     RiskCategory = "High"
	RiskCategoryVeryHigh RiskCategory = "Very High"
)

// RiskBreakdown explains which factors contribute to a bankruptcy risk score
type RiskBreakdown struct {
	FinalBalanceShortfall   float64 // up to 30
	MinimumBalanceShortfall float64 // up to 25
	Volatility              float64 // up to 20
	ValueAtRisk             float64 // up to 15
	BetSizingErraticism     float64 // up to 10
}

// Total sums the components
func (b RiskBreakdown) Total() float64 {
	return b.FinalBalanceShortfall + b.MinimumBalanceShortfall + b.Volatility + b.ValueAtRisk + b.BetSizingErraticism
}

// TrendSnapshot captures the behavioral baseline a projection extrapolates from
type TrendSnapshot struct {
	BaselineWinRate float64
	BaselineBetSize float64
	BaselineRisk    float64
	RecentWinRate   float64
	RecentBetSize   float64
	RecentRisk      float64
	WinRateTrend    float64
	BetSizeTrend    float64
	RiskTrend       float64
}

// ProjectionResult summarizes one simulated trajectory.
// VaR and volatility are heuristics over a trend-extrapolated random walk,
// not a calibrated financial model.
type ProjectionResult struct {
	Horizon             int
	StartBalance        float64
	Trajectory          []float64 // starts with StartBalance, one point per step
	FinalBalance        float64
	MaxBalance          float64
	MinBalance          float64
	MeanBalance         float64
	BalanceStdDev       float64
	RealizedWinRate     float64
	MeanBetSize         float64
	MeanRisk            float64
	ValueAtRisk95       float64
	Bankrupt            bool
	Trend               TrendSnapshot
	BankruptcyRiskScore float64
	RiskCategory        RiskCategory
	RiskBreakdown       RiskBreakdown
}

// ProjectionDistribution aggregates many independent projections
type ProjectionDistribution struct {
	Horizon                 int
	Runs                    int
	FinalBalanceP5          float64
	FinalBalanceP50         float64
	FinalBalanceP95         float64
	MeanFinalBalance        float64
	BankruptcyProbability   float64
	MeanBankruptcyRiskScore float64
	ModalCategory           RiskCategory
	CategoryCounts          map[RiskCategory]int
}
