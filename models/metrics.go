package models

// MetricsSummary is a set of statistics derived from the bet history
type MetricsSummary struct {
	TotalBets    int
	Wins         int
	Losses       int
	WinRate      float64 // 0-1
	WinLossRatio float64

	TotalStaked float64
	TotalWon    float64
	TotalLost   float64
	NetProfit   float64
	ROI         float64
	AverageBet  float64
	AverageRisk float64
	BiggestWin  float64
	BiggestLoss float64

	StakeFractions   []float64 // stake as a share of the balance before each bet
	MaxStakeFraction float64
	MaxDrawdown      float64 // percentage, 0-100

	LongestWinStreak  int
	LongestLossStreak int
	CurrentStreak     int // positive for wins, negative for losses

	RecoveryRate         float64
	DiversificationIndex float64
}
