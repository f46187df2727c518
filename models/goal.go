package models

import "time"

// GoalType describes the unit a responsible gambling goal is measured in
type GoalType string

const (
	GoalTypePercentage GoalType = "percentage"
	GoalTypeMinutes    GoalType = "minutes"
	GoalTypeCount      GoalType = "count"
)

// Goal is a user-adjustable responsible gambling threshold
type Goal struct {
	ID           string    `db:"id"`
	Title        string    `db:"title"`
	Type         GoalType  `db:"type"`
	TargetValue  float64   `db:"target_value"`
	CurrentValue float64   `db:"current_value"`
	IsActive     bool      `db:"is_active"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// GoalStatus reports a goal compared against the current metrics
type GoalStatus struct {
	Goal     Goal
	Breached bool
	Progress float64 // CurrentValue / TargetValue
}
