package models

// Severity grades a detected betting pattern
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Warning is a problematic betting pattern found in the history
type Warning struct {
	ID             string
	Title          string
	Description    string
	Severity       Severity
	Recommendation string
}
