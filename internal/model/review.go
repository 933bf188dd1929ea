package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the result of running a transaction through review.
type Status string

const (
	StatusApproved Status = "approved"
	StatusFlagged  Status = "flagged"
	StatusReview   Status = "review" // ambiguous score, escalated for explanation
)

// Score is the scoring endpoint's verdict for one transaction.
type Score struct {
	Prediction  int     // 1 = fraud
	Probability float64 // probability of the fraud class
}

// IsFraud reports whether the scorer predicted fraud.
func (s Score) IsFraud() bool { return s.Prediction == 1 }

// Outcome is the reconciled result of one review.
type Outcome struct {
	ReviewID    string
	Transaction Transaction
	Score       Score
	Status      Status
	Explanation string
	Provider    string // explainer that produced Explanation, empty if none
	ProcessedAt time.Time
}

// NeedsAttention reports whether the outcome belongs on the flagged board.
func (o Outcome) NeedsAttention() bool {
	return o.Status == StatusFlagged || o.Status == StatusReview
}

// SortKey selects the column a transaction list is ordered by.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortByAmount SortKey = "amount"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortConfig orders a transaction list for display.
type SortConfig struct {
	Key       SortKey
	Direction SortDirection
}

// DefaultSort is newest first.
var DefaultSort = SortConfig{Key: SortByDate, Direction: SortDesc}

// Toggle returns the config after a click on the key's column header:
// clicking the active ascending column flips it to descending, anything
// else sorts the clicked column ascending.
func (c SortConfig) Toggle(key SortKey) SortConfig {
	if c.Key == key && c.Direction == SortAsc {
		return SortConfig{Key: key, Direction: SortDesc}
	}
	return SortConfig{Key: key, Direction: SortAsc}
}

// ParseSortConfig validates user-supplied sort parameters. Empty values fall
// back to DefaultSort's fields.
func ParseSortConfig(key, dir string) (SortConfig, error) {
	cfg := DefaultSort
	switch SortKey(strings.ToLower(key)) {
	case "":
	case SortByDate:
		cfg.Key = SortByDate
	case SortByAmount:
		cfg.Key = SortByAmount
	default:
		return SortConfig{}, fmt.Errorf("unknown sort key %q", key)
	}
	switch SortDirection(strings.ToLower(dir)) {
	case "":
	case SortAsc:
		cfg.Direction = SortAsc
	case SortDesc:
		cfg.Direction = SortDesc
	default:
		return SortConfig{}, fmt.Errorf("unknown sort direction %q", dir)
	}
	return cfg, nil
}
