package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a parsed card transaction row.
type Transaction struct {
	ID        string
	Date      time.Time
	Amount    decimal.Decimal
	Merchant  string
	CardLast4 string
	Fraud     *bool  // label from the source file, nil if absent
	Reason    string // free-text rationale, set after review
	Features  Features
}

// Features holds the fields the scoring endpoint consumes.
// Field names on the wire follow the scoring model's training columns.
// Numeric columns are always sent because the scorer scales them as a set.
type Features struct {
	TransDateTransTime string  `json:"trans_date_trans_time"`
	DOB                string  `json:"dob"`
	Amt                float64 `json:"amt"`
	Zip                int64   `json:"zip"`
	Lat                float64 `json:"lat"`
	Long               float64 `json:"long"`
	CityPop            int64   `json:"city_pop"`
	MerchLat           float64 `json:"merch_lat"`
	MerchLong          float64 `json:"merch_long"`
	Category           string  `json:"category,omitempty"`
	Gender             string  `json:"gender,omitempty"`
}

// DateLayout is the timestamp layout used by transaction sources.
const DateLayout = "2006-01-02 15:04:05"

// IsLabeledFraud reports whether the source labeled the transaction as fraud.
func (t Transaction) IsLabeledFraud() bool {
	return t.Fraud != nil && *t.Fraud
}

// MaskedCard returns the card number as shown to reviewers, e.g. "****1234".
func (t Transaction) MaskedCard() string {
	return "****" + t.CardLast4
}
