package server

import (
	"time"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

type transactionResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Amount    float64 `json:"amount"`
	Merchant  string  `json:"merchant"`
	CardLast4 string  `json:"cardLast4"`
	Fraud     *bool   `json:"fraud,omitempty"`
	Reason    string  `json:"reason,omitempty"`
}

type outcomeResponse struct {
	ReviewID    string              `json:"reviewId"`
	Transaction transactionResponse `json:"transaction"`
	Status      model.Status        `json:"status"`
	Prediction  int                 `json:"prediction"`
	Probability float64             `json:"probability"`
	Explanation string              `json:"explanation,omitempty"`
	Provider    string              `json:"provider,omitempty"`
	ProcessedAt string              `json:"processedAt"`
}

type listResponse[T any] struct {
	Sort  sortResponse `json:"sort"`
	Count int          `json:"count"`
	Items []T          `json:"items"`
}

type sortResponse struct {
	Key       model.SortKey       `json:"key"`
	Direction model.SortDirection `json:"direction"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newTransactionResponse(t model.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Date:      t.Date.Format(model.DateLayout),
		Amount:    t.Amount.InexactFloat64(),
		Merchant:  t.Merchant,
		CardLast4: t.CardLast4,
		Fraud:     t.Fraud,
		Reason:    t.Reason,
	}
}

func newOutcomeResponse(o model.Outcome) outcomeResponse {
	return outcomeResponse{
		ReviewID:    o.ReviewID,
		Transaction: newTransactionResponse(o.Transaction),
		Status:      o.Status,
		Prediction:  o.Score.Prediction,
		Probability: o.Score.Probability,
		Explanation: o.Explanation,
		Provider:    o.Provider,
		ProcessedAt: o.ProcessedAt.Format(time.RFC3339),
	}
}

func newSortResponse(cfg model.SortConfig) sortResponse {
	return sortResponse{Key: cfg.Key, Direction: cfg.Direction}
}
