// Package explain produces human-readable fraud rationales for scored
// transactions, backed by a large-language-model endpoint.
package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// Explainer returns a natural-language rationale for a score.
type Explainer interface {
	Explain(ctx context.Context, txn model.Transaction, score model.Score) (string, error)
	Name() string
}

// SystemPrompt frames the model as a fraud analyst.
const SystemPrompt = "You are a credit-card fraud analyst. Given a transaction and a model score, " +
	"explain in a few short numbered points why the transaction may or may not be fraudulent. " +
	"Mention merchant, amount, time of day and location when relevant. " +
	"Do not invent cardholder history you were not given."

// Prompt renders the user message for txn and score.
func Prompt(txn model.Transaction, score model.Score) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction %s\n", txn.ID)
	fmt.Fprintf(&b, "Date: %s\n", txn.Date.Format(model.DateLayout))
	fmt.Fprintf(&b, "Amount: $%s\n", txn.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Merchant: %s\n", txn.Merchant)
	fmt.Fprintf(&b, "Card: %s\n", txn.MaskedCard())

	f := txn.Features
	if f.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", f.Category)
	}
	if f.DOB != "" {
		fmt.Fprintf(&b, "Cardholder date of birth: %s\n", f.DOB)
	}
	if f.Lat != 0 || f.Long != 0 {
		fmt.Fprintf(&b, "Cardholder location: %.4f, %.4f (city population %d)\n", f.Lat, f.Long, f.CityPop)
	}
	if f.MerchLat != 0 || f.MerchLong != 0 {
		fmt.Fprintf(&b, "Merchant location: %.4f, %.4f\n", f.MerchLat, f.MerchLong)
	}

	verdict := "legitimate"
	if score.IsFraud() {
		verdict = "fraudulent"
	}
	fmt.Fprintf(&b, "\nModel prediction: %s (fraud probability %.2f).\n", verdict, score.Probability)
	b.WriteString("The score is inconclusive. Explain the likely reasons a reviewer should consider.")
	return b.String()
}
