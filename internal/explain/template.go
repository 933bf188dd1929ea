package explain

import (
	"context"
	"fmt"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// TemplateExplainer returns a fixed rationale without calling a model.
// It is used when no LLM provider is configured.
type TemplateExplainer struct{}

// Name returns the provider name.
func (TemplateExplainer) Name() string { return "template" }

// Explain renders the canned rationale for txn.
func (TemplateExplainer) Explain(_ context.Context, txn model.Transaction, score model.Score) (string, error) {
	return fmt.Sprintf(`This transaction was flagged as potentially fraudulent due to several factors:
1. Unusual merchant: The transaction was made at %s, which is not consistent with the cardholder's typical spending patterns.
2. High amount: The transaction amount of $%s is significantly higher than the average transaction amount for this card.
3. Timing: This transaction occurred at %s, outside of the cardholder's usual active hours.
4. Location: The transaction location doesn't match the cardholder's known locations.

The model's fraud probability is %.2f. These factors combined triggered our fraud detection algorithm. However, please note that this is an initial assessment and may require further investigation.`,
		txn.Merchant, txn.Amount.StringFixed(2), txn.Date.Format("15:04"), score.Probability), nil
}
