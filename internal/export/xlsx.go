package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// SheetName is the worksheet flagged outcomes are written to.
const SheetName = "Flagged"

// Header is the first row of the sheet.
var Header = []string{
	"Review ID", "Transaction ID", "Date", "Amount", "Merchant", "Card",
	"Status", "Prediction", "Fraud Probability", "Explanation",
}

// Row is one exported review.
type Row struct {
	ReviewID      string
	TransactionID string
	Date          time.Time
	Amount        decimal.Decimal
	Merchant      string
	CardLast4     string
	Status        model.Status
	Prediction    int
	Probability   float64
	Explanation   string
}

// FromOutcome converts a review outcome to a Row.
func FromOutcome(o model.Outcome) Row {
	return Row{
		ReviewID:      o.ReviewID,
		TransactionID: o.Transaction.ID,
		Date:          o.Transaction.Date,
		Amount:        o.Transaction.Amount,
		Merchant:      o.Transaction.Merchant,
		CardLast4:     o.Transaction.CardLast4,
		Status:        o.Status,
		Prediction:    o.Score.Prediction,
		Probability:   o.Score.Probability,
		Explanation:   o.Explanation,
	}
}

// WriteXLSX writes rows as a workbook with a single Flagged sheet.
func WriteXLSX(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.ReviewID,
			r.TransactionID,
			formatDate(r.Date),
			r.Amount.StringFixed(2),
			r.Merchant,
			maskCard(r.CardLast4),
			string(r.Status),
			r.Prediction,
			r.Probability,
			r.Explanation,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "J", "J", 80); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func maskCard(last4 string) string {
	if last4 == "" {
		return ""
	}
	return "****" + last4
}
