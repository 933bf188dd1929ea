package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// SimpleParser parses the minimal dashboard layout:
// id,date,amount,merchant,card_last4[,fraud][,reason]
type SimpleParser struct{}

const (
	simpleMinFields  = 5
	simpleColID      = 0
	simpleColDate    = 1
	simpleColAmount  = 2
	simpleColMerch   = 3
	simpleColCard    = 4
	simpleColFraud   = 5
	simpleColReason  = 6
	simpleDateLayout = "2006-01-02"
)

// Format returns the parser name.
func (p *SimpleParser) Format() string { return "simple" }

// Parse reads a simple CSV and returns Transactions.
func (p *SimpleParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	// Skip the header.
	if _, err := cr.Read(); err == io.EOF {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading simple CSV: %w", err)
	}

	var txns []model.Transaction
	err := eachRecord(cr, "simple", func(rec []string) error {
		txn, err := parseSimpleRow(rec)
		if err != nil {
			return err
		}
		txns = append(txns, txn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func parseSimpleRow(rec []string) (model.Transaction, error) {
	if len(rec) < simpleMinFields {
		return model.Transaction{}, fmt.Errorf("expected at least %d fields, got %d", simpleMinFields, len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}

	date, err := parseSimpleDate(rec[simpleColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[simpleColDate], err)
	}

	amount, err := decimal.NewFromString(rec[simpleColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[simpleColAmount], err)
	}

	txn := model.Transaction{
		ID:        rec[simpleColID],
		Date:      date,
		Amount:    amount,
		Merchant:  rec[simpleColMerch],
		CardLast4: lastFour(rec[simpleColCard]),
		Features: model.Features{
			TransDateTransTime: date.Format(model.DateLayout),
			Amt:                amount.InexactFloat64(),
		},
	}
	if len(rec) > simpleColFraud {
		if txn.Fraud, err = parseLabel(rec[simpleColFraud]); err != nil {
			return model.Transaction{}, fmt.Errorf("parsing fraud: %w", err)
		}
	}
	if len(rec) > simpleColReason {
		txn.Reason = rec[simpleColReason]
	}
	return txn, nil
}

func parseSimpleDate(s string) (time.Time, error) {
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(simpleDateLayout, s)
}
