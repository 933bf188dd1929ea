package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// KaggleParser parses the column layout of the public credit-card fraud
// dataset (fraudTrain.csv / fraudTest.csv). Columns are addressed by header
// name so the leading index column and column order do not matter.
type KaggleParser struct{}

const (
	kaggleColDateTime  = "trans_date_trans_time"
	kaggleColCCNum     = "cc_num"
	kaggleColMerchant  = "merchant"
	kaggleColCategory  = "category"
	kaggleColAmount    = "amt"
	kaggleColGender    = "gender"
	kaggleColZip       = "zip"
	kaggleColLat       = "lat"
	kaggleColLong      = "long"
	kaggleColCityPop   = "city_pop"
	kaggleColDOB       = "dob"
	kaggleColTransNum  = "trans_num"
	kaggleColMerchLat  = "merch_lat"
	kaggleColMerchLong = "merch_long"
	kaggleColIsFraud   = "is_fraud"

	// The dataset prefixes every synthetic merchant name with "fraud_".
	kaggleMerchantPrefix = "fraud_"
)

var kaggleRequired = []string{
	kaggleColDateTime, kaggleColCCNum, kaggleColMerchant, kaggleColAmount, kaggleColTransNum,
}

// Format returns the parser name.
func (p *KaggleParser) Format() string { return "kaggle" }

// Parse reads a dataset CSV and returns Transactions.
func (p *KaggleParser) Parse(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading kaggle CSV: %w", err)
	}

	cols, err := indexHeader(first, kaggleRequired)
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	err = eachRecord(cr, "kaggle", func(rec []string) error {
		txn, err := parseKaggleRow(cols, rec)
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

func parseKaggleRow(cols header, rec []string) (model.Transaction, error) {
	rawDate := cols.get(rec, kaggleColDateTime)
	date, err := time.Parse(model.DateLayout, rawDate)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", kaggleColDateTime, rawDate, err)
	}

	rawAmount := cols.get(rec, kaggleColAmount)
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", kaggleColAmount, rawAmount, err)
	}

	fraud, err := parseLabel(cols.get(rec, kaggleColIsFraud))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing %s: %w", kaggleColIsFraud, err)
	}

	feats := model.Features{
		TransDateTransTime: rawDate,
		DOB:                cols.get(rec, kaggleColDOB),
		Amt:                amount.InexactFloat64(),
		Category:           cols.get(rec, kaggleColCategory),
		Gender:             cols.get(rec, kaggleColGender),
	}
	floats := []struct {
		col string
		dst *float64
	}{
		{kaggleColLat, &feats.Lat},
		{kaggleColLong, &feats.Long},
		{kaggleColMerchLat, &feats.MerchLat},
		{kaggleColMerchLong, &feats.MerchLong},
	}
	for _, f := range floats {
		if *f.dst, err = parseOptionalFloat(cols.get(rec, f.col)); err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s: %w", f.col, err)
		}
	}
	ints := []struct {
		col string
		dst *int64
	}{
		{kaggleColZip, &feats.Zip},
		{kaggleColCityPop, &feats.CityPop},
	}
	for _, n := range ints {
		raw := cols.get(rec, n.col)
		if raw == "" {
			continue
		}
		if *n.dst, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return model.Transaction{}, fmt.Errorf("parsing %s %q: %w", n.col, raw, err)
		}
	}

	return model.Transaction{
		ID:        cols.get(rec, kaggleColTransNum),
		Date:      date,
		Amount:    amount,
		Merchant:  strings.TrimPrefix(cols.get(rec, kaggleColMerchant), kaggleMerchantPrefix),
		CardLast4: lastFour(cols.get(rec, kaggleColCCNum)),
		Fraud:     fraud,
		Features:  feats,
	}, nil
}

// eachRecord calls fn for every remaining record. Errors name the
// physical line the record starts on, so blank lines are counted.
func eachRecord(cr *csv.Reader, format string, fn func(rec []string) error) error {
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s CSV: %w", format, err)
		}
		if err := fn(rec); err != nil {
			line, _ := cr.FieldPos(0)
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}

// header maps column names to record positions.
type header map[string]int

func indexHeader(rec []string, required []string) (header, error) {
	h := make(header, len(rec))
	for i, name := range rec {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := h[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return h, nil
}

// get returns the trimmed value of col, or "" if the column is absent.
func (h header) get(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}

// parseLabel accepts 0/1 and true/false. Empty means unlabeled.
func parseLabel(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return nil, fmt.Errorf("invalid fraud label %q", s)
	}
	return &v, nil
}

func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}
