package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// ErrMalformedResponse is returned when the scorer answers 2xx with a body
// that does not carry a prediction and a fraud probability.
var ErrMalformedResponse = errors.New("malformed scoring response")

// StatusError is returned when the scorer answers with a non-2xx status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("scorer returned %s", e.Status)
	}
	return fmt.Sprintf("scorer returned %s: %s", e.Status, e.Body)
}

// MissingFeaturesError is returned, before any request is made, when a
// transaction lacks features the scorer cannot derive its inputs without.
type MissingFeaturesError struct {
	TransactionID string
	Fields        []string
}

func (e *MissingFeaturesError) Error() string {
	return fmt.Sprintf("transaction %s is missing scoring features: %s",
		e.TransactionID, strings.Join(e.Fields, ", "))
}

// checkFeatures reports the features the scorer reads unconditionally.
// It derives the cardholder's age and the hour of day from them.
func checkFeatures(txn model.Transaction) error {
	var missing []string
	if txn.Features.TransDateTransTime == "" {
		missing = append(missing, "trans_date_trans_time")
	}
	if txn.Features.DOB == "" {
		missing = append(missing, "dob")
	}
	if len(missing) > 0 {
		return &MissingFeaturesError{TransactionID: txn.ID, Fields: missing}
	}
	return nil
}

// Client posts transactions to a remote fraud-scoring endpoint.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient returns a Client for url with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// response mirrors the scorer's JSON body:
// {"Prediction": [1], "Probability": [[0.12, 0.88]]}
type response struct {
	Prediction  []int       `json:"Prediction"`
	Probability [][]float64 `json:"Probability"`
}

const maxErrorBody = 512

// Score submits txn's features and returns the scorer's verdict.
func (c *Client) Score(ctx context.Context, txn model.Transaction) (model.Score, error) {
	if err := checkFeatures(txn); err != nil {
		return model.Score{}, err
	}
	body, err := json.Marshal(txn.Features)
	if err != nil {
		return model.Score{}, fmt.Errorf("encoding transaction %s: %w", txn.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return model.Score{}, fmt.Errorf("building scoring request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return model.Score{}, fmt.Errorf("calling scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return model.Score{}, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Body:   string(bytes.TrimSpace(snippet)),
		}
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.Score{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out.toScore()
}

func (r response) toScore() (model.Score, error) {
	if len(r.Prediction) == 0 {
		return model.Score{}, fmt.Errorf("%w: empty Prediction", ErrMalformedResponse)
	}
	if len(r.Probability) == 0 || len(r.Probability[0]) < 2 {
		return model.Score{}, fmt.Errorf("%w: Probability must hold [legit, fraud]", ErrMalformedResponse)
	}
	pred := r.Prediction[0]
	if pred != 0 && pred != 1 {
		return model.Score{}, fmt.Errorf("%w: prediction %d is not 0 or 1", ErrMalformedResponse, pred)
	}
	return model.Score{
		Prediction:  pred,
		Probability: r.Probability[0][1],
	}, nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}
