package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardwatch-dev/cardwatch/internal/model"
)

func testTxn() model.Transaction {
	return model.Transaction{
		ID: "c81755dbbbea9d5c77f094348a7579be",
		Features: model.Features{
			TransDateTransTime: "2020-06-21 22:14:25",
			DOB:                "1990-01-17",
			Amt:                1199.84,
			Zip:                51002,
			Lat:                33.9659,
			Long:               -80.9355,
			CityPop:            333497,
			MerchLat:           33.986391,
			MerchLong:          -81.200714,
			Category:           "personal_care",
			Gender:             "M",
		},
	}
}

func TestScore_SendsFeatures(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"Prediction":[1],"Probability":[[0.12,0.88]]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	score, err := c.Score(context.Background(), testTxn())
	require.NoError(t, err)

	assert.Equal(t, 1, score.Prediction)
	assert.True(t, score.IsFraud())
	assert.InDelta(t, 0.88, score.Probability, 0.0001)

	assert.Equal(t, "2020-06-21 22:14:25", got["trans_date_trans_time"])
	assert.Equal(t, "1990-01-17", got["dob"])
	assert.InDelta(t, 1199.84, got["amt"], 0.0001)
	assert.Equal(t, "personal_care", got["category"])
	assert.Equal(t, "M", got["gender"])
	assert.InDelta(t, 333497, got["city_pop"], 0.5)

	// The scorer scales every numeric column, zip included.
	zip, ok := got["zip"].(float64)
	require.True(t, ok, "zip should be a JSON number, got %T", got["zip"])
	assert.InDelta(t, 51002, zip, 0.5)
	for _, col := range []string{"lat", "long", "merch_lat", "merch_long"} {
		assert.IsType(t, float64(0), got[col], col)
	}
}

func TestScore_ZeroNumericFeaturesStillSent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"Prediction":[0],"Probability":[[0.9,0.1]]}`))
	}))
	defer srv.Close()

	txn := testTxn()
	txn.Features.Zip = 0
	txn.Features.Lat = 0
	_, err := NewClient(srv.URL, time.Second).Score(context.Background(), txn)
	require.NoError(t, err)
	assert.Contains(t, got, "zip")
	assert.Contains(t, got, "lat")
}

func TestScore_MissingFeatures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	txn := testTxn()
	txn.Features.DOB = ""
	_, err := NewClient(srv.URL, time.Second).Score(context.Background(), txn)
	require.Error(t, err)

	var mfe *MissingFeaturesError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, []string{"dob"}, mfe.Fields)
	assert.Equal(t, txn.ID, mfe.TransactionID)
	assert.Zero(t, calls, "no request should reach the scorer")
}

func TestScore_Legit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Prediction":[0],"Probability":[[0.97,0.03]]}`))
	}))
	defer srv.Close()

	score, err := NewClient(srv.URL, time.Second).Score(context.Background(), testTxn())
	require.NoError(t, err)
	assert.False(t, score.IsFraud())
	assert.InDelta(t, 0.03, score.Probability, 0.0001)
}

func TestScore_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Score(context.Background(), testTxn())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "model not loaded", se.Body)
}

func TestScore_Malformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"Prediction":[],"Probability":[[0.5,0.5]]}`,
		`{"Prediction":[1],"Probability":[]}`,
		`{"Prediction":[1],"Probability":[[0.5]]}`,
		`{"Prediction":[7],"Probability":[[0.5,0.5]]}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		_, err := NewClient(srv.URL, time.Second).Score(context.Background(), testTxn())
		assert.ErrorIs(t, err, ErrMalformedResponse, "body %s", body)
		srv.Close()
	}
}

func TestScore_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, 5*time.Second).Score(ctx, testTxn())
	assert.ErrorIs(t, err, context.Canceled)
}
