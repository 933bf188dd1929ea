// Package review runs a transaction through the fraud decision flow:
// score it, escalate ambiguous scores for an explanation, and reconcile the
// result into the flagged board and the review log.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cardwatch-dev/cardwatch/internal/explain"
	"github.com/cardwatch-dev/cardwatch/internal/model"
)

// ErrBusy is returned when another transaction is already being processed.
var ErrBusy = errors.New("another transaction is being processed")

// Scorer returns the fraud verdict for a transaction.
type Scorer interface {
	Score(ctx context.Context, txn model.Transaction) (model.Score, error)
}

// Recorder persists outcomes.
type Recorder interface {
	Record(o model.Outcome) error
}

// Service coordinates one review at a time.
type Service struct {
	scorer    Scorer
	explainer explain.Explainer
	rule      *Rule
	board     *Board
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	inflight  chan struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder appends every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the decision flow. board may be shared with readers.
func NewService(scorer Scorer, explainer explain.Explainer, rule *Rule, board *Board, opts ...Option) *Service {
	s := &Service{
		scorer:    scorer,
		explainer: explainer,
		rule:      rule,
		board:     board,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     uuid.NewString,
		inflight:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board returns the board outcomes are reconciled into.
func (s *Service) Board() *Board { return s.board }

// Process scores txn and, when the score is ambiguous, asks for an
// explanation. A scoring failure is returned as an error and nothing is
// recorded. An explanation failure leaves the outcome in review with an
// empty explanation.
func (s *Service) Process(ctx context.Context, txn model.Transaction) (model.Outcome, error) {
	select {
	case s.inflight <- struct{}{}:
	default:
		return model.Outcome{}, ErrBusy
	}
	defer func() { <-s.inflight }()

	log := s.logger.With("transaction_id", txn.ID)

	score, err := s.scorer.Score(ctx, txn)
	if err != nil {
		log.Error("scoring failed", "error", err)
		return model.Outcome{}, fmt.Errorf("scoring transaction %s: %w", txn.ID, err)
	}

	escalate, err := s.rule.Match(txn, score)
	if err != nil {
		return model.Outcome{}, err
	}

	o := model.Outcome{
		ReviewID:    s.newID(),
		Transaction: txn,
		Score:       score,
		ProcessedAt: s.now().UTC(),
	}

	switch {
	case escalate:
		o.Status = model.StatusReview
		o.Explanation, o.Provider = s.explain(ctx, log, txn, score)
		o.Transaction.Reason = o.Explanation
	case score.IsFraud():
		o.Status = model.StatusFlagged
	default:
		o.Status = model.StatusApproved
	}

	log.Info("transaction reviewed",
		"status", o.Status,
		"prediction", score.Prediction,
		"probability", score.Probability,
		"review_id", o.ReviewID,
	)

	s.board.Put(o)
	if s.recorder != nil {
		if err := s.recorder.Record(o); err != nil {
			log.Warn("failed to record review", "error", err)
		}
	}
	return o, nil
}

func (s *Service) explain(ctx context.Context, log *slog.Logger, txn model.Transaction, score model.Score) (text, provider string) {
	if s.explainer == nil {
		return "", ""
	}
	text, err := s.explainer.Explain(ctx, txn, score)
	if err != nil {
		log.Warn("explanation failed", "provider", s.explainer.Name(), "error", err)
		return "", ""
	}
	return text, s.explainer.Name()
}
