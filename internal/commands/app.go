package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cardwatch-dev/cardwatch/internal/batch"
	"github.com/cardwatch-dev/cardwatch/internal/config"
	"github.com/cardwatch-dev/cardwatch/internal/explain"
	"github.com/cardwatch-dev/cardwatch/internal/importer"
	"github.com/cardwatch-dev/cardwatch/internal/review"
	"github.com/cardwatch-dev/cardwatch/internal/reviewlog"
	"github.com/cardwatch-dev/cardwatch/internal/scoring"
)

// app holds the configuration and transaction batch shared by commands.
// Relative paths in the config resolve against the config file's directory.
type app struct {
	cfg     *config.Config
	baseDir string
	batch   *batch.Batch
	logger  *slog.Logger
	closers []func() error
}

func newLogger(verbose bool, level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config without touching the transaction file.
func loadConfig(opts *globalOptions, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		baseDir: filepath.Dir(opts.configPath),
		logger:  logger,
	}, nil
}

func loadApp(opts *globalOptions, logger *slog.Logger) (*app, error) {
	a, err := loadConfig(opts, logger)
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	txns, err := importer.DefaultRegistry().Load(a.path(cfg.Data.Transactions), cfg.Data.Format)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	a.batch, err = batch.New(txns)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	logger.Debug("loaded transactions", "count", a.batch.Len(), "format", cfg.Data.Format)
	return a, nil
}

// reviewService wires the scorer, explainer, escalation rule and review log.
func (a *app) reviewService(ctx context.Context) (*review.Service, error) {
	rule, err := review.NewRule(a.cfg.Review.EscalateWhen)
	if err != nil {
		return nil, err
	}
	explainer, err := a.explainer(ctx)
	if err != nil {
		return nil, err
	}
	return review.NewService(
		scoring.NewClient(a.cfg.Scorer.URL, a.cfg.Scorer.Timeout),
		explainer,
		rule,
		review.NewBoard(),
		review.WithRecorder(reviewlog.Log{Dir: a.logDir()}),
		review.WithLogger(a.logger),
	), nil
}

func (a *app) explainer(ctx context.Context) (explain.Explainer, error) {
	ec := a.cfg.Explainer

	var exp explain.Explainer
	switch ec.Provider {
	case config.ProviderChat:
		exp = explain.NewChatClient(ec.URL, ec.APIKey, ec.Model, ec.Timeout)
	case config.ProviderGemini:
		g, err := explain.NewGeminiExplainer(ctx, ec.APIKey, ec.Model)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		exp = g
	default:
		exp = explain.TemplateExplainer{}
	}

	if a.cfg.Cache.RedisAddr == "" {
		return exp, nil
	}
	cache, err := explain.NewRedisCache(ctx, a.cfg.Cache.RedisAddr)
	if err != nil {
		a.logger.Warn("explanation cache disabled", "error", err)
		return exp, nil
	}
	a.closers = append(a.closers, cache.Close)
	return &explain.Cached{Explainer: exp, Cache: cache, TTL: a.cfg.Cache.TTL, Logger: a.logger}, nil
}

func (a *app) logDir() string { return a.path(a.cfg.Review.LogDir) }

// dataDir is the directory holding the configured transaction file.
func (a *app) dataDir() string { return filepath.Dir(a.path(a.cfg.Data.Transactions)) }

func (a *app) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.baseDir, p)
}

// Close releases clients opened while wiring.
func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}
