package stock

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bookreel/internal/config"
	"bookreel/internal/types"
)

// ErrNoAssets means every provider in the chain came back empty. Partial
// yield is never an error.
var ErrNoAssets = errors.New("no stock assets found")

// Options controls one acquisition run.
type Options struct {
	Count       int
	Orientation string   // portrait | landscape
	Quality     []string // tier preference, best first
}

// Provider is one stock media source. Search returns at most count assets
// downloaded into destDir.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, count int, opts Options, destDir string) ([]types.MediaAsset, error)
}

// Acquirer walks an ordered provider chain, filling the requested count
// from each in turn. A failing provider is logged and skipped; only a
// combined zero yield is an error.
type Acquirer struct {
	providers []Provider
	logger    *zap.Logger
}

// New wires the default chain: Pexels video first, Pixabay images to cover
// any shortfall.
func New(cfg *config.Config, logger *zap.Logger) *Acquirer {
	return &Acquirer{
		providers: []Provider{
			NewPexels(cfg.PexelsAPIKey, cfg.PexelsBaseURL, cfg.RequestTimeout, logger),
			NewPixabay(cfg.PixabayAPIKey, cfg.PixabayBaseURL, cfg.RequestTimeout, logger),
		},
		logger: logger.With(zap.String("component", "stock")),
	}
}

// NewWithProviders is used by tests and callers with custom chains.
func NewWithProviders(logger *zap.Logger, providers ...Provider) *Acquirer {
	return &Acquirer{providers: providers, logger: logger.With(zap.String("component", "stock"))}
}

// Acquire turns the brief into downloaded media assets.
func (a *Acquirer) Acquire(ctx context.Context, title, description string, opts Options, destDir string) ([]types.MediaAsset, error) {
	query := BuildQuery(title, description)
	count := opts.Count
	if count <= 0 {
		count = 6
	}

	a.logger.Info("acquiring stock assets", zap.String("query", query), zap.Int("count", count))

	var assets []types.MediaAsset
	for _, p := range a.providers {
		remaining := count - len(assets)
		if remaining <= 0 {
			break
		}
		got, err := p.Search(ctx, query, remaining, opts, destDir)
		if err != nil {
			a.logger.Warn("stock provider unavailable",
				zap.String("provider", p.Name()),
				zap.Error(err))
			continue
		}
		a.logger.Info("provider yield",
			zap.String("provider", p.Name()),
			zap.Int("got", len(got)),
			zap.Int("wanted", remaining))
		assets = append(assets, got...)
	}

	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: query %q", ErrNoAssets, query)
	}
	return assets, nil
}
