package signature

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dmarchetti/responsa/internal/model"
)

// Epoch kinds resolved into an EpochStamp
const (
	EpochKB     = "kb"
	EpochGolden = "golden"
	EpochSector = "sector"
)

// EpochSource supplies one freshness stamp kind from a read-only
// external source.
type EpochSource interface {
	// Kind returns which stamp field this source feeds
	Kind() string

	// Epoch returns the source's current freshness stamp
	Epoch(ctx context.Context) (time.Time, error)
}

// Resolver resolves an EpochStamp per request. The independent source
// lookups are issued concurrently under a shared deadline; a missing
// or failing source yields a nil stamp field rather than failing the
// resolution.
type Resolver struct {
	sources       []EpochSource
	timeout       time.Duration
	parserVersion string
	logger        *zap.Logger
}

// NewResolver creates a resolver over the given sources
func NewResolver(sources []EpochSource, cfg model.EpochConfig, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Resolver{
		sources:       sources,
		timeout:       timeout,
		parserVersion: cfg.ParserVersion,
		logger:        logger,
	}
}

// Resolve queries all sources concurrently and assembles the stamp.
// It never returns an error: unreachable sources are logged and left
// nil.
func (r *Resolver) Resolve(ctx context.Context) model.EpochStamp {
	stamp := model.EpochStamp{ParserVersion: r.parserVersion}
	if len(r.sources) == 0 {
		return stamp
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for _, src := range r.sources {
		src := src
		g.Go(func() error {
			t, err := src.Epoch(ctx)
			if err != nil {
				r.logger.Warn("epoch source unavailable",
					zap.String("kind", src.Kind()),
					zap.Error(err))
				return nil // fail-open: the field stays nil
			}

			mu.Lock()
			defer mu.Unlock()
			switch src.Kind() {
			case EpochKB:
				stamp.KBEpoch = &t
			case EpochGolden:
				stamp.GoldenEpoch = &t
			case EpochSector:
				stamp.SectorEpoch = &t
			default:
				r.logger.Warn("unknown epoch kind ignored", zap.String("kind", src.Kind()))
			}
			return nil
		})
	}

	_ = g.Wait()
	return stamp
}
