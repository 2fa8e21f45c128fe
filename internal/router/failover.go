package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/dmarchetti/responsa/internal/model"
)

// Router routes a generation request to the best provider for the
// configured strategy and fails over when a provider errors out. A
// successful call with empty text is still a success; only returned
// errors trigger retries.
type Router struct {
	cfg       model.RoutingConfig
	providers map[string]Provider
	limiter   *Limiter
	logger    *zap.Logger
}

// NewRouter builds a router from configuration, constructing a client
// for each configured provider. Providers that cannot be constructed
// (missing API key, bad config) are logged and skipped so one broken
// entry does not take the others down.
func NewRouter(cfg model.RoutingConfig, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}

	providers := make(map[string]Provider, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		p, err := NewProvider(pc)
		if err != nil {
			logger.Warn("provider unavailable",
				zap.String("provider", pc.Name),
				zap.Error(err))
			continue
		}
		providers[pc.Name] = p
	}

	return &Router{
		cfg:       cfg,
		providers: providers,
		limiter:   NewLimiter(cfg.RequestsPerSecond, 0),
		logger:    logger,
	}
}

// NewRouterWithProviders builds a router over pre-constructed
// providers. Used by tests and by callers that manage their own
// clients.
func NewRouterWithProviders(cfg model.RoutingConfig, providers map[string]Provider, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		cfg:       cfg,
		providers: providers,
		limiter:   NewLimiter(cfg.RequestsPerSecond, 0),
		logger:    logger,
	}
}

// Route ranks the candidates, then walks the failover order calling
// each provider with per-provider retries. In production the last
// retry budget is spent on the next candidate instead of the same
// provider, since a backend that failed repeatedly is unlikely to
// recover within the request deadline. The total work is bounded by
// the number of distinct configured providers times the retry budget.
func (r *Router) Route(ctx context.Context, req GenerateRequest) (*GenerateResponse, *model.RoutingDecision, error) {
	candidates, err := Rank(r.cfg)
	if err != nil {
		return nil, nil, err
	}

	decision := &model.RoutingDecision{
		Chosen:   candidates[0],
		Strategy: model.RoutingStrategy(r.cfg.Strategy),
	}
	for _, c := range candidates[1:] {
		decision.Failover = append(decision.Failover, c.Name)
	}

	maxRetries := r.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	production := r.cfg.Environment == "production"

	for ci, cand := range candidates {
		provider, ok := r.providers[cand.Name]
		if !ok {
			decision.Attempts = append(decision.Attempts, model.AttemptRecord{
				Provider: cand.Name,
				Attempt:  1,
				Error:    "provider not configured",
			})
			continue
		}

		tries := maxRetries + 1
		if production && ci < len(candidates)-1 {
			// Move on one attempt early when there is somewhere to go.
			tries = maxRetries
			if tries < 1 {
				tries = 1
			}
		}

		for attempt := 1; attempt <= tries; attempt++ {
			if err := r.limiter.Wait(ctx, cand.Name); err != nil {
				return nil, decision, err
			}

			resp, err := provider.Generate(ctx, r.fillRequest(req, cand))
			record := model.AttemptRecord{Provider: cand.Name, Attempt: attempt}
			if err != nil {
				record.Error = err.Error()
			}
			decision.Attempts = append(decision.Attempts, record)

			if err == nil {
				decision.Chosen = cand
				return resp, decision, nil
			}

			r.logger.Warn("provider call failed",
				zap.String("provider", cand.Name),
				zap.Int("attempt", attempt),
				zap.Error(err))

			if ctx.Err() != nil {
				return nil, decision, ctx.Err()
			}
		}
	}

	return nil, decision, ErrAllProvidersExhausted
}

// fillRequest applies the candidate's model and token limit where the
// request does not specify its own
func (r *Router) fillRequest(req GenerateRequest, cand model.ProviderCandidate) GenerateRequest {
	if req.Model == "" {
		req.Model = cand.Model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = cand.MaxTokens
	}
	return req
}
