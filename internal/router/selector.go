package router

import (
	"errors"
	"sort"

	"github.com/dmarchetti/responsa/internal/model"
)

// ErrNoProviderAvailable is returned when no configured provider
// satisfies the cost and quality constraints.
var ErrNoProviderAvailable = errors.New("no provider satisfies the routing constraints")

// ErrAllProvidersExhausted is returned when every candidate failed
// after retries.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// Rank orders the configured providers for the given strategy, after
// filtering out candidates that violate the cost ceiling or quality
// floor. The first element is the chosen provider; the rest is the
// failover sequence.
func Rank(cfg model.RoutingConfig) ([]model.ProviderCandidate, error) {
	var candidates []model.ProviderCandidate
	for _, p := range cfg.Providers {
		if cfg.MaxCost > 0 && p.CostPerCall > cfg.MaxCost {
			continue
		}
		if p.Quality < cfg.QualityFloor {
			continue
		}
		candidates = append(candidates, model.ProviderCandidate{
			Name:        p.Name,
			Model:       p.Model,
			CostPerCall: p.CostPerCall,
			Quality:     p.Quality,
			MaxTokens:   p.MaxTokens,
		})
	}

	if len(candidates) == 0 {
		return nil, ErrNoProviderAvailable
	}

	switch model.RoutingStrategy(cfg.Strategy) {
	case model.StrategyCostOptimized:
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].CostPerCall != candidates[j].CostPerCall {
				return candidates[i].CostPerCall < candidates[j].CostPerCall
			}
			return candidates[i].Quality > candidates[j].Quality
		})

	case model.StrategyQualityFirst:
		sort.SliceStable(candidates, func(i, j int) bool {
			if candidates[i].Quality != candidates[j].Quality {
				return candidates[i].Quality > candidates[j].Quality
			}
			return candidates[i].CostPerCall < candidates[j].CostPerCall
		})

	case model.StrategyFailover:
		// Configured order is the failover order.

	default: // balanced
		sort.SliceStable(candidates, func(i, j int) bool {
			return balancedScore(candidates[i]) > balancedScore(candidates[j])
		})
	}

	promotePreferred(candidates, cfg.PreferredProvider)
	return candidates, nil
}

// balancedScore blends quality against cost. Quality dominates; cost
// breaks near-ties.
func balancedScore(c model.ProviderCandidate) float64 {
	return 0.7*c.Quality - 0.3*c.CostPerCall
}

// promotePreferred moves the preferred provider to the front of the
// order, preserving the relative order of the others.
func promotePreferred(candidates []model.ProviderCandidate, preferred string) {
	if preferred == "" {
		return
	}
	for i, c := range candidates {
		if c.Name == preferred {
			cand := candidates[i]
			copy(candidates[1:i+1], candidates[0:i])
			candidates[0] = cand
			return
		}
	}
}
