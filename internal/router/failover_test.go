package router

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dmarchetti/responsa/internal/model"
)

// mockProvider fails a fixed number of initial calls, then succeeds
type mockProvider struct {
	name     string
	failures int
	calls    int
	text     string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	m.calls++
	if m.calls <= m.failures {
		return nil, fmt.Errorf("%s: simulated failure %d", m.name, m.calls)
	}
	return &GenerateResponse{Text: m.text, Model: req.Model, TokensUsed: 10}, nil
}

func failoverRouter(env string, maxRetries int, providers ...*mockProvider) *Router {
	cfg := model.RoutingConfig{
		Strategy:          string(model.StrategyFailover),
		MaxRetries:        maxRetries,
		Environment:       env,
		RequestsPerSecond: 1000,
	}
	byName := make(map[string]Provider)
	for _, p := range providers {
		cfg.Providers = append(cfg.Providers, model.ProviderConfig{
			Name: p.name, Model: "m-" + p.name, Quality: 0.8,
		})
		byName[p.name] = p
	}
	return NewRouterWithProviders(cfg, byName, nil)
}

func TestRoute_FirstProviderSucceeds(t *testing.T) {
	primary := &mockProvider{name: "primary", text: "risposta"}
	backup := &mockProvider{name: "backup", text: "riserva"}
	r := failoverRouter("development", 2, primary, backup)

	resp, decision, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "risposta" {
		t.Errorf("text = %q", resp.Text)
	}
	if decision.Chosen.Name != "primary" {
		t.Errorf("chosen = %s", decision.Chosen.Name)
	}
	if len(decision.Attempts) != 1 {
		t.Errorf("attempts = %+v", decision.Attempts)
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times", backup.calls)
	}
}

func TestRoute_FailsOverToNextProvider(t *testing.T) {
	primary := &mockProvider{name: "primary", failures: 99}
	backup := &mockProvider{name: "backup", text: "riserva"}
	r := failoverRouter("development", 1, primary, backup)

	resp, decision, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "riserva" {
		t.Errorf("text = %q", resp.Text)
	}
	if decision.Chosen.Name != "backup" {
		t.Errorf("chosen = %s, want the provider that answered", decision.Chosen.Name)
	}
	// 2 failed attempts on primary, 1 success on backup.
	if len(decision.Attempts) != 3 {
		t.Errorf("attempts = %+v", decision.Attempts)
	}
	if decision.Attempts[0].Error == "" {
		t.Error("failed attempt not recorded with its error")
	}
}

func TestRoute_DevelopmentRetriesSameProvider(t *testing.T) {
	// Fails twice, succeeds on the third try: within MaxRetries=2.
	flaky := &mockProvider{name: "flaky", failures: 2, text: "ce l'ha fatta"}
	backup := &mockProvider{name: "backup", text: "riserva"}
	r := failoverRouter("development", 2, flaky, backup)

	resp, decision, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "ce l'ha fatta" {
		t.Errorf("text = %q, the flaky provider should have recovered", resp.Text)
	}
	if decision.Chosen.Name != "flaky" {
		t.Errorf("chosen = %s", decision.Chosen.Name)
	}
	if backup.calls != 0 {
		t.Errorf("backup called %d times", backup.calls)
	}
}

func TestRoute_ProductionMovesOnOneAttemptEarly(t *testing.T) {
	flaky := &mockProvider{name: "flaky", failures: 2, text: "ce l'ha fatta"}
	backup := &mockProvider{name: "backup", text: "riserva"}
	r := failoverRouter("production", 2, flaky, backup)

	resp, _, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	// In production the flaky provider only gets 2 tries, so the
	// backup serves the answer.
	if resp.Text != "riserva" {
		t.Errorf("text = %q, want the backup answer", resp.Text)
	}
	if flaky.calls != 2 {
		t.Errorf("flaky called %d times, want 2", flaky.calls)
	}
}

func TestRoute_AllProvidersExhausted(t *testing.T) {
	a := &mockProvider{name: "a", failures: 99}
	b := &mockProvider{name: "b", failures: 99}
	r := failoverRouter("development", 1, a, b)

	_, decision, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if !errors.Is(err, ErrAllProvidersExhausted) {
		t.Fatalf("err = %v, want ErrAllProvidersExhausted", err)
	}
	// 2 tries each, no more: bounded by the distinct provider count.
	if a.calls != 2 || b.calls != 2 {
		t.Errorf("calls = %d, %d, want 2 each", a.calls, b.calls)
	}
	if len(decision.Attempts) != 4 {
		t.Errorf("attempts = %+v", decision.Attempts)
	}
}

func TestRoute_CancelledContextStopsRetries(t *testing.T) {
	slow := &mockProvider{name: "slow", failures: 99}
	r := failoverRouter("development", 5, slow)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Route(ctx, GenerateRequest{Prompt: "domanda"})
	if err == nil {
		t.Fatal("expected an error with a cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if slow.calls > 1 {
		t.Errorf("provider called %d times after cancellation", slow.calls)
	}
}

func TestRoute_EmptyTextIsStillSuccess(t *testing.T) {
	quiet := &mockProvider{name: "quiet", text: ""}
	backup := &mockProvider{name: "backup", text: "riserva"}
	r := failoverRouter("development", 1, quiet, backup)

	resp, _, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "" {
		t.Errorf("text = %q, an empty answer is not a transport failure", resp.Text)
	}
	if backup.calls != 0 {
		t.Error("failover triggered by an empty but successful response")
	}
}

func TestRoute_MissingProviderRecordedAndSkipped(t *testing.T) {
	cfg := model.RoutingConfig{
		Strategy:          string(model.StrategyFailover),
		MaxRetries:        1,
		RequestsPerSecond: 1000,
		Providers: []model.ProviderConfig{
			{Name: "ghost", Quality: 0.9},
			{Name: "real", Quality: 0.8},
		},
	}
	live := &mockProvider{name: "real", text: "risposta"}
	r := NewRouterWithProviders(cfg, map[string]Provider{"real": live}, nil)

	resp, decision, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Text != "risposta" {
		t.Errorf("text = %q", resp.Text)
	}
	if decision.Attempts[0].Provider != "ghost" || decision.Attempts[0].Error == "" {
		t.Errorf("missing provider not recorded: %+v", decision.Attempts)
	}
}

func TestRoute_NoProvidersConfigured(t *testing.T) {
	r := NewRouterWithProviders(model.RoutingConfig{Strategy: "balanced"}, nil, nil)

	_, _, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if !errors.Is(err, ErrNoProviderAvailable) {
		t.Errorf("err = %v, want ErrNoProviderAvailable", err)
	}
}

func TestRoute_FillsModelFromCandidate(t *testing.T) {
	p := &mockProvider{name: "primary", text: "risposta"}
	r := failoverRouter("development", 0, p)

	resp, _, err := r.Route(context.Background(), GenerateRequest{Prompt: "domanda"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if resp.Model != "m-primary" {
		t.Errorf("model = %q, want the candidate's configured model", resp.Model)
	}
}
