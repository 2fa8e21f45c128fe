package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmarchetti/responsa/internal/model"
	"github.com/dmarchetti/responsa/internal/pipeline"
)

// mockResolver answers every query after a small delay
type mockResolver struct {
	failOn string
}

func (m *mockResolver) Resolve(ctx context.Context, req pipeline.Request) (*pipeline.Resolution, error) {
	time.Sleep(5 * time.Millisecond)
	if m.failOn != "" && strings.Contains(req.Query, m.failOn) {
		return nil, errors.New("simulated resolution failure")
	}
	return &pipeline.Resolution{
		Query:  req.Query,
		Answer: model.Answer{Text: "risposta: " + req.Query},
	}, nil
}

func TestProcessQueries_PreservesInputOrder(t *testing.T) {
	b := NewBatchProcessor(&mockResolver{}, 4)

	queries := []string{
		"quando scade il F24",
		"come apro una partita IVA",
		"quanto costa il regime forfettario",
	}
	results := b.ProcessQueries(context.Background(), queries)

	if len(results) != len(queries) {
		t.Fatalf("got %d results, want %d", len(results), len(queries))
	}
	for i, r := range results {
		if r.Query != queries[i] {
			t.Errorf("position %d holds %q, want %q", i, r.Query, queries[i])
		}
		if r.Error != nil {
			t.Errorf("query %q failed: %v", r.Query, r.Error)
		}
		if r.Resolution == nil || r.Resolution.Answer.Text == "" {
			t.Errorf("query %q has no answer", r.Query)
		}
	}
}

func TestProcessQueries_PartialFailure(t *testing.T) {
	b := NewBatchProcessor(&mockResolver{failOn: "IVA"}, 2)

	results := b.ProcessQueries(context.Background(), []string{
		"quando scade il F24",
		"come apro una partita IVA",
	})

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Error != nil {
		t.Errorf("first query should succeed: %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("second query should fail")
	}
}

func TestProcessQueries_Empty(t *testing.T) {
	b := NewBatchProcessor(&mockResolver{}, 2)
	if results := b.ProcessQueries(context.Background(), nil); len(results) != 0 {
		t.Errorf("got %d results for an empty batch", len(results))
	}
}

func TestReadQueriesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	content := `# domande di prova
quando scade il F24

come apro una partita IVA
quando scade il F24
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	queries, err := ReadQueriesFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	want := []string{"quando scade il F24", "come apro una partita IVA"}
	if len(queries) != len(want) {
		t.Fatalf("got %d queries, want %d (comments, blanks and duplicates skipped)", len(queries), len(want))
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("query %d = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestReadQueriesFromFile_Missing(t *testing.T) {
	if _, err := ReadQueriesFromFile("/nonexistent/queries.txt"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	if err := os.WriteFile(path, []byte("quando scade il F24\n"), 0644); err != nil {
		t.Fatal(err)
	}

	b := NewBatchProcessor(&mockResolver{}, 2)
	results, err := b.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("process file: %v", err)
	}
	if len(results) != 1 || results[0].Error != nil {
		t.Errorf("results = %+v", results)
	}
}
