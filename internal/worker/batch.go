package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dmarchetti/responsa/internal/pipeline"
)

// QueryResolver resolves a single query
type QueryResolver interface {
	Resolve(ctx context.Context, req pipeline.Request) (*pipeline.Resolution, error)
}

// ResolveJob resolves one query from a batch
type ResolveJob struct {
	Index    int
	Query    string
	Resolver QueryResolver
}

// Execute runs the resolution
func (j *ResolveJob) Execute(ctx context.Context) Result {
	res, err := j.Resolver.Resolve(ctx, pipeline.Request{Query: j.Query})
	return &ResolveResult{
		Index:      j.Index,
		Query:      j.Query,
		Resolution: res,
		Error:      err,
	}
}

// ResolveResult is the outcome of one batch entry
type ResolveResult struct {
	Index      int
	Query      string
	Resolution *pipeline.Resolution
	Error      error
}

// GetError returns the resolution error, if any
func (r *ResolveResult) GetError() error {
	return r.Error
}

// BatchProcessor resolves many queries concurrently
type BatchProcessor struct {
	resolver    QueryResolver
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(resolver QueryResolver, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		resolver:    resolver,
		concurrency: concurrency,
	}
}

// ProcessQueries resolves all queries, returning results in input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*ResolveResult {
	if len(queries) == 0 {
		return []*ResolveResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, query := range queries {
		pool.Submit(&ResolveJob{
			Index:    i,
			Query:    query,
			Resolver: b.resolver,
		})
	}

	results := pool.Wait()

	resolveResults := make([]*ResolveResult, 0, len(results))
	for _, result := range results {
		resolveResults = append(resolveResults, result.(*ResolveResult))
	}
	sort.Slice(resolveResults, func(i, j int) bool {
		return resolveResults[i].Index < resolveResults[j].Index
	})

	return resolveResults
}

// ProcessFile reads queries from a file and resolves them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ResolveResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads queries from a file, one per line.
// Empty lines, comments and duplicates are skipped.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
