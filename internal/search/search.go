// Package search retrieves supporting material for a query from a
// local knowledge base directory of markdown, text and HTML files.
package search

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/dmarchetti/responsa/internal/model"
)

// Service scores knowledge base documents against a query by keyword
// overlap and returns the best ones as context parts.
type Service struct {
	cfg    model.SearchConfig
	logger *zap.Logger
}

// NewService creates a search service
func NewService(cfg model.SearchConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cfg: cfg, logger: logger}
}

// scored pairs a document with its overlap score
type scored struct {
	path    string
	content string
	score   float64
}

// Search returns up to MaxResults knowledge base documents relevant to
// the query, ranked by term overlap. The extracted facts sharpen the
// term set: canonical forms like FORFETTARIO or F24 count as query
// terms even when the raw query spelled them differently.
func (s *Service) Search(query string, facts model.AtomicFactSet) ([]model.ContextPart, error) {
	if s.cfg.KBDir == "" {
		return nil, nil
	}

	terms := queryTerms(query, facts)
	if len(terms) == 0 {
		return nil, nil
	}

	var docs []scored
	err := filepath.WalkDir(s.cfg.KBDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supportedFile(path) {
			return nil
		}

		content, err := s.readDocument(path)
		if err != nil {
			s.logger.Warn("knowledge base document unreadable, skipping",
				zap.String("path", path),
				zap.Error(err))
			return nil
		}

		score := overlapScore(terms, content)
		if score > 0 {
			docs = append(docs, scored{path: path, content: content, score: score})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan knowledge base: %w", err)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].score > docs[j].score })

	limit := s.cfg.MaxResults
	if limit <= 0 {
		limit = 5
	}
	if len(docs) > limit {
		docs = docs[:limit]
	}

	parts := make([]model.ContextPart, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, model.ContextPart{
			Type:          model.PartKBDocs,
			Content:       d.content,
			PriorityScore: d.score,
			Metadata: map[string]string{
				"source": d.path,
				"title":  docTitle(d.path),
			},
		})
	}
	return parts, nil
}

// readDocument loads a file, stripping markup from HTML documents
func (s *Service) readDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		return visibleText(string(data))
	}
	return string(data), nil
}

func supportedFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt", ".html", ".htm":
		return true
	}
	return false
}

// docTitle de-slugifies the file name into a readable title
func docTitle(path string) string {
	name := filepath.Base(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}

// queryTerms builds the search term set from the raw query plus the
// canonical forms of the extracted facts
func queryTerms(query string, facts model.AtomicFactSet) map[string]bool {
	terms := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.Trim(tok, ".,;:!?()\"'")
		if len(tok) < 3 {
			continue
		}
		terms[tok] = true
	}

	for _, f := range facts.Facts {
		switch v := f.(type) {
		case model.LegalEntity:
			terms[strings.ToLower(v.CanonicalForm)] = true
		case model.ProfessionalCategory:
			terms[strings.ToLower(v.CanonicalForm)] = true
		case model.GeographicInfo:
			terms[strings.ToLower(v.CanonicalForm)] = true
		}
	}
	return terms
}

// overlapScore is the fraction of query terms present in the document
func overlapScore(terms map[string]bool, content string) float64 {
	if len(terms) == 0 {
		return 0
	}

	docTokens := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(content)) {
		tok = strings.Trim(tok, ".,;:!?()#*\"'")
		if tok != "" {
			docTokens[tok] = true
		}
	}

	matched := 0
	for term := range terms {
		if docTokens[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// visibleText parses HTML and returns its visible text content,
// skipping script and style subtrees.
func visibleText(raw string) (string, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " "), nil
}
