package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"semsearch/internal/domain"
)

var ingestExtensions = map[string]bool{".txt": true, ".md": true, ".markdown": true}

// Indexable reports whether path has an extension Ingest accepts.
func Indexable(path string) bool {
	return ingestExtensions[strings.ToLower(filepath.Ext(path))]
}

// Ingest indexes every text or markdown file matched by paths (globs are
// expanded) and returns a short summary of the ingested corpus, or "" when
// no summarizer is configured.
func (s *IndexService) Ingest(ctx context.Context, paths []string) (string, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !Indexable(m) {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			documents = append(documents, domain.Document{Filename: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("no .txt or .md documents found")
	}

	var corpus strings.Builder
	for _, d := range documents {
		if d.Content == "" {
			continue
		}
		if _, err := s.Upsert(ctx, d); err != nil {
			return "", err
		}
		corpus.WriteString("\n")
		corpus.WriteString(d.Content)
	}

	if s.opts.Summarizer == nil {
		return "", nil
	}
	return s.opts.Summarizer.Summarize(corpus.String(), s.opts.SummarySentences)
}
