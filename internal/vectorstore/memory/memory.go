package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"sort"
	"sync"

	"semsearch/internal/domain"
	"semsearch/internal/vectorstore"
)

const defaultLimit = 10

type point struct {
	chunk    domain.Chunk
	vector   []float64
	metadata map[string]string
}

// Storage is a simple in-memory vector store using brute-force cosine similarity.
// Points are keyed by chunk ID, so upserting the same chunk replaces it.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]point
	order     []string
}

func NewStorage() *Storage { return &Storage{points: make(map[string]point)} }

func (s *Storage) EnsureCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("%w: collection has %d, got %d", domain.ErrDimensionMismatch, s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return domain.ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return domain.ErrCollectionNotFound
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return domain.ErrDimensionMismatch
		}
	}
	for i, c := range chunks {
		if _, exists := s.points[c.ID]; !exists {
			s.order = append(s.order, c.ID)
		}
		s.points[c.ID] = point{chunk: c, vector: vectors[i], metadata: vectorstore.Metadata(c)}
	}
	return nil
}

func (s *Storage) DeleteByFilename(_ context.Context, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.order[:0]
	for _, id := range s.order {
		if s.points[id].chunk.Filename == filename {
			delete(s.points, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
	return nil
}

func (s *Storage) Search(_ context.Context, vector []float64, query domain.SearchQuery) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension == 0 {
		return nil, domain.ErrCollectionNotFound
	}
	if len(vector) != s.dimension {
		return nil, domain.ErrDimensionMismatch
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var results []domain.SearchResult
	for _, id := range s.order {
		p := s.points[id]
		if !matches(p.metadata, query.Filters) {
			continue
		}
		score := cosine(p.vector, vector)
		if query.ScoreThreshold != nil && score < *query.ScoreThreshold {
			continue
		}
		results = append(results, domain.SearchResult{Content: p.chunk.Text, Metadata: maps.Clone(p.metadata), Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Len returns the number of stored points.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

func matches(metadata, filters map[string]string) bool {
	for k, v := range filters {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
