package vectorstore

import (
	"context"
	"strconv"

	"semsearch/internal/domain"
)

// Storage persists chunk vectors for one collection and supports similarity search.
type Storage interface {
	// EnsureCollection creates the collection if it does not exist yet.
	EnsureCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error
	DeleteByFilename(ctx context.Context, filename string) error
	Search(ctx context.Context, vector []float64, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// Metadata returns the payload stored alongside a chunk.
func Metadata(c domain.Chunk) map[string]string {
	return map[string]string{
		domain.MetaFilename: c.Filename,
		domain.MetaIndex:    strconv.Itoa(c.Index),
		domain.MetaChunkID:  c.ID,
	}
}
