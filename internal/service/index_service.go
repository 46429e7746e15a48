package service

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"semsearch/internal/domain"
	"semsearch/internal/embedding"
	"semsearch/internal/logger"
	"semsearch/internal/vectorstore"
)

// Options tunes an IndexService.
type Options struct {
	Workers          int
	QueryCacheSize   int
	SearchLimit      int
	Summarizer       domain.Summarizer
	SummarySentences int
}

// IndexService turns documents into chunk vectors for one collection and
// answers similarity queries against it.
type IndexService struct {
	collection string
	chunker    domain.Chunker
	embedder   embedding.Embedder
	store      vectorstore.Storage
	opts       Options
	queryCache *lru.Cache[string, []float64]
}

func NewIndexService(collection string, chunker domain.Chunker, embedder embedding.Embedder, store vectorstore.Storage, opts Options) (*IndexService, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueryCacheSize <= 0 {
		opts.QueryCacheSize = 256
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	cache, err := lru.New[string, []float64](opts.QueryCacheSize)
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}
	return &IndexService{
		collection: collection,
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		opts:       opts,
		queryCache: cache,
	}, nil
}

// Collection returns the name of the collection this service writes to.
func (s *IndexService) Collection() string { return s.collection }

// Init creates the backing collection sized for the embedder if it is missing.
func (s *IndexService) Init(ctx context.Context) error {
	if err := s.store.EnsureCollection(ctx, s.embedder.Dimension()); err != nil {
		return fmt.Errorf("ensure collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert chunks and embeds doc, then replaces any points previously stored
// for the same filename.
func (s *IndexService) Upsert(ctx context.Context, doc domain.Document) ([]domain.Chunk, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", doc.Filename, err)
	}
	vectors, err := s.embedAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", doc.Filename, err)
	}
	if err := s.store.DeleteByFilename(ctx, doc.Filename); err != nil {
		return nil, fmt.Errorf("replace %s: %w", doc.Filename, err)
	}
	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", doc.Filename, err)
	}
	logger.Info("%s: indexed %s as %d chunks", s.collection, doc.Filename, len(chunks))
	return chunks, nil
}

// Delete removes every chunk stored for doc.Filename.
func (s *IndexService) Delete(ctx context.Context, doc domain.Document) error {
	if strings.TrimSpace(doc.Filename) == "" {
		return domain.ErrEmptyFilename
	}
	if err := s.store.DeleteByFilename(ctx, doc.Filename); err != nil {
		return fmt.Errorf("delete %s: %w", doc.Filename, err)
	}
	logger.Info("%s: deleted %s", s.collection, doc.Filename)
	return nil
}

// Search embeds the query text and returns the closest chunks.
func (s *IndexService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, domain.ErrEmptyQuery
	}
	if query.Limit <= 0 {
		query.Limit = s.opts.SearchLimit
	}
	vec, ok := s.queryCache.Get(text)
	if !ok {
		var err error
		vec, err = s.embedder.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		s.queryCache.Add(text, vec)
	}
	results, err := s.store.Search(ctx, vec, query)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.collection, err)
	}
	if len(results) > 0 && flatScores(results) {
		logger.Debug("%s: %q has no vector signal, ranking lexically", s.collection, text)
		results = rerankLexical(text, results)
	}
	logger.Debug("%s: %q matched %d chunks (cached=%t)", s.collection, text, len(results), ok)
	return results, nil
}

// embedAll embeds chunks concurrently, keeping vectors aligned with chunks.
func (s *IndexService) embedAll(ctx context.Context, chunks []domain.Chunk) ([][]float64, error) {
	vectors := make([][]float64, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range chunks {
		g.Go(func() error {
			v, err := s.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", chunks[i].Index, err)
			}
			vectors[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
