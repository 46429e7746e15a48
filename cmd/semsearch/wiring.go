package main

import (
	"fmt"
	"time"

	"semsearch/internal/chunker"
	"semsearch/internal/config"
	"semsearch/internal/domain"
	"semsearch/internal/embedding"
	"semsearch/internal/embedding/hashing"
	"semsearch/internal/embedding/openai"
	"semsearch/internal/service"
	"semsearch/internal/summarizer"
	"semsearch/internal/vectorstore"
	"semsearch/internal/vectorstore/memory"
	"semsearch/internal/vectorstore/qdrant"
)

func buildEmbedder(cfg *config.AppConfig) (embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "hashing", "":
		dim := 0
		if cfg.Embedder.Hashing != nil {
			dim = cfg.Embedder.Hashing.Dimension
		}
		return hashing.NewEmbedder(dim), nil
	case "openai":
		o := cfg.Embedder.OpenAI
		if o == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:           o.BaseURL,
			APIKeyEnv:         o.APIKeyEnv,
			Model:             o.Model,
			Dimension:         o.Dimension,
			Timeout:           time.Duration(o.TimeoutSecs) * time.Second,
			RequestsPerSecond: o.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init failed: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildChunker(cfg *config.AppConfig, strategy string) (domain.Chunker, error) {
	if strategy == "" {
		strategy = cfg.Chunker.Type
	}
	return chunker.New(chunker.Options{
		Strategy:          strategy,
		SentencesPerChunk: cfg.Chunker.SentencesPerChunk,
		OverlapSentences:  cfg.Chunker.OverlapSentences,
	})
}

func buildStore(cfg *config.AppConfig, collection string) (vectorstore.Storage, error) {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStorage(), nil
	case "qdrant":
		q := cfg.VectorStore.Qdrant
		if q == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:          q.URL,
			APIKey:       q.APIKey,
			Collection:   collection,
			Distance:     q.Distance,
			Quantization: q.Quantization,
			Timeout:      time.Duration(q.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func buildSummarizer(cfg *config.AppConfig) (domain.Summarizer, error) {
	switch cfg.Summarizer.Type {
	case "frequency", "":
		return summarizer.NewFrequencySummarizer(), nil
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}
}

// buildIndex assembles the index service for one collection. The embedder is
// shared so every collection sees the same rate limit.
func buildIndex(cfg *config.AppConfig, collection string, emb embedding.Embedder, store vectorstore.Storage) (*service.IndexService, error) {
	ch, err := buildChunker(cfg, "")
	if err != nil {
		return nil, err
	}
	sum, err := buildSummarizer(cfg)
	if err != nil {
		return nil, err
	}
	if store == nil {
		if store, err = buildStore(cfg, collection); err != nil {
			return nil, err
		}
	}
	return service.NewIndexService(collection, ch, emb, store, service.Options{
		Workers:          cfg.Index.Workers,
		QueryCacheSize:   cfg.Index.QueryCacheSize,
		SearchLimit:      cfg.Index.SearchLimit,
		Summarizer:       sum,
		SummarySentences: cfg.Summarizer.MaxSentences,
	})
}
