package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"semsearch/internal/domain"
	"semsearch/internal/vectorstore"
)

const defaultLimit = 10

// Storage is a minimal REST client to one Qdrant collection.
type Storage struct {
	url          string
	apiKey       string
	collection   string
	distance     string
	quantization bool
	client       *http.Client
}

type Config struct {
	URL          string
	APIKey       string
	Collection   string
	Distance     string
	Quantization bool
	Timeout      time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	distance := cfg.Distance
	if distance == "" {
		distance = "Cosine"
	}
	return &Storage{
		url:          cfg.URL,
		apiKey:       cfg.APIKey,
		collection:   cfg.Collection,
		distance:     distance,
		quantization: cfg.Quantization,
		client:       &http.Client{Timeout: timeout},
	}
}

// EnsureCollection looks the collection up and creates it when Qdrant
// answers 404. An existing collection is left untouched.
func (s *Storage) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err == nil {
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": s.distance,
		},
	}
	if s.quantization {
		body["quantization_config"] = map[string]any{
			"scalar": map[string]any{"type": "int8", "always_ram": true},
		}
	}
	_, err = s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	return err
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return domain.ErrLengthMismatch
	}
	if len(chunks) == 0 {
		return nil
	}
	points := make([]map[string]any, len(chunks))
	for i, c := range chunks {
		// Payload values are strings so match filters behave like the memory store.
		payload := map[string]any{"content": c.Text}
		for k, v := range vectorstore.Metadata(c) {
			payload[k] = v
		}
		points[i] = map[string]any{
			"id":      c.ID,
			"vector":  vectors[i],
			"payload": payload,
		}
	}
	_, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil)
	return err
}

func (s *Storage) DeleteByFilename(ctx context.Context, filename string) error {
	body := map[string]any{
		"filter": matchFilter(map[string]string{domain.MetaFilename: filename}),
	}
	_, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/delete?wait=true"), body, nil)
	return err
}

func (s *Storage) Search(ctx context.Context, vector []float64, query domain.SearchQuery) ([]domain.SearchResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(query.Filters) > 0 {
		req["filter"] = matchFilter(query.Filters)
	}
	if query.ScoreThreshold != nil {
		req["score_threshold"] = *query.ScoreThreshold
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		res := domain.SearchResult{Score: r.Score, Metadata: make(map[string]string, len(r.Payload))}
		for k, v := range r.Payload {
			if k == "content" {
				res.Content, _ = v.(string)
				continue
			}
			res.Metadata[k] = payloadString(v)
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

// matchFilter builds a Qdrant filter requiring every key to equal its value.
func matchFilter(filters map[string]string) map[string]any {
	must := make([]map[string]any, 0, len(filters))
	for k, v := range filters {
		must = append(must, map[string]any{
			"key":   k,
			"match": map[string]any{"value": v},
		})
	}
	return map[string]any{"must": must}
}

func payloadString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

// do sends body as JSON and decodes the response into out when non-nil. The
// HTTP status is returned even on error so callers can react to a 404.
func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s: %w", method, url, domain.ErrCollectionNotFound)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s: %s", method, url, resp.Status, bytes.TrimSpace(msg))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("qdrant %s %s: decode response: %w", method, url, err)
		}
	}
	return resp.StatusCode, nil
}

var _ vectorstore.Storage = (*Storage)(nil)
