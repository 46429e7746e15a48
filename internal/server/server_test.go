package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"semsearch/internal/domain"
)

type fakeIndex struct {
	upserted []domain.Document
	deleted  []domain.Document
	queries  []domain.SearchQuery
	results  []domain.SearchResult
	err      error
}

func (f *fakeIndex) Upsert(_ context.Context, doc domain.Document) ([]domain.Chunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	f.upserted = append(f.upserted, doc)
	return []domain.Chunk{{Filename: doc.Filename}}, nil
}

func (f *fakeIndex) Delete(_ context.Context, doc domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, doc)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queries = append(f.queries, q)
	return f.results, nil
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newTestServer() (*fakeIndex, *fakeIndex, http.Handler) {
	blogs, til := &fakeIndex{}, &fakeIndex{}
	s := New(Config{}, map[string]Index{"blogs": blogs, "til": til})
	return blogs, til, s.Handler()
}

func TestRoot(t *testing.T) {
	_, _, h := newTestServer()
	rec := do(t, h, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Semantic Search API", rec.Body.String())
}

func TestUpsert(t *testing.T) {
	blogs, til, h := newTestServer()
	rec := do(t, h, http.MethodPost, "/blogs", `{"filename":"post.md","content":"# Hi\nthere"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var echoed domain.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &echoed))
	assert.Equal(t, "post.md", echoed.Filename)
	require.Len(t, blogs.upserted, 1)
	assert.Empty(t, til.upserted)
}

func TestUpsert_BadRequests(t *testing.T) {
	_, _, h := newTestServer()
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/til", `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/til", `{"content":"x"}`).Code)
}

func TestDelete(t *testing.T) {
	_, til, h := newTestServer()
	rec := do(t, h, http.MethodDelete, "/til", `{"filename":"note.md","content":""}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, til.deleted, 1)
	assert.Equal(t, "note.md", til.deleted[0].Filename)
}

func TestSearch_StringBody(t *testing.T) {
	blogs, _, h := newTestServer()
	blogs.results = []domain.SearchResult{{Content: "hit", Metadata: map[string]string{"filename": "a.md"}, Score: 0.8}}

	rec := do(t, h, http.MethodPost, "/blogs/search", `"vector databases"`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, blogs.queries, 1)
	assert.Equal(t, "vector databases", blogs.queries[0].Text)

	var results []domain.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	assert.Equal(t, blogs.results, results)
}

func TestSearch_ObjectBody(t *testing.T) {
	blogs, _, h := newTestServer()
	rec := do(t, h, http.MethodPost, "/blogs/search", `{"query":"q","limit":3,"filters":{"filename":"a.md"},"score_threshold":0.5}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	q := blogs.queries[0]
	assert.Equal(t, "q", q.Text)
	assert.Equal(t, 3, q.Limit)
	assert.Equal(t, map[string]string{"filename": "a.md"}, q.Filters)
	require.NotNil(t, q.ScoreThreshold)
	assert.Equal(t, 0.5, *q.ScoreThreshold)
}

func TestErrorStatus(t *testing.T) {
	blogs, _, h := newTestServer()

	blogs.err = domain.ErrCollectionNotFound
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/blogs/search", `"q"`).Code)

	blogs.err = errors.New("qdrant unreachable")
	rec := do(t, h, http.MethodDelete, "/blogs", `{"filename":"a.md"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "qdrant unreachable")
}

func TestUnknownCollection(t *testing.T) {
	_, _, h := newTestServer()
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/docs", `{}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/blogs", "").Code)
}
