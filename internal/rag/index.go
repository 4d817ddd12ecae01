// Package rag provides the evidence side of the pipeline: the
// embedded evidence index, internal retrieval, allowlisted external
// search, and the novelty-driven enrichment that folds external
// results back into the evidence set.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cynthialmy/llm-decision-flow/internal/cache"
	"github.com/cynthialmy/llm-decision-flow/internal/llm"
)

// Document is one indexed evidence entry
type Document struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Source        string     `json:"source"`
	SourceQuality string     `json:"source_quality"`
	SourceType    string     `json:"source_type"`
	URL           string     `json:"url,omitempty"`
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	Version       int        `json:"version"`
	Embedding     []float32  `json:"embedding,omitempty"`
}

// SearchResult pairs a document with its similarity to the query
type SearchResult struct {
	Document   Document
	Similarity float64
}

// Index is the evidence vector index. Reads are shared across
// analyze calls; writes (population, enrichment persistence) are
// serialized and best-effort. With no embedder configured, similarity
// degrades to token overlap so offline runs still work.
type Index struct {
	mu            sync.RWMutex
	docs          []Document
	activeVersion int
	path          string
	embedder      llm.Embedder
	embedCache    cache.Cache
}

// NewIndex creates an index backed by the given file path. embedder
// and embedCache may be nil.
func NewIndex(path string, embedder llm.Embedder, embedCache cache.Cache) *Index {
	return &Index{
		path:       path,
		embedder:   embedder,
		embedCache: embedCache,
	}
}

type indexFile struct {
	ActiveVersion int        `json:"active_version"`
	Documents     []Document `json:"documents"`
}

// Load reads the index file if it exists
func (ix *Index) Load() error {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read index: %w", err)
	}

	var file indexFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse index: %w", err)
	}

	ix.mu.Lock()
	ix.docs = file.Documents
	ix.activeVersion = file.ActiveVersion
	ix.mu.Unlock()
	return nil
}

// Save writes the index to disk
func (ix *Index) Save() error {
	ix.mu.RLock()
	file := indexFile{ActiveVersion: ix.activeVersion, Documents: ix.docs}
	ix.mu.RUnlock()

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if dir := filepath.Dir(ix.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create index directory: %w", err)
		}
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// ActiveVersion returns the current active index version
func (ix *Index) ActiveVersion() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.activeVersion
}

// SetActiveVersion updates the active version
func (ix *Index) SetActiveVersion(version int) {
	ix.mu.Lock()
	ix.activeVersion = version
	ix.mu.Unlock()
}

// Count returns the number of documents in the active version
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, d := range ix.docs {
		if d.Version == ix.activeVersion {
			n++
		}
	}
	return n
}

// HasAnyDocuments reports whether the active version holds documents
func (ix *Index) HasAnyDocuments() bool {
	return ix.Count() > 0
}

// AddDocuments embeds and appends documents. Documents without a
// version are stamped with the active one. Embedding failures leave
// the document indexed without a vector; token-overlap scoring still
// finds it.
func (ix *Index) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	version := ix.ActiveVersion()
	for i := range docs {
		if docs[i].Version == 0 {
			docs[i].Version = version
		}
		if docs[i].ID == "" {
			docs[i].ID = cache.CacheKey(docs[i].Text)
		}
		if vec, err := ix.embed(ctx, docs[i].Text); err == nil {
			docs[i].Embedding = vec
		}
	}

	ix.mu.Lock()
	ix.docs = append(ix.docs, docs...)
	ix.mu.Unlock()
	return nil
}

// Search returns the n most similar active-version documents
func (ix *Index) Search(ctx context.Context, query string, n int) ([]SearchResult, error) {
	if n <= 0 {
		n = 10
	}

	queryVec, _ := ix.embed(ctx, query)

	ix.mu.RLock()
	candidates := make([]Document, 0, len(ix.docs))
	for _, d := range ix.docs {
		if d.Version == ix.activeVersion {
			candidates = append(candidates, d)
		}
	}
	ix.mu.RUnlock()

	results := make([]SearchResult, 0, len(candidates))
	for _, d := range candidates {
		results = append(results, SearchResult{
			Document:   d,
			Similarity: similarity(queryVec, query, d),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

// MaxSimilarity returns the highest similarity between the claim text
// and any active-version document. Returns (0, false) when the index
// is empty, which callers treat as maximal novelty.
func (ix *Index) MaxSimilarity(ctx context.Context, claimText string) (float64, bool) {
	if !ix.HasAnyDocuments() {
		return 0.0, false
	}

	results, err := ix.Search(ctx, claimText, 1)
	if err != nil || len(results) == 0 {
		return 0.0, false
	}
	return results[0].Similarity, true
}

// embed returns the embedding for text, consulting the cache first
func (ix *Index) embed(ctx context.Context, text string) ([]float32, error) {
	if ix.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}

	key := cache.CacheKey("embed:" + text)
	if ix.embedCache != nil {
		if data, found := ix.embedCache.Get(key); found {
			var vec []float32
			if err := json.Unmarshal(data, &vec); err == nil {
				return vec, nil
			}
		}
	}

	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if ix.embedCache != nil {
		if data, err := json.Marshal(vec); err == nil {
			_ = ix.embedCache.Set(key, data, 24*time.Hour)
		}
	}
	return vec, nil
}

// similarity scores a query against a document: cosine over embeddings
// when both vectors exist, token overlap otherwise
func similarity(queryVec []float32, queryText string, doc Document) float64 {
	if len(queryVec) > 0 && len(doc.Embedding) > 0 {
		return cosineSimilarity(queryVec, doc.Embedding)
	}
	return tokenOverlap(queryText, doc.Text)
}

// cosineSimilarity computes the cosine of the angle between vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenOverlap computes Jaccard similarity over lowercase tokens
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if len(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}
