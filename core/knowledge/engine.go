package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultCacheTTL = time.Hour

// Engine answers text queries against a [Store]. Queries are embedded
// through the configured [Embedder]; with a hot cache attached, repeat
// queries are served from Redis without touching the embedder or the
// store. The cache is best effort: a Redis failure degrades to a
// direct store search.
type Engine struct {
	embedder Embedder
	store    Store

	cache         *redis.Client
	cacheTTL      time.Duration
	minSimilarity float64
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithHotCache attaches a Redis hot cache for repeat queries.
func WithHotCache(client *redis.Client) EngineOption {
	return func(e *Engine) {
		e.cache = client
	}
}

// WithCacheTTL overrides how long cached query results live.
func WithCacheTTL(ttl time.Duration) EngineOption {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithMinSimilarity overrides the similarity floor below which results
// are discarded.
func WithMinSimilarity(minSimilarity float64) EngineOption {
	return func(e *Engine) {
		e.minSimilarity = minSimilarity
	}
}

// NewEngine wires an embedder and a store into a query engine.
func NewEngine(embedder Embedder, store Store, opts ...EngineOption) *Engine {
	engine := &Engine{
		embedder:      embedder,
		store:         store,
		cacheTTL:      defaultCacheTTL,
		minSimilarity: DefaultMinSimilarity,
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// Add embeds any documents that arrive without an embedding, then
// persists the batch.
func (e *Engine) Add(ctx context.Context, docs ...Document) error {
	ctx, span := tracer.Start(ctx, "add knowledge")
	defer span.End()
	span.SetAttributes(attribute.Int("documents.count", len(docs)))

	for i := range docs {
		if len(docs[i].Embedding) > 0 {
			continue
		}

		embedding, err := e.embedder.Embed(ctx, docs[i].Content)
		if err != nil {
			err = fmt.Errorf("failed to embed document %q: %w", docs[i].ID, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		docs[i].Embedding = embedding
	}

	if err := e.store.Add(ctx, docs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Search returns the documents nearest the query, most similar first.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "search knowledge")
	defer span.End()

	if limit <= 0 {
		limit = DefaultLimit
	}
	span.SetAttributes(attribute.Int("search.limit", limit))

	key := cacheKey(query, limit)
	if cached, ok := e.fromCache(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		err = fmt.Errorf("failed to embed query: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results, err := e.store.Search(ctx, embedding, limit, e.minSimilarity)
	if err != nil {
		err = fmt.Errorf("failed to search knowledge store: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(results) > 0 {
		e.promote(ctx, key, results)
	}
	return results, nil
}

func (e *Engine) fromCache(ctx context.Context, key string) ([]SearchResult, bool) {
	if e.cache == nil {
		return nil, false
	}

	data, err := e.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("knowledge cache unavailable", "error", err)
		}
		return nil, false
	}

	var results []SearchResult
	if err := json.Unmarshal(data, &results); err != nil {
		logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil, false
	}
	return results, true
}

// promote writes results to the hot cache with their embeddings
// stripped, they are dead weight once similarity is computed.
func (e *Engine) promote(ctx context.Context, key string, results []SearchResult) {
	if e.cache == nil {
		return
	}

	stripped := make([]SearchResult, len(results))
	copy(stripped, results)
	for i := range stripped {
		stripped[i].Document.Embedding = nil
	}

	data, err := json.Marshal(stripped)
	if err != nil {
		logger.Warn("failed to encode results for cache", "error", err)
		return
	}
	if err := e.cache.Set(ctx, key, data, e.cacheTTL).Err(); err != nil {
		logger.Warn("failed to promote results to cache", "error", err)
	}
}

func cacheKey(query string, limit int) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d:%s", limit, query))
	return "knowledge:query:" + hex.EncodeToString(sum[:])
}
