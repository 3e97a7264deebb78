package rag

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"goaltrack/internal/config"
)

const embedCacheTTL = time.Hour

// Embedder generates vector embeddings from text through an OpenAI-compatible
// embeddings endpoint. Results are cached in redis for an hour, keyed by a
// content hash; cache failures are ignored.
type Embedder struct {
	apiURL string
	apiKey string
	model  string
	dim    int
	client *http.Client
	cache  *redis.Client // may be nil
}

// NewEmbedder creates a new embedder client. rdb may be nil to disable caching.
func NewEmbedder(cfg config.OpenAIConfig, rdb *redis.Client) *Embedder {
	dim := cfg.Embedding.Dimension
	if dim == 0 {
		dim = DefaultDimension
	}
	return &Embedder{
		apiURL: cfg.Embedding.URL,
		apiKey: cfg.APIKey,
		model:  cfg.Embedding.Model,
		dim:    dim,
		client: &http.Client{
			Timeout: 15 * time.Second, // Reasonable timeout for embedding generation
		},
		cache: rdb,
	}
}

// Dimension returns the required vector length.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Embed converts text to a vector embedding. Empty input, provider errors and
// wrong-length vectors all surface as *EmbeddingError.
func (e *Embedder) Embed(ctx context.Context, text string) (Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Reason: "empty text"}
	}

	cacheKey := fmt.Sprintf("embedding:%x", sha256.Sum256([]byte(text)))
	if e.cache != nil {
		if raw, err := e.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []float32
			if err := json.Unmarshal(raw, &cached); err == nil {
				if vec, err := NewVector(cached, e.dim); err == nil {
					return vec, nil
				}
			}
		}
	}

	reqBody := map[string]interface{}{
		"input":           text,
		"model":           e.model,
		"encoding_format": "float",
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &EmbeddingError{Reason: "failed to marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &EmbeddingError{Reason: "failed to create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Reason: "provider call failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{Reason: fmt.Sprintf("API returned status %d: %s", resp.StatusCode, string(body))}
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &EmbeddingError{Reason: "failed to decode response", Err: err}
	}
	if len(result.Data) == 0 {
		return nil, &EmbeddingError{Reason: "no embeddings returned"}
	}

	vec, err := NewVector(result.Data[0].Embedding, e.dim)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if raw, err := json.Marshal([]float32(vec)); err == nil {
			if err := e.cache.Set(ctx, cacheKey, raw, embedCacheTTL).Err(); err != nil {
				log.Printf("[Embedder] Cache write failed: %v", err)
			}
		}
	}

	return vec, nil
}
