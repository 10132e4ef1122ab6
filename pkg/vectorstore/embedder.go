package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// DefaultHashDimensions is the vector size of the offline hash embedder
const DefaultHashDimensions = 1024

// stopWords are dropped before hashing so question phrasing does not dominate similarity
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "can": {}, "do": {}, "does": {},
	"find": {}, "for": {}, "from": {}, "get": {}, "how": {}, "i": {}, "in": {}, "is": {},
	"it": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {}, "the": {}, "to": {},
	"what": {}, "where": {}, "which": {}, "who": {}, "with": {}, "you": {},
}

// HashEmbedder is a deterministic bag-of-words embedder that needs no model server
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Dimensions() int {
	return h.dims
}

// EmbedText hashes each lowercase token into a bucket and returns the L2-normalised counts
func (h *HashEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, wrapEmbeddingError(err, "embed", "hash")
	}

	vec := make([]float32, h.dims)
	for _, token := range tokenize(text) {
		hasher := fnv.New32a()
		hasher.Write([]byte(token))
		vec[hasher.Sum32()%uint32(h.dims)]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		// no content words, park the text in a bucket of its own
		vec[0] = 1
		return vec, nil
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// LangChainEmbedder wraps a LangChain embedder to implement our Embedder interface
type LangChainEmbedder struct {
	embedder embeddings.Embedder
	provider string
}

// NewOllamaEmbedder creates an embedder backed by an Ollama embedding model
func NewOllamaEmbedder(model, baseURL string) (*LangChainEmbedder, error) {
	opts := []ollama.Option{ollama.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, ollama.WithServerURL(baseURL))
	}

	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama LLM: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	return &LangChainEmbedder{embedder: embedder, provider: "ollama"}, nil
}

func (e *LangChainEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, wrapEmbeddingError(err, "embed", e.provider)
	}
	if len(vec) == 0 {
		return nil, wrapEmbeddingError(errors.New("empty embedding returned"), "embed", e.provider)
	}
	return vec, nil
}

// NewEmbedder builds the embedder named by provider ("hash" or "ollama")
func NewEmbedder(provider, model, baseURL string) (Embedder, error) {
	switch strings.ToLower(provider) {
	case "", "hash":
		return NewHashEmbedder(DefaultHashDimensions), nil
	case "ollama":
		return NewOllamaEmbedder(model, baseURL)
	default:
		return nil, fmt.Errorf("unsupported embedder provider: %s", provider)
	}
}
