package vectorstore

import "context"

// SourceKey is the metadata key holding the URL a document was taken from
const SourceKey = "source"

// Document represents a piece of menu text stored in a collection
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Source returns the document's origin URL, or "" when unknown
func (d Document) Source() string {
	return d.Metadata[SourceKey]
}

// Result is a matched document with its cosine similarity to the query
type Result struct {
	Document
	Score float32
}

// Embedder turns text into a vector
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// QueryOption configures a collection query
type QueryOption func(*queryOptions)

type queryOptions struct {
	threshold    float32
	hasThreshold bool
	where        map[string]string
}

// WithThreshold keeps only results scoring strictly above threshold
func WithThreshold(threshold float32) QueryOption {
	return func(o *queryOptions) {
		o.threshold = threshold
		o.hasThreshold = true
	}
}

// WithWhere restricts results to documents whose metadata matches every pair
func WithWhere(where map[string]string) QueryOption {
	return func(o *queryOptions) {
		o.where = where
	}
}
