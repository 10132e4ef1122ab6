package devserver

import (
	"context"
	"strings"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/vectorstore"
)

const (
	excerptLength = 200
	noContext     = "No relevant menu data found for this question."
)

// Retriever finds menu documents relevant to a question
type Retriever struct {
	collection *vectorstore.Collection
	topK       int
	threshold  float32
}

func NewRetriever(collection *vectorstore.Collection, topK int, threshold float32) *Retriever {
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{collection: collection, topK: topK, threshold: threshold}
}

// Retrieve returns the top-k documents scoring above the relevance threshold
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vectorstore.Result, error) {
	return r.collection.Query(ctx, question, r.topK, vectorstore.WithThreshold(r.threshold))
}

// contextFor joins the matched documents into the prompt's context block
func contextFor(results []vectorstore.Result) string {
	if len(results) == 0 {
		return noContext
	}
	parts := make([]string, len(results))
	for i, res := range results {
		parts[i] = res.Content
	}
	return strings.Join(parts, "\n\n")
}

func sourcesFor(results []vectorstore.Result) []chat.Source {
	sources := make([]chat.Source, len(results))
	for i, res := range results {
		sources[i] = chat.Source{
			Text: excerpt(res.Content, excerptLength) + "...",
			URL:  res.Source(),
		}
	}
	return sources
}

// excerpt cuts s to at most n runes
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
