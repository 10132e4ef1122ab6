package vectorstore

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/philippgille/chromem-go"
)

// Collection is an in-memory chromem-go collection of menu documents
type Collection struct {
	collection *chromem.Collection
	name       string
	mu         sync.RWMutex
}

// NewCollection creates an empty in-memory collection embedding text with embedder
func NewCollection(name string, embedder Embedder) (*Collection, error) {
	db := chromem.NewDB()

	embedFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedText(ctx, text)
	}

	col, err := db.CreateCollection(name, nil, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	return &Collection{collection: col, name: name}, nil
}

func (c *Collection) Name() string {
	return c.name
}

// AddDocuments embeds and stores docs
func (c *Collection) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := validateDocuments(docs); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	chromemDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		metadata := make(map[string]string, len(doc.Metadata))
		for k, v := range doc.Metadata {
			metadata[k] = v
		}
		chromemDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadata,
		}
	}

	if err := c.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// Query returns up to k documents ordered by descending similarity
func (c *Collection) Query(ctx context.Context, query string, k int, opts ...QueryOption) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	options := &queryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	// chromem rejects k larger than the collection
	docCount := c.collection.Count()
	if k > docCount {
		k = docCount
	}
	if k <= 0 {
		return []Result{}, nil
	}

	chromemResults, err := c.collection.Query(ctx, query, k, options.where, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	results := make([]Result, 0, len(chromemResults))
	for _, cr := range chromemResults {
		if options.hasThreshold && cr.Similarity <= options.threshold {
			continue
		}
		results = append(results, Result{
			Document: Document{
				ID:       cr.ID,
				Content:  cr.Content,
				Metadata: cr.Metadata,
			},
			Score: cr.Similarity,
		})
	}
	return results, nil
}

func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection.Count()
}
