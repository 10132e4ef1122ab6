package vectorstore

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyQuery      = errors.New("query text cannot be empty")
	ErrEmptyDocumentID = errors.New("document ID cannot be empty")
	ErrDuplicateID     = errors.New("duplicate document ID")
)

// EmbeddingError provides context for embedding operation failures
type EmbeddingError struct {
	Operation string
	Provider  string
	Cause     error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s failed for %s: %v", e.Operation, e.Provider, e.Cause)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

func wrapEmbeddingError(err error, operation, provider string) error {
	if err == nil {
		return nil
	}

	return &EmbeddingError{
		Operation: operation,
		Provider:  provider,
		Cause:     err,
	}
}

// validateDocuments rejects empty and repeated IDs before anything is embedded
func validateDocuments(docs []Document) error {
	seen := make(map[string]struct{}, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document %d: %w", i, ErrEmptyDocumentID)
		}
		if _, ok := seen[doc.ID]; ok {
			return fmt.Errorf("document %q: %w", doc.ID, ErrDuplicateID)
		}
		seen[doc.ID] = struct{}{}
	}
	return nil
}
