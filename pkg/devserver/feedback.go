package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/config"
)

// FeedbackEntry is one rating as stored in the feedback file
type FeedbackEntry struct {
	Query    string        `json:"query"`
	Response string        `json:"response"`
	Feedback chat.Feedback `json:"feedback"`
}

// FeedbackLog appends ratings to a JSON array file
type FeedbackLog struct {
	path string
	mu   sync.Mutex
}

func NewFeedbackLog(path string) *FeedbackLog {
	return &FeedbackLog{path: path}
}

func (f *FeedbackLog) Path() string {
	return f.path
}

// Append rewrites the file with entry added to the end
func (f *FeedbackLog) Append(entry FeedbackEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// other processes may share the file, so the read-modify-write runs under its lock
	return config.WithLock(f.path, config.DefaultLockConfig(), func() error {
		entries, err := f.read()
		if err != nil {
			return err
		}
		entries = append(entries, entry)

		data, err := json.MarshalIndent(entries, "", "    ")
		if err != nil {
			return fmt.Errorf("failed to encode feedback: %w", err)
		}
		if err := config.ReplaceFile(f.path, data, 0644); err != nil {
			return fmt.Errorf("failed to write feedback file: %w", err)
		}
		return nil
	})
}

// Entries returns everything recorded so far
func (f *FeedbackLog) Entries() ([]FeedbackEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *FeedbackLog) read() ([]FeedbackEntry, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []FeedbackEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feedback file: %w", err)
	}

	var entries []FeedbackEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse feedback file %s: %w", f.path, err)
	}
	return entries, nil
}
