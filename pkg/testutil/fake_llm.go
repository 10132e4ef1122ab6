package testutil

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// FakeLLM is a langchaingo model that cycles canned answers and remembers prompts
type FakeLLM struct {
	mu        sync.Mutex
	responses []string
	next      int
	prompts   []string
	err       error
}

var _ llms.Model = (*FakeLLM)(nil)

func NewFakeLLM(responses ...string) *FakeLLM {
	return &FakeLLM{responses: responses}
}

// FailWith makes every later call return err
func (f *FakeLLM) FailWith(err error) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

func (f *FakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *FakeLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	var parts []string
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				parts = append(parts, text.Text)
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, strings.Join(parts, "\n"))
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("no responses configured")
	}

	response := f.responses[f.next%len(f.responses)]
	f.next++

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: response}},
	}, nil
}

func (f *FakeLLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *FakeLLM) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}
