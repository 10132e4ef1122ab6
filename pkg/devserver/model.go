package devserver

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/killallgit/menudata/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
	"github.com/tmc/langchaingo/llms/ollama"
)

// cannedAnswers are cycled by the fake provider
var cannedAnswers = []string{
	"Based on the menu data, **Green Slice** in Brooklyn serves a vegan margherita with cashew mozzarella.",
	"**Thai Orchid** in Queens lists Pad Thai with tamarind and peanuts, and a vegan Pad Thai jay.",
	"I could not find that in the menu data I have. Try asking about a dish or a city.",
}

// NewModel builds the language model named by cfg.Provider ("fake" or "ollama")
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "fake":
		return &serialModel{model: fake.NewFakeLLM(cannedAnswers)}, nil
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.URL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.URL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama LLM: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}

// serialModel guards a model that is not safe for concurrent use
type serialModel struct {
	mu    sync.Mutex
	model llms.Model
}

func (s *serialModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model.GenerateContent(ctx, messages, options...)
}

func (s *serialModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, s, prompt, options...)
}
