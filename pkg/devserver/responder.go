package devserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/tmc/langchaingo/llms"
)

const (
	GreetingReply = "Hello! 👋 How can I help you with restaurant information today?"
	emptyReply    = "❌ No response generated."
	errorPrefix   = "❌ Error: "

	defaultHistoryWindow = 5
	maxReplyTokens       = 512
	replyTemperature     = 0.7
)

var greetings = map[string]struct{}{
	"hi":             {},
	"hello":          {},
	"hey":            {},
	"greetings":      {},
	"good morning":   {},
	"good afternoon": {},
	"good evening":   {},
}

// HistoryEntry is the role/content pair the backend keeps per turn
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Responder answers menu questions with retrieval augmented generation
type Responder struct {
	model         llms.Model
	retriever     *Retriever
	historyWindow int
	log           *logger.Logger
}

func NewResponder(model llms.Model, retriever *Retriever, historyWindow int) *Responder {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &Responder{
		model:         model,
		retriever:     retriever,
		historyWindow: historyWindow,
		log:           logger.WithComponent("devserver"),
	}
}

// Respond returns the reply text and cited sources. Failures are reported in
// the reply text rather than as an error.
func (r *Responder) Respond(ctx context.Context, question string, history []HistoryEntry) (string, []chat.Source) {
	r.log.Info("Received query: %s", question)

	if isGreeting(question) {
		return GreetingReply, []chat.Source{}
	}

	results, err := r.retriever.Retrieve(ctx, question)
	if err != nil {
		r.log.Error("Retrieval failed: %v", err)
		return errorPrefix + err.Error(), []chat.Source{}
	}
	r.log.Debug("Using %d local documents", len(results))

	prompt := buildPrompt(formatHistory(history, r.historyWindow), contextFor(results), question)

	reply, err := llms.GenerateFromSinglePrompt(ctx, r.model, prompt,
		llms.WithMaxTokens(maxReplyTokens),
		llms.WithTemperature(replyTemperature),
	)
	if err != nil {
		r.log.Error("Generation failed: %v", err)
		return errorPrefix + err.Error(), []chat.Source{}
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = emptyReply
	}
	return reply, sourcesFor(results)
}

func isGreeting(question string) bool {
	_, ok := greetings[strings.ToLower(strings.TrimSpace(question))]
	return ok
}

// formatHistory renders the last window entries in instruction-tuned chat markup
func formatHistory(history []HistoryEntry, window int) string {
	if len(history) > window {
		history = history[len(history)-window:]
	}

	lines := make([]string, 0, len(history))
	for _, entry := range history {
		if entry.Role == string(chat.RoleUser) {
			lines = append(lines, fmt.Sprintf("<s>[INST] %s [/INST]", entry.Content))
		} else {
			lines = append(lines, fmt.Sprintf("%s </s>", entry.Content))
		}
	}
	return strings.Join(lines, "\n")
}

func buildPrompt(history, menuContext, question string) string {
	var b strings.Builder
	b.WriteString(history)
	b.WriteString("\n<s>[INST] You are a friendly restaurant expert answering questions about menus.\n\n")
	b.WriteString("Greet the user back when they greet you; greetings need no sources.\n")
	b.WriteString("For restaurant questions, answer from the menu data below when it is relevant ")
	b.WriteString("and say so when it does not contain the answer.\n\n")
	b.WriteString("Menu Data Context:\n")
	b.WriteString(menuContext)
	b.WriteString("\n\nCurrent Question: ")
	b.WriteString(question)
	b.WriteString("\n[/INST]")
	return b.String()
}
