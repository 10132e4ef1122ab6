package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/killallgit/menudata/pkg/chat"
)

// RunHeadless sends a single prompt through the store and prints the reply.
// This is the main entry point for headless/CLI execution
func RunHeadless(ctx context.Context, store *chat.Store, prompt string, w io.Writer) error {
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty in headless mode")
	}

	r := newRunner(store, NewOutput(w))
	if err := r.run(ctx, prompt); err != nil {
		return fmt.Errorf("failed to execute prompt: %w", err)
	}
	return nil
}
