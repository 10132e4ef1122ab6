package headless

import (
	"context"
	"errors"
	"fmt"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/logger"
)

// ErrNoReply is returned when the store settled without an assistant message
var ErrNoReply = errors.New("no reply received")

// runner runs the chat in headless mode
type runner struct {
	store  *chat.Store
	output *Output
	log    *logger.Logger
}

func newRunner(store *chat.Store, output *Output) *runner {
	return &runner{
		store:  store,
		output: output,
		log:    logger.WithComponent("headless"),
	}
}

// run submits the prompt, waits for the request to settle and prints the outcome.
// Cancelling ctx closes the store, which fails the pending request.
func (r *runner) run(ctx context.Context, prompt string) error {
	id, err := r.store.Submit(prompt)
	if err != nil {
		return err
	}
	r.log.Debug("submitted prompt as message %s", id)

	settled := make(chan struct{})
	go func() {
		r.store.Wait()
		close(settled)
	}()

	select {
	case <-settled:
	case <-ctx.Done():
		r.store.Close()
		<-settled
	}

	state := r.store.Snapshot()
	sent, ok := state.Find(id)
	if !ok {
		return fmt.Errorf("message %s vanished from the conversation", id)
	}

	if sent.HasFailed() {
		r.output.Error(state.Error)
		return fmt.Errorf("chat request failed: %s", state.Error)
	}

	reply, ok := state.ReplyTo(id)
	if !ok {
		return ErrNoReply
	}

	r.output.Reply(reply)
	r.log.Debug("reply %s printed with %d sources", reply.ID, len(reply.Sources))
	return nil
}
