package testutil

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/killallgit/menudata/pkg/chat"
)

// FakeReply is one scripted answer of a FakeBackend
type FakeReply struct {
	Response chat.ChatResponse
	Err      error
	// Gate, when set, holds the reply until the channel is closed or the request context ends
	Gate <-chan struct{}
}

// FakeBackend implements chat.Backend with scripted replies served in order.
// When the script runs out the last reply is repeated.
type FakeBackend struct {
	mu               sync.Mutex
	replies          []FakeReply
	byMessage        map[string]FakeReply
	next             int
	chatRequests     []chat.ChatRequest
	feedbackRequests []chat.FeedbackRequest
	feedbackErr      error
}

func NewFakeBackend(replies ...FakeReply) *FakeBackend {
	return &FakeBackend{replies: replies}
}

// On scripts the reply for one specific message, ahead of the ordered script
func (f *FakeBackend) On(message string, reply FakeReply) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.byMessage == nil {
		f.byMessage = make(map[string]FakeReply)
	}
	f.byMessage[message] = reply
	return f
}

// Reply builds a successful scripted reply
func Reply(response string, sources ...chat.Source) FakeReply {
	return FakeReply{Response: chat.ChatResponse{Response: response, Sources: sources}}
}

// Failure builds a failing scripted reply
func Failure(message string) FakeReply {
	return FakeReply{Err: errors.New(message)}
}

func (f *FakeBackend) Chat(ctx context.Context, req chat.ChatRequest) (chat.ChatResponse, error) {
	f.mu.Lock()
	f.chatRequests = append(f.chatRequests, req)
	reply, scripted := f.byMessage[req.Message]
	switch {
	case scripted:
	case len(f.replies) == 0:
		reply = Failure("no replies configured")
	case f.next < len(f.replies):
		reply = f.replies[f.next]
		f.next++
	default:
		reply = f.replies[len(f.replies)-1]
	}
	f.mu.Unlock()

	if reply.Gate != nil {
		select {
		case <-reply.Gate:
		case <-ctx.Done():
			return chat.ChatResponse{}, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return chat.ChatResponse{}, err
	}
	return reply.Response, reply.Err
}

func (f *FakeBackend) Feedback(ctx context.Context, req chat.FeedbackRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackRequests = append(f.feedbackRequests, req)
	return f.feedbackErr
}

// SetFeedbackError makes every later Feedback call fail with err
func (f *FakeBackend) SetFeedbackError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackErr = err
}

func (f *FakeBackend) ChatRequests() []chat.ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.ChatRequest(nil), f.chatRequests...)
}

func (f *FakeBackend) FeedbackRequests() []chat.FeedbackRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chat.FeedbackRequest(nil), f.feedbackRequests...)
}

// SequentialIDs returns an id generator yielding prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
