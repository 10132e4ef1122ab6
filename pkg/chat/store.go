package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/killallgit/menudata/pkg/logger"
)

const NoUserQuery = "No User Query Found"

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrStoreClosed  = errors.New("store is closed")
)

// State is the conversation aggregate. Values returned by Store.Snapshot
// share nothing with the store.
type State struct {
	Messages []Message
	Sources  []Source
	IsTyping bool
	Error    string
}

func (s State) clone() State {
	out := State{
		Sources:  cloneSources(s.Sources),
		IsTyping: s.IsTyping,
		Error:    s.Error,
	}
	if s.Messages != nil {
		out.Messages = make([]Message, len(s.Messages))
		for i, m := range s.Messages {
			out.Messages[i] = m.clone()
		}
	}
	return out
}

func (s State) Find(id string) (Message, bool) {
	for _, m := range s.Messages {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// ReplyTo returns the first assistant message appended after the given user message
func (s State) ReplyTo(id string) (Message, bool) {
	found := false
	for _, m := range s.Messages {
		if m.ID == id {
			found = true
			continue
		}
		if found && m.IsAssistant() {
			return m, true
		}
	}
	return Message{}, false
}

type StoreOption func(*Store)

func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		s.newID = fn
	}
}

func WithClock(fn func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = fn
	}
}

// WithRequestTimeout bounds each backend call. Zero disables the bound.
func WithRequestTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		s.timeout = d
	}
}

func WithLogger(l *logger.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// Store owns the conversation. Mutations happen under one lock and are
// followed by a non-blocking notification of every subscriber.
type Store struct {
	mu      sync.RWMutex
	state   State
	subs    map[int]chan struct{}
	nextSub int
	closed  bool

	backend Backend
	newID   func() string
	now     func() time.Time
	timeout time.Duration
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStore(backend Backend, opts ...StoreOption) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		state:   State{Messages: []Message{}, Sources: []Source{}},
		subs:    make(map[int]chan struct{}),
		backend: backend,
		newID:   uuid.NewString,
		now:     time.Now,
		timeout: 90 * time.Second,
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.WithComponent("chat_store")
	}
	return s
}

// Submit appends a pending user message and sends it to the backend in the
// background. It returns the id of the new message.
func (s *Store) Submit(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrStoreClosed
	}

	msg := NewUserMessage(s.newID(), content, s.now())
	s.state.Messages = append(s.state.Messages, msg)
	s.state.IsTyping = true

	history := make([]Message, len(s.state.Messages))
	for i, m := range s.state.Messages {
		history[i] = m.clone()
	}

	s.wg.Add(1)
	s.mu.Unlock()
	s.notify()

	s.log.Debug("submitted message %s (%d chars, history %d)", msg.ID, len(content), len(history))
	logger.LogChatHistory(string(RoleUser), content)

	go s.send(msg.ID, ChatRequest{Message: content, History: history})
	return msg.ID, nil
}

func (s *Store) send(id string, req ChatRequest) {
	defer s.wg.Done()

	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.backend.Chat(ctx, req)
	if err != nil {
		s.log.Error("chat request for message %s failed: %v", id, err)
		s.fail(id, err)
		return
	}

	s.deliver(id, resp)
	logger.LogChatHistory(string(RoleAssistant), resp.Response)
}

func (s *Store) deliver(id string, resp ChatResponse) {
	sources := cloneSources(resp.Sources)
	if sources == nil {
		sources = []Source{}
	}

	s.mu.Lock()
	s.updateMessage(id, func(m *Message) {
		m.Status = StatusDelivered
	})
	s.state.Messages = append(s.state.Messages, NewAssistantMessage(s.newID(), resp.Response, s.now(), sources))
	s.state.Sources = sources
	s.state.Error = ""
	s.state.IsTyping = false
	s.mu.Unlock()

	s.notify()
}

func (s *Store) fail(id string, err error) {
	description := err.Error()
	if description == "" {
		description = "Unknown API error"
	}

	s.mu.Lock()
	s.updateMessage(id, func(m *Message) {
		m.Status = StatusError
	})
	s.state.Error = description
	s.state.IsTyping = false
	s.mu.Unlock()

	s.notify()
}

// SetFeedback toggles the rating of an assistant message and reports it to
// the backend. The local change is kept whatever the backend answers.
func (s *Store) SetFeedback(messageID string, feedback Feedback) {
	s.mu.Lock()
	idx := s.indexOf(messageID)
	if idx < 0 || !s.state.Messages[idx].IsAssistant() {
		s.mu.Unlock()
		s.log.Warn("ignoring feedback for %q: no assistant message with that id", messageID)
		return
	}

	target := &s.state.Messages[idx]
	target.Feedback = target.Feedback.Toggle(feedback)

	req := FeedbackRequest{
		Query:    s.precedingQuery(idx),
		Response: target.Content,
		Type:     target.Feedback,
	}

	dispatch := !s.closed
	if dispatch {
		s.wg.Add(1)
	}
	s.mu.Unlock()
	s.notify()

	if dispatch {
		go s.sendFeedback(messageID, req)
	}
}

func (s *Store) sendFeedback(id string, req FeedbackRequest) {
	defer s.wg.Done()

	ctx, cancel := s.requestContext()
	defer cancel()

	if err := s.backend.Feedback(ctx, req); err != nil {
		s.log.Error("feedback for message %s failed: %v", id, err)
		return
	}
	s.log.Debug("feedback for message %s recorded as %v", id, req.Type)
}

func (s *Store) SetTyping(typing bool) {
	s.mu.Lock()
	s.state.IsTyping = typing
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe returns a channel that receives a value after every change.
// Notifications coalesce, so a slow reader sees the latest state on its next
// Snapshot. The channel is closed by the returned func or by Close.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Wait blocks until every in-flight request has settled
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight requests, waits for them to settle and releases subscribers
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
}

func (s *Store) requestContext() (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(s.ctx, s.timeout)
	}
	return context.WithCancel(s.ctx)
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// updateMessage applies fn to the message with the given id. Callers hold mu.
func (s *Store) updateMessage(id string, fn func(*Message)) bool {
	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	fn(&s.state.Messages[idx])
	return true
}

func (s *Store) indexOf(id string) int {
	for i := range s.state.Messages {
		if s.state.Messages[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) precedingQuery(idx int) string {
	for i := idx - 1; i >= 0; i-- {
		if s.state.Messages[i].IsUser() {
			return s.state.Messages[i].Content
		}
	}
	return NoUserQuery
}
