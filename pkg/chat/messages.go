package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status tracks delivery of a user message. Assistant messages are created read.
type Status string

const (
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusError     Status = "error"
)

// Feedback is the user's rating of an assistant message.
// The zero value means no rating and encodes as JSON null.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackGood Feedback = "good"
	FeedbackBad  Feedback = "bad"
)

func (f Feedback) MarshalJSON() ([]byte, error) {
	if f == FeedbackNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(f))
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = FeedbackNone
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid feedback: %w", err)
	}

	switch Feedback(s) {
	case FeedbackNone, FeedbackGood, FeedbackBad:
		*f = Feedback(s)
		return nil
	default:
		return fmt.Errorf("invalid feedback %q", s)
	}
}

// Toggle returns the feedback that results from requesting next while f is current.
func (f Feedback) Toggle(next Feedback) Feedback {
	if f == next {
		return FeedbackNone
	}
	return next
}

type Source struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Feedback  Feedback  `json:"feedback"`
	Sources   []Source  `json:"sources,omitempty"`
}

func NewUserMessage(id, content string, ts time.Time) Message {
	return Message{
		ID:        id,
		Content:   strings.TrimSpace(content),
		Role:      RoleUser,
		Timestamp: ts,
		Status:    StatusSending,
	}
}

func NewAssistantMessage(id, content string, ts time.Time, sources []Source) Message {
	return Message{
		ID:        id,
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: ts,
		Status:    StatusRead,
		Sources:   cloneSources(sources),
	}
}

func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

func (m Message) IsPending() bool {
	return m.Status == StatusSending
}

func (m Message) HasFailed() bool {
	return m.Status == StatusError
}

func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

func (m Message) clone() Message {
	m.Sources = cloneSources(m.Sources)
	return m
}

func cloneSources(sources []Source) []Source {
	if sources == nil {
		return nil
	}
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}
