package chat

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingBackend struct {
	mu        sync.Mutex
	feedbacks []FeedbackRequest
}

func (r *recordingBackend) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	return ChatResponse{}, nil
}

func (r *recordingBackend) Feedback(ctx context.Context, req FeedbackRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedbacks = append(r.feedbacks, req)
	return nil
}

var _ = Describe("Store feedback query lookup", func() {
	var (
		backend *recordingBackend
		store   *Store
		now     time.Time
	)

	BeforeEach(func() {
		backend = &recordingBackend{}
		store = NewStore(backend)
		now = time.Now()
	})

	AfterEach(func() {
		store.Close()
	})

	It("should fall back to the sentinel when no user message precedes the reply", func() {
		store.state.Messages = []Message{
			NewAssistantMessage("a-1", "Welcome to Menudata", now, nil),
		}

		store.SetFeedback("a-1", FeedbackGood)
		store.Wait()

		Expect(backend.feedbacks).To(HaveLen(1))
		Expect(backend.feedbacks[0].Query).To(Equal(NoUserQuery))
	})

	It("should pick the nearest preceding user message", func() {
		store.state.Messages = []Message{
			NewUserMessage("u-1", "Vegan pizza?", now),
			NewAssistantMessage("a-1", "Green Slice", now, nil),
			NewUserMessage("u-2", "Pad Thai?", now),
			NewAssistantMessage("a-2", "Thai Orchid", now, nil),
			NewAssistantMessage("a-3", "Also Bangkok Street", now, nil),
		}

		store.SetFeedback("a-3", FeedbackBad)
		store.Wait()

		Expect(backend.feedbacks[0].Query).To(Equal("Pad Thai?"))
		Expect(backend.feedbacks[0].Response).To(Equal("Also Bangkok Street"))
		Expect(backend.feedbacks[0].Type).To(Equal(FeedbackBad))
	})

	It("should apply the rating locally even after Close", func() {
		store.state.Messages = []Message{
			NewAssistantMessage("a-1", "Green Slice", now, nil),
		}
		store.Close()

		store.SetFeedback("a-1", FeedbackGood)

		Expect(store.state.Messages[0].Feedback).To(Equal(FeedbackGood))
		Expect(backend.feedbacks).To(BeEmpty())
	})
})
