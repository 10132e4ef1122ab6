package chat_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/testutil"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var (
		backend *testutil.FakeBackend
		store   *chat.Store
		clock   time.Time
	)

	newStore := func(b chat.Backend, opts ...chat.StoreOption) *chat.Store {
		base := []chat.StoreOption{
			chat.WithIDGenerator(testutil.SequentialIDs("msg")),
			chat.WithClock(func() time.Time { return clock }),
		}
		return chat.NewStore(b, append(base, opts...)...)
	}

	BeforeEach(func() {
		clock = time.Date(2024, 5, 1, 9, 15, 0, 0, time.UTC)
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("NewStore", func() {
		It("should start with an empty conversation", func() {
			store = newStore(testutil.NewFakeBackend())
			state := store.Snapshot()

			Expect(state.Messages).To(BeEmpty())
			Expect(state.Sources).To(BeEmpty())
			Expect(state.IsTyping).To(BeFalse())
			Expect(state.Error).To(BeEmpty())
		})
	})

	Describe("Submit", func() {
		It("should reject empty content without changing state", func() {
			store = newStore(testutil.NewFakeBackend())

			_, err := store.Submit("   \n\t")
			Expect(err).To(MatchError(chat.ErrEmptyMessage))
			Expect(store.Snapshot().Messages).To(BeEmpty())
			Expect(store.Snapshot().IsTyping).To(BeFalse())
		})

		It("should append a pending message and raise the typing flag before the reply", func() {
			gate := make(chan struct{})
			backend = testutil.NewFakeBackend(testutil.FakeReply{
				Response: chat.ChatResponse{Response: "Hi!"},
				Gate:     gate,
			})
			store = newStore(backend)

			id, err := store.Submit("  Hello  ")
			Expect(err).ToNot(HaveOccurred())
			Expect(id).To(Equal("msg-1"))

			state := store.Snapshot()
			Expect(state.IsTyping).To(BeTrue())
			Expect(state.Messages).To(HaveLen(1))
			Expect(state.Messages[0].Content).To(Equal("Hello"))
			Expect(state.Messages[0].Status).To(Equal(chat.StatusSending))
			Expect(state.Messages[0].Timestamp).To(Equal(clock))

			close(gate)
			store.Wait()

			state = store.Snapshot()
			Expect(state.IsTyping).To(BeFalse())
			Expect(state.Messages).To(HaveLen(2))
			Expect(state.Messages[0].Status).To(Equal(chat.StatusDelivered))
		})

		It("should append the assistant reply with its sources", func() {
			sources := []chat.Source{
				{Text: "Margherita: tomato, mozzarella, basil", URL: "https://menus.example/luigi"},
			}
			backend = testutil.NewFakeBackend(testutil.Reply("Try Margherita", sources...))
			store = newStore(backend)

			_, err := store.Submit("Pizza?")
			Expect(err).ToNot(HaveOccurred())
			store.Wait()

			state := store.Snapshot()
			Expect(state.Messages).To(HaveLen(2))

			reply := state.Messages[1]
			Expect(reply.ID).To(Equal("msg-2"))
			Expect(reply.Role).To(Equal(chat.RoleAssistant))
			Expect(reply.Content).To(Equal("Try Margherita"))
			Expect(reply.Status).To(Equal(chat.StatusRead))
			Expect(reply.Feedback).To(Equal(chat.FeedbackNone))
			Expect(reply.Sources).To(Equal(sources))
			Expect(state.Sources).To(Equal(sources))
			Expect(state.Error).To(BeEmpty())
		})

		It("should replace the aggregate sources wholesale", func() {
			first := []chat.Source{{Text: "a", URL: "u1"}, {Text: "b", URL: "u2"}}
			second := []chat.Source{{Text: "Margherita", URL: "u3"}}
			backend = testutil.NewFakeBackend(
				testutil.Reply("first", first...),
				testutil.Reply("Try Margherita", second...),
				testutil.Reply("nothing"),
			)
			store = newStore(backend)

			store.Submit("one")
			store.Wait()
			Expect(store.Snapshot().Sources).To(Equal(first))

			store.Submit("Pizza?")
			store.Wait()
			Expect(store.Snapshot().Sources).To(Equal(second))

			store.Submit("three")
			store.Wait()
			Expect(store.Snapshot().Sources).To(BeEmpty())
		})

		It("should yield two messages per successful submit in append order", func() {
			backend = testutil.NewFakeBackend(testutil.Reply("ok"))
			store = newStore(backend)

			for _, q := range []string{"one", "two", "three"} {
				_, err := store.Submit(q)
				Expect(err).ToNot(HaveOccurred())
				store.Wait()
			}

			state := store.Snapshot()
			Expect(state.Messages).To(HaveLen(6))
			for i, m := range state.Messages {
				if i%2 == 0 {
					Expect(m.Role).To(Equal(chat.RoleUser))
					Expect(m.Status).To(Equal(chat.StatusDelivered))
				} else {
					Expect(m.Role).To(Equal(chat.RoleAssistant))
				}
			}
			Expect(state.Messages[0].Content).To(Equal("one"))
			Expect(state.Messages[4].Content).To(Equal("three"))
		})

		It("should send the history including the new message", func() {
			backend = testutil.NewFakeBackend(testutil.Reply("ok"))
			store = newStore(backend)

			store.Submit("first")
			store.Wait()
			store.Submit("second")
			store.Wait()

			requests := backend.ChatRequests()
			Expect(requests).To(HaveLen(2))

			Expect(requests[0].Message).To(Equal("first"))
			Expect(requests[0].History).To(HaveLen(1))
			Expect(requests[0].History[0].Status).To(Equal(chat.StatusSending))

			Expect(requests[1].Message).To(Equal("second"))
			Expect(requests[1].History).To(HaveLen(3))
			Expect(requests[1].History[2].Content).To(Equal("second"))
			Expect(requests[1].History[1].Role).To(Equal(chat.RoleAssistant))
		})

		It("should mark the message failed and record the error", func() {
			backend = testutil.NewFakeBackend(testutil.Failure("API Error"))
			store = newStore(backend)

			_, err := store.Submit("Hello")
			Expect(err).ToNot(HaveOccurred())
			store.Wait()

			state := store.Snapshot()
			Expect(state.Messages).To(HaveLen(1))
			Expect(state.Messages[0].Status).To(Equal(chat.StatusError))
			Expect(state.IsTyping).To(BeFalse())
			Expect(state.Error).To(Equal("API Error"))
		})

		It("should clear the error on the next success", func() {
			backend = testutil.NewFakeBackend(testutil.Failure("API Error"), testutil.Reply("back again"))
			store = newStore(backend)

			store.Submit("Hello")
			store.Wait()
			Expect(store.Snapshot().Error).ToNot(BeEmpty())

			store.Submit("Hello again")
			store.Wait()

			state := store.Snapshot()
			Expect(state.Error).To(BeEmpty())
			Expect(state.Messages[0].Status).To(Equal(chat.StatusError))
			Expect(state.Messages[1].Status).To(Equal(chat.StatusDelivered))
		})

		It("should fail on a transport error against a real client", func() {
			api := testutil.NewFakeAPI(chat.ChatResponse{Response: "unused"})
			baseURL := api.BaseURL()
			api.Close()

			store = newStore(chat.NewClient(baseURL, time.Second))
			store.Submit("Hello")
			store.Wait()

			state := store.Snapshot()
			Expect(state.Messages).To(HaveLen(1))
			Expect(state.Messages[0].Status).To(Equal(chat.StatusError))
			Expect(state.IsTyping).To(BeFalse())
			Expect(state.Error).ToNot(BeEmpty())
		})

		It("should fail on a non-2xx answer", func() {
			api := testutil.NewFakeAPI(chat.ChatResponse{Response: "unused"})
			defer api.Close()
			api.SetChatStatus(http.StatusBadGateway)

			client := chat.NewClient(api.BaseURL(), time.Second)
			store = newStore(client)
			store.Submit("Hello")
			store.Wait()

			state := store.Snapshot()
			Expect(state.Messages[0].Status).To(Equal(chat.StatusError))
			Expect(state.Messages[0].HasFailed()).To(BeTrue())
			Expect(state.Error).To(ContainSubstring("502"))

			_, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Hello"})
			var apiErr *chat.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadGateway))
		})

		It("should fail a request that outlives the timeout", func() {
			backend = testutil.NewFakeBackend(testutil.FakeReply{Gate: make(chan struct{})})
			store = newStore(backend, chat.WithRequestTimeout(20*time.Millisecond))

			store.Submit("Hello")
			store.Wait()

			state := store.Snapshot()
			Expect(state.Messages[0].Status).To(Equal(chat.StatusError))
			Expect(state.IsTyping).To(BeFalse())
			Expect(state.Error).To(ContainSubstring("deadline"))
		})

		It("should only touch its own entry when submits overlap", func() {
			firstGate := make(chan struct{})
			secondGate := make(chan struct{})
			backend = testutil.NewFakeBackend().
				On("first", testutil.FakeReply{Response: chat.ChatResponse{Response: "first reply"}, Gate: firstGate}).
				On("second", testutil.FakeReply{Err: errors.New("second failed"), Gate: secondGate})
			store = newStore(backend)

			firstID, _ := store.Submit("first")
			secondID, _ := store.Submit("second")

			close(secondGate)
			Eventually(func() chat.Status {
				m, _ := store.Snapshot().Find(secondID)
				return m.Status
			}).Should(Equal(chat.StatusError))

			// settling one request ends typing even while another is in flight
			state := store.Snapshot()
			Expect(state.IsTyping).To(BeFalse())
			first, _ := state.Find(firstID)
			Expect(first.Status).To(Equal(chat.StatusSending))

			close(firstGate)
			store.Wait()

			state = store.Snapshot()
			first, _ = state.Find(firstID)
			second, _ := state.Find(secondID)
			Expect(first.Status).To(Equal(chat.StatusDelivered))
			Expect(second.Status).To(Equal(chat.StatusError))

			reply, ok := state.ReplyTo(firstID)
			Expect(ok).To(BeTrue())
			Expect(reply.Content).To(Equal("first reply"))
			Expect(state.Messages).To(HaveLen(3))
		})

		It("should never leave a message sending after settlement", func() {
			backend = testutil.NewFakeBackend(testutil.Reply("ok"), testutil.Failure("nope"), testutil.Reply("ok"))
			store = newStore(backend)

			var wg sync.WaitGroup
			for _, q := range []string{"a", "b", "c"} {
				wg.Add(1)
				go func(q string) {
					defer wg.Done()
					defer GinkgoRecover()
					_, err := store.Submit(q)
					Expect(err).ToNot(HaveOccurred())
				}(q)
			}
			wg.Wait()
			store.Wait()

			for _, m := range store.Snapshot().Messages {
				Expect(m.Status).ToNot(Equal(chat.StatusSending))
			}
		})
	})

	Describe("SetFeedback", func() {
		var replyID string

		BeforeEach(func() {
			backend = testutil.NewFakeBackend(testutil.Reply("Try Margherita"))
			store = newStore(backend)

			store.Submit("Pizza?")
			store.Wait()

			replyID = store.Snapshot().Messages[1].ID
		})

		It("should toggle the same rating off", func() {
			store.SetFeedback(replyID, chat.FeedbackGood)
			m, _ := store.Snapshot().Find(replyID)
			Expect(m.Feedback).To(Equal(chat.FeedbackGood))

			store.SetFeedback(replyID, chat.FeedbackGood)
			m, _ = store.Snapshot().Find(replyID)
			Expect(m.Feedback).To(Equal(chat.FeedbackNone))
		})

		It("should switch between ratings", func() {
			store.SetFeedback(replyID, chat.FeedbackGood)
			store.SetFeedback(replyID, chat.FeedbackBad)

			m, _ := store.Snapshot().Find(replyID)
			Expect(m.Feedback).To(Equal(chat.FeedbackBad))
		})

		It("should report the query, response and resulting rating", func() {
			store.SetFeedback(replyID, chat.FeedbackGood)
			store.SetFeedback(replyID, chat.FeedbackGood)
			store.Wait()

			requests := backend.FeedbackRequests()
			Expect(requests).To(HaveLen(2))
			Expect(requests).To(ContainElement(chat.FeedbackRequest{Query: "Pizza?", Response: "Try Margherita", Type: chat.FeedbackGood}))
			Expect(requests).To(ContainElement(chat.FeedbackRequest{Query: "Pizza?", Response: "Try Margherita", Type: chat.FeedbackNone}))
		})

		It("should ignore user messages and unknown ids", func() {
			before := store.Snapshot()

			store.SetFeedback(before.Messages[0].ID, chat.FeedbackGood)
			store.SetFeedback("does-not-exist", chat.FeedbackBad)
			store.Wait()

			Expect(store.Snapshot().Messages).To(Equal(before.Messages))
			Expect(backend.FeedbackRequests()).To(BeEmpty())
		})

		It("should keep the local rating when the backend rejects it", func() {
			api := testutil.NewFakeAPI(chat.ChatResponse{Response: "Try Margherita"})
			defer api.Close()
			api.SetFeedbackStatus(http.StatusInternalServerError)

			store.Close()
			store = newStore(chat.NewClient(api.BaseURL(), time.Second))
			store.Submit("Pizza?")
			store.Wait()

			id := store.Snapshot().Messages[1].ID
			store.SetFeedback(id, chat.FeedbackBad)
			store.Wait()

			state := store.Snapshot()
			m, _ := state.Find(id)
			Expect(m.Feedback).To(Equal(chat.FeedbackBad))
			Expect(state.Error).To(BeEmpty())
			Expect(api.FeedbackRequests()).To(HaveLen(1))
		})
	})

	Describe("SetTyping", func() {
		It("should set the flag and notify", func() {
			store = newStore(testutil.NewFakeBackend())
			updates, unsubscribe := store.Subscribe()
			defer unsubscribe()

			store.SetTyping(true)
			Eventually(updates).Should(Receive())
			Expect(store.Snapshot().IsTyping).To(BeTrue())

			store.SetTyping(false)
			Expect(store.Snapshot().IsTyping).To(BeFalse())
		})
	})

	Describe("Snapshot", func() {
		It("should hand out copies", func() {
			backend = testutil.NewFakeBackend(testutil.Reply("ok", chat.Source{Text: "t", URL: "u"}))
			store = newStore(backend)
			store.Submit("Hello")
			store.Wait()

			snap := store.Snapshot()
			snap.Messages[0].Content = "mutated"
			snap.Sources[0].Text = "mutated"
			snap.Messages[1].Sources[0].URL = "mutated"

			fresh := store.Snapshot()
			Expect(fresh.Messages[0].Content).To(Equal("Hello"))
			Expect(fresh.Sources[0].Text).To(Equal("t"))
			Expect(fresh.Messages[1].Sources[0].URL).To(Equal("u"))
		})
	})

	Describe("Subscribe", func() {
		It("should coalesce notifications", func() {
			store = newStore(testutil.NewFakeBackend())
			updates, unsubscribe := store.Subscribe()
			defer unsubscribe()

			store.SetTyping(true)
			store.SetTyping(false)
			store.SetTyping(true)

			Expect(updates).To(Receive())
			Consistently(updates, 50*time.Millisecond).ShouldNot(Receive())
		})

		It("should close the channel on unsubscribe", func() {
			store = newStore(testutil.NewFakeBackend())
			updates, unsubscribe := store.Subscribe()

			unsubscribe()
			unsubscribe()
			Expect(drained(updates)).To(BeTrue())
		})
	})

	Describe("Close", func() {
		It("should cancel in-flight requests and release subscribers", func() {
			backend = testutil.NewFakeBackend(testutil.FakeReply{Gate: make(chan struct{})})
			store = newStore(backend, chat.WithRequestTimeout(0))
			updates, _ := store.Subscribe()

			id, err := store.Submit("Hello")
			Expect(err).ToNot(HaveOccurred())

			done := make(chan struct{})
			go func() {
				store.Close()
				close(done)
			}()
			Eventually(done).Should(BeClosed())

			m, _ := store.Snapshot().Find(id)
			Expect(m.Status).To(Equal(chat.StatusError))
			Expect(store.Snapshot().IsTyping).To(BeFalse())
			Eventually(func() bool { return drained(updates) }).Should(BeTrue())
		})

		It("should reject submits afterwards", func() {
			store = newStore(testutil.NewFakeBackend())
			store.Close()
			store.Close()

			_, err := store.Submit("Hello")
			Expect(err).To(MatchError(chat.ErrStoreClosed))
		})
	})
})

// drained reports whether ch is closed, discarding any pending notification
func drained(ch <-chan struct{}) bool {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}
