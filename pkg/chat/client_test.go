package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/killallgit/menudata/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		client *chat.Client
		server *httptest.Server
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()

			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))

			switch r.URL.Path {
			case "/api/chat":
				var req map[string]json.RawMessage
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req).To(HaveKey("message"))
				Expect(req).To(HaveKey("history"))

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"response": "Try Margherita",
					"sources": [{"text": "Margherita pizza", "url": "https://menus.example/pizza"}],
					"history": [{"role": "user", "content": "ignored"}]
				}`))
			case "/api/feedback":
				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req).To(HaveKeyWithValue("query", "Pizza?"))
				Expect(req).To(HaveKeyWithValue("response", "Try Margherita"))
				Expect(req).To(HaveKey("type"))
				Expect(req["type"]).To(BeNil())
				w.Write([]byte(`{"status":"success"}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		client = chat.NewClient(server.URL+"/api/", time.Second)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewClient", func() {
		It("should trim the trailing slash of the base URL", func() {
			Expect(client.BaseURL()).To(Equal(server.URL + "/api"))
		})
	})

	Describe("Chat", func() {
		It("should send the message and decode the reply", func() {
			resp, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Pizza?"})

			Expect(err).ToNot(HaveOccurred())
			Expect(resp.Response).To(Equal("Try Margherita"))
			Expect(resp.Sources).To(Equal([]chat.Source{{Text: "Margherita pizza", URL: "https://menus.example/pizza"}}))
		})
	})

	Describe("Feedback", func() {
		It("should send a null type when the rating is cleared", func() {
			err := client.Feedback(context.Background(), chat.FeedbackRequest{
				Query:    "Pizza?",
				Response: "Try Margherita",
				Type:     chat.FeedbackNone,
			})
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("Error handling", func() {
		It("should handle connection errors", func() {
			client = chat.NewClient("http://127.0.0.1:1/api", time.Second)

			_, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Hello"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("request failed"))
		})

		It("should stop when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := client.Chat(ctx, chat.ChatRequest{Message: "Hello"})
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Describe("HTTP error responses", func() {
		BeforeEach(func() {
			server.Close()
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "backend exploded", http.StatusInternalServerError)
			}))
			client = chat.NewClient(server.URL+"/api", time.Second)
		})

		It("should report the status as an APIError", func() {
			_, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Hello"})
			Expect(err).To(HaveOccurred())

			var statusErr *chat.APIError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(statusErr.Endpoint).To(Equal("chat"))
			Expect(err.Error()).To(ContainSubstring("chat request failed with status 500: backend exploded"))
		})

		It("should fail feedback on non-2xx", func() {
			err := client.Feedback(context.Background(), chat.FeedbackRequest{Query: "q", Response: "r", Type: chat.FeedbackGood})

			var statusErr *chat.APIError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.Endpoint).To(Equal("feedback"))
		})
	})

	Describe("Invalid JSON response", func() {
		BeforeEach(func() {
			server.Close()
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte("invalid json"))
			}))
			client = chat.NewClient(server.URL+"/api", time.Second)
		})

		It("should handle invalid JSON responses", func() {
			_, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Hello"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to decode response"))
		})
	})

	Describe("Timeout", func() {
		BeforeEach(func() {
			server.Close()
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			client = chat.NewClient(server.URL+"/api", 50*time.Millisecond)
		})

		It("should give up after the configured timeout", func() {
			start := time.Now()
			_, err := client.Chat(context.Background(), chat.ChatRequest{Message: "Hello"})

			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", time.Second))
		})
	})
})
