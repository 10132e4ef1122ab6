package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/killallgit/menudata/pkg/chat"
)

// FakeAPI is an httptest server speaking the /api/chat and /api/feedback contract
type FakeAPI struct {
	*httptest.Server

	mu               sync.Mutex
	chatStatus       int
	feedbackStatus   int
	reply            chat.ChatResponse
	chatRequests     []chat.ChatRequest
	feedbackRequests []chat.FeedbackRequest
}

func NewFakeAPI(reply chat.ChatResponse) *FakeAPI {
	api := &FakeAPI{
		chatStatus:     http.StatusOK,
		feedbackStatus: http.StatusOK,
		reply:          reply,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", api.handleChat)
	mux.HandleFunc("/api/feedback", api.handleFeedback)
	api.Server = httptest.NewServer(mux)
	return api
}

// BaseURL is the value to hand to chat.NewClient
func (a *FakeAPI) BaseURL() string {
	return a.URL + "/api"
}

func (a *FakeAPI) SetChatStatus(code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chatStatus = code
}

func (a *FakeAPI) SetFeedbackStatus(code int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feedbackStatus = code
}

func (a *FakeAPI) ChatRequests() []chat.ChatRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]chat.ChatRequest(nil), a.chatRequests...)
}

func (a *FakeAPI) FeedbackRequests() []chat.FeedbackRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]chat.FeedbackRequest(nil), a.feedbackRequests...)
}

func (a *FakeAPI) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.chatRequests = append(a.chatRequests, req)
	status := a.chatStatus
	reply := a.reply
	a.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "scripted failure", status)
		return
	}

	history := append(req.History, chat.Message{Role: chat.RoleAssistant, Content: reply.Response})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"response": reply.Response,
		"sources":  reply.Sources,
		"history":  history,
	})
}

func (a *FakeAPI) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req chat.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	a.feedbackRequests = append(a.feedbackRequests, req)
	status := a.feedbackStatus
	a.mu.Unlock()

	w.WriteHeader(status)
	w.Write([]byte(`{"status":"success"}`))
}
