package headless

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/killallgit/menudata/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunHeadlessPrintsReplyAndSources(t *testing.T) {
	api := testutil.NewFakeAPI(chat.ChatResponse{
		Response: "Try the Margherita at Luigi's.",
		Sources: []chat.Source{
			{Text: "Luigi's Trattoria\nMargherita pizza", URL: "https://menus.example/luigi"},
			{Text: "Pizza Planet menu", URL: ""},
		},
	})
	defer api.Close()

	store := chat.NewStore(chat.NewClient(api.BaseURL(), time.Second))
	defer store.Close()

	var out bytes.Buffer
	err := RunHeadless(context.Background(), store, "Pizza?", &out)
	require.NoError(t, err)

	assert.Equal(t, "Try the Margherita at Luigi's.\n\nSources:\n"+
		"  [1] Luigi's Trattoria Margherita pizza\n"+
		"      https://menus.example/luigi\n"+
		"  [2] Pizza Planet menu\n", out.String())

	requests := api.ChatRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, "Pizza?", requests[0].Message)
}

func TestRunHeadlessFailure(t *testing.T) {
	store := chat.NewStore(testutil.NewFakeBackend(testutil.Failure("API Error")))
	defer store.Close()

	var out bytes.Buffer
	err := RunHeadless(context.Background(), store, "Hello", &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API Error")
	assert.Empty(t, out.String())
}

func TestRunHeadlessFailureLogsVerbatim(t *testing.T) {
	var logs bytes.Buffer
	logger.SetDefault(logger.NewWithWriter(logger.LevelDebug, &logs))
	t.Cleanup(func() { logger.SetDefault(nil) })

	store := chat.NewStore(testutil.NewFakeBackend(testutil.Failure("quota at 100%s used")))
	defer store.Close()

	err := RunHeadless(context.Background(), store, "Hello", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, logs.String(), "quota at 100%s used")
	assert.NotContains(t, logs.String(), "%!s(MISSING)")
}

func TestRunHeadlessEmptyPrompt(t *testing.T) {
	store := chat.NewStore(testutil.NewFakeBackend())
	defer store.Close()

	err := RunHeadless(context.Background(), store, "", &bytes.Buffer{})
	assert.EqualError(t, err, "prompt cannot be empty in headless mode")

	err = RunHeadless(context.Background(), store, "   ", &bytes.Buffer{})
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
}

func TestRunHeadlessCancelled(t *testing.T) {
	store := chat.NewStore(
		testutil.NewFakeBackend(testutil.FakeReply{Gate: make(chan struct{})}),
		chat.WithRequestTimeout(0),
	)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := RunHeadless(ctx, store, "Hello", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}
