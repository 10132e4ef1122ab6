package headless

import (
	"fmt"
	"io"
	"strings"

	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/logger"
)

// Output handles console output for headless mode
type Output struct {
	w io.Writer
}

// NewOutput creates a new output handler
func NewOutput(w io.Writer) *Output {
	return &Output{w: w}
}

// Reply prints the assistant answer followed by its numbered sources
func (o *Output) Reply(msg chat.Message) {
	fmt.Fprintln(o.w, strings.TrimSpace(msg.Content))

	if len(msg.Sources) == 0 {
		return
	}

	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w, "Sources:")
	for i, src := range msg.Sources {
		fmt.Fprintf(o.w, "  [%d] %s\n", i+1, strings.Join(strings.Fields(src.Text), " "))
		if src.URL != "" {
			fmt.Fprintf(o.w, "      %s\n", src.URL)
		}
	}
}

// Error prints an error message using the logger
func (o *Output) Error(msg string) {
	logger.Error("%s", msg)
}
