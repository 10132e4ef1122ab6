package status

import "time"

// StartTypingMsg shows the indicator and starts the timer
type StartTypingMsg struct {
	// Since backdates the timer, zero means now
	Since time.Time
}

// StopTypingMsg hides the indicator
type StopTypingMsg struct{}

// TickMsg updates the timer
type TickMsg time.Time
