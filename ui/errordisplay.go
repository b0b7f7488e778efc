package ui

import (
	"fmt"
	"strings"
)

// RetryAction describes the retry control of a retryable ErrorDisplay.
type RetryAction struct {
	Label      string `json:"label"`
	ActionType string `json:"actionType"`
}

// ErrorDisplay surfaces a backend-reported failure.
type ErrorDisplay struct {
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	ErrorCode   string       `json:"errorCode"`
	IsRetryable bool         `json:"isRetryable"`
	RetryAction *RetryAction `json:"retryAction"`
}

func (e *ErrorDisplay) ComponentName() string { return "ErrorDisplay" }

// CanRetry reports whether a retry control should be offered.
func (e *ErrorDisplay) CanRetry() bool {
	return e.IsRetryable && e.RetryAction != nil
}

// Retry yields the user action the retry control emits: the declared
// action type with empty data.
func (e *ErrorDisplay) Retry() (actionType string, actionData map[string]any) {
	at := "RETRY"
	if e.RetryAction != nil && e.RetryAction.ActionType != "" {
		at = e.RetryAction.ActionType
	}
	return at, map[string]any{}
}

func (e *ErrorDisplay) Render(width int) string {
	title := e.Title
	if title == "" {
		title = "Error"
	}
	msg := e.Message
	if msg == "" {
		msg = "An error occurred."
	}
	code := e.ErrorCode
	if code == "" {
		code = "UNKNOWN_ERROR"
	}
	var b strings.Builder
	b.WriteString(errorStyle.Render("✗ "+title) + "\n")
	b.WriteString(msg + "\n")
	fmt.Fprintf(&b, "Error code: %s", code)
	if e.CanRetry() {
		label := e.RetryAction.Label
		if label == "" {
			label = "Try Again"
		}
		fmt.Fprintf(&b, "\n%s", dimStyle.Render(fmt.Sprintf("press r to %s", strings.ToLower(label))))
	}
	return b.String()
}
