package batch

import (
	"context"
	"fmt"
)

// NoticeLevel is the severity of a user-facing notice.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the user, optionally followed by detail lines.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notice) { f(n) }

// Prompt is the question put to the user before a batch runs.
type Prompt struct {
	Title       string
	Message     string
	FileCount   int
	Affirmative string
	Negative    string
}

// NewRenamePrompt returns the confirmation prompt for renaming count files.
func NewRenamePrompt(count int) Prompt {
	noun := "files"
	if count == 1 {
		noun = "file"
	}
	return Prompt{
		Title:       "Confirm rename",
		Message:     fmt.Sprintf("Rename %d selected %s?", count, noun),
		FileCount:   count,
		Affirmative: "Rename",
		Negative:    "Cancel",
	}
}

// Confirmer asks the user to approve a batch. An error aborts the batch.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, p Prompt) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) (bool, error) { return f(ctx, p) }

// listLimited returns at most max items, followed by an "and N more" line
// for the remainder. A max of zero or less lists everything.
func listLimited(items []string, max int) []string {
	if max <= 0 || len(items) <= max {
		return append([]string(nil), items...)
	}
	out := append([]string(nil), items[:max]...)
	return append(out, fmt.Sprintf("and %d more", len(items)-max))
}
