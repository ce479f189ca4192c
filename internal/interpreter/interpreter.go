package interpreter

import (
	"context"
	"errors"
)

// Mode selects the prompt shape: a fresh instruction or an edit of an
// existing task.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// MaxInstructionLen caps the instruction length; longer input is rejected
// locally without a network call.
const MaxInstructionLen = 500

var ErrInstructionTooLong = errors.New("instruction is longer than 500 characters")

// Snapshot carries the stored state of the task being edited, so the model
// changes existing fields instead of fabricating a new task.
type Snapshot struct {
	Description string
	Category    string
	Date        string
	Time        string
	RemindDate  string
	RemindTime  string
}

// Request is one interpretation call.
type Request struct {
	Instruction string
	// Reference is the user's current local date/time ("2006-01-02 15:04"),
	// the anchor for relative dates like "завтра" or weekday names.
	Reference string
	Mode      Mode
	Prior     *Snapshot // edit mode only
}

// Item is one structured task candidate as returned by the model. Every
// field may be empty or malformed; the materializer decides what survives.
type Item struct {
	Category   string `json:"category"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	RemindDate string `json:"remind_date"`
	RemindTime string `json:"remind_time"`
	Task       string `json:"task"`
}

// Kind discriminates the two result shapes.
type Kind int

const (
	// KindChat is a conversational reply (clarification or refusal); no
	// task must be created from it.
	KindChat Kind = iota
	// KindTasks is an ordered list of structured task candidates.
	KindTasks
)

// Result is the tagged union of the two interpretation outcomes. Transport
// failures and malformed responses are reported as plain errors instead.
type Result struct {
	Kind    Kind
	Message string // KindChat
	Items   []Item // KindTasks
}

// Interpreter converts free-form text into either a conversational reply or
// structured task items. Calls are at-most-once; no retries.
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (Result, error)
}
