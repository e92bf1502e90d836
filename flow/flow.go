// Package flow implements a declarative conversation engine on top of the
// session state manager. A feature describes its dialogue as an ordered list
// of steps with validation rules; the engine interprets the definition,
// stores collected answers per user, and hands the completed record to the
// feature's renderer.
package flow

import "strings"

// Shared button labels understood by the engine at every step.
const (
	ExitLabel = "🏠 Back to menu"
	SkipLabel = "Skip ➡️"
	BackLabel = "⬅️ Back"

	RepeatLabel = "🔄 Once more"
)

// Step is a single question of a conversation.
type Step struct {
	// Field names the answer in the conversation record.
	Field string
	// Prompt is sent when the step becomes active.
	Prompt string
	// Keyboard holds extra reply keyboard rows shown with the prompt.
	Keyboard [][]string
	// Rule validates the answer. Required unless the step only branches.
	Rule Rule
	// Skippable allows answering with SkipLabel, omitting the field.
	Skippable bool
	// AllowBack shows BackLabel and returns to the first step when pressed.
	AllowBack bool
	// Branch switches to the named step list on the accepted answer.
	Branch map[string]string
	// SkipIf omits the step based on earlier answers.
	SkipIf func(rec *Record) bool
}

// Record is the conversation state for one user inside one flow.
type Record struct {
	Flow   string
	Branch string
	Index  int
	Done   bool
	Fields map[string]any
}

func newRecord(flow string) *Record {
	return &Record{Flow: flow, Fields: make(map[string]any)}
}

// String returns a stored text answer, or the empty string.
func (r *Record) String(field string) string {
	if v, ok := r.Fields[field].(string); ok {
		return v
	}
	return ""
}

// Strings returns a stored list answer, or nil.
func (r *Record) Strings(field string) []string {
	if v, ok := r.Fields[field].([]string); ok {
		return v
	}
	return nil
}

// Int returns a stored numeric answer, or 0.
func (r *Record) Int(field string) int {
	if v, ok := r.Fields[field].(int); ok {
		return v
	}
	return 0
}

// Has reports whether the field was answered (not skipped).
func (r *Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Definition declares a complete conversation flow.
type Definition struct {
	// Name identifies the flow in state keys, logs and usage stats.
	Name string
	// Steps is the base step list, usually ending in a Branch step or the
	// terminal question.
	Steps []Step
	// Branches holds the step lists selectable by a Branch step.
	Branches map[string][]Step
	// Render produces and sends the result once every step is answered.
	// It runs inside the conversation, so validation-style failures should
	// be reported to the user and returned as nil.
	Render RenderFunc
	// DoneKeyboard overrides the default repeat/exit keyboard shown after
	// Render. ExitLabel is always appended as the last row.
	DoneKeyboard [][]string
	// OnDone handles a post-completion choice that is neither RepeatLabel
	// nor ExitLabel. Returning handled=false re-prompts the choice.
	OnDone func(ctl Controller, choice string) (handled bool, err error)
}

func (d *Definition) steps(rec *Record) []Step {
	if rec.Branch != "" {
		return d.Branches[rec.Branch]
	}
	return d.Steps
}

func (d *Definition) doneKeyboard() [][]string {
	rows := make([][]string, 0, len(d.DoneKeyboard)+2)
	if len(d.DoneKeyboard) > 0 {
		rows = append(rows, d.DoneKeyboard...)
	} else {
		rows = append(rows, []string{RepeatLabel})
	}
	rows = append(rows, []string{ExitLabel})
	return rows
}

func normalizeLabel(s string) string {
	return strings.TrimSpace(s)
}
