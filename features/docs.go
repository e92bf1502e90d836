package features

import (
	"fmt"
	"strings"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

var testCasePriorities = []string{"Critical", "High", "Medium", "Low"}

const anotherDocLabel = "📄 Another document type"

func testCaseSteps() []flow.Step {
	return []flow.Step{
		{Field: "title", Prompt: "📝 Send the test case title.", Rule: flow.NonEmpty()},
		{Field: "description", Prompt: "Describe what the test case verifies.", Rule: flow.NonEmpty(), Skippable: true},
		{Field: "preconditions", Prompt: "List preconditions, if any.", Rule: flow.NonEmpty(), Skippable: true},
		{
			Field:  "steps",
			Prompt: "List the test steps, separated by semicolons or new lines.",
			Rule:   flow.List(),
		},
		{Field: "expected", Prompt: "What is the expected result?", Rule: flow.NonEmpty(), Skippable: true},
		{
			Field:     "priority",
			Prompt:    "Pick the priority.",
			Rule:      flow.Choice(testCasePriorities...),
			Keyboard:  [][]string{{"Critical", "High"}, {"Medium", "Low"}},
			Skippable: true,
		},
	}
}

func checklistSteps() []flow.Step {
	return []flow.Step{
		{Field: "title", Prompt: "📝 Send the checklist title.", Rule: flow.NonEmpty()},
		{
			Field:  "items",
			Prompt: "List the checklist items, separated by semicolons or new lines.",
			Rule:   flow.List(),
		},
	}
}

func renderTestCase(rec *flow.Record) string {
	var parts []string
	parts = append(parts, "🧾 <b>Test case</b>", "")
	parts = append(parts, line("Title", rec.String("title")))
	if rec.Has("description") {
		parts = append(parts, line("Description", rec.String("description")))
	}
	if rec.Has("preconditions") {
		parts = append(parts, line("Preconditions", rec.String("preconditions")))
	}
	parts = append(parts, section("Steps", rec.Strings("steps")))
	if rec.Has("expected") {
		parts = append(parts, line("Expected result", rec.String("expected")))
	}
	if rec.Has("priority") {
		parts = append(parts, line("Priority", rec.String("priority")))
	}
	parts = append(parts,
		"<b>Actual result:</b> _",
		"<b>Status:</b> _",
	)
	return strings.Join(parts, "\n")
}

func renderChecklist(rec *flow.Record) string {
	var b strings.Builder
	b.WriteString("☑️ <b>Checklist</b>\n\n")
	b.WriteString(line("Title", rec.String("title")))
	b.WriteString("\n\n")
	for i, item := range rec.Strings("items") {
		fmt.Fprintf(&b, "[ ] %d. %s\n", i+1, escape(item))
	}
	return strings.TrimRight(b.String(), "\n")
}

func docsDefinition() *flow.Definition {
	return &flow.Definition{
		Name: "docs",
		Steps: []flow.Step{
			{
				Field:  "doc_type",
				Prompt: "📋 What do you want to create?",
				Rule:   flow.Choice("Test case", "Checklist", "Bug report"),
				Branch: map[string]string{
					"Test case":  "testcase",
					"Checklist":  "checklist",
					"Bug report": "bugreport",
				},
				Keyboard: [][]string{{"Test case", "Checklist"}, {"Bug report"}},
			},
		},
		Branches: map[string][]flow.Step{
			"testcase":  testCaseSteps(),
			"checklist": checklistSteps(),
			"bugreport": bugReportSteps(),
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			var out string
			switch rec.Branch {
			case "testcase":
				out = renderTestCase(rec)
			case "checklist":
				out = renderChecklist(rec)
			default:
				out = renderBugReport(rec)
			}
			return tghelpers.SendHTMLChunks(c, out)
		},
		DoneKeyboard: [][]string{{flow.RepeatLabel, anotherDocLabel}},
		OnDone: func(ctl flow.Controller, choice string) (bool, error) {
			if choice == anotherDocLabel {
				return true, ctl.Restart()
			}
			return false, nil
		},
	}
}
