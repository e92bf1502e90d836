package features

import (
	"strings"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

var severityLevels = []string{"Blocker", "Critical", "Medium", "Minor", "Trivial"}

// bugReportSteps is shared between /bugreport and the bug report branch of
// the documentation flow.
func bugReportSteps() []flow.Step {
	return []flow.Step{
		{Field: "title", Prompt: "📝 Send a short bug title.", Rule: flow.NonEmpty()},
		{Field: "description", Prompt: "Describe the bug in more detail.", Rule: flow.NonEmpty(), Skippable: true},
		{
			Field:  "steps",
			Prompt: "List the steps to reproduce, separated by semicolons or new lines.",
			Rule:   flow.List(),
		},
		{Field: "actual", Prompt: "What actually happens?", Rule: flow.NonEmpty()},
		{Field: "expected", Prompt: "What did you expect to happen?", Rule: flow.NonEmpty(), Skippable: true},
		{Field: "environment", Prompt: "Describe the environment (OS, browser, build).", Rule: flow.NonEmpty(), Skippable: true},
		{
			Field:     "severity",
			Prompt:    "Pick the severity.",
			Rule:      flow.Choice(severityLevels...),
			Keyboard:  [][]string{{"Blocker", "Critical"}, {"Medium", "Minor", "Trivial"}},
			Skippable: true,
		},
		{Field: "logs", Prompt: "Paste relevant logs, if any.", Rule: flow.NonEmpty(), Skippable: true},
		{Field: "curl", Prompt: "Paste the failing request as a cURL command, if any.", Rule: flow.NonEmpty(), Skippable: true},
		{Field: "docs_link", Prompt: "Link to related documentation, if any.", Rule: flow.URL(), Skippable: true},
	}
}

func renderBugReport(rec *flow.Record) string {
	var parts []string
	parts = append(parts, "🐞 <b>Bug report</b>", "")
	parts = append(parts, line("Title", rec.String("title")))
	if rec.Has("description") {
		parts = append(parts, line("Description", rec.String("description")))
	}
	parts = append(parts, section("Steps to reproduce", rec.Strings("steps")))
	parts = append(parts, line("Actual result", rec.String("actual")))
	if rec.Has("expected") {
		parts = append(parts, line("Expected result", rec.String("expected")))
	}
	if rec.Has("environment") {
		parts = append(parts, line("Environment", rec.String("environment")))
	}
	if rec.Has("severity") {
		parts = append(parts, line("Severity", rec.String("severity")))
	}
	if rec.Has("logs") {
		parts = append(parts, "<b>Logs:</b>\n"+codeBlock(rec.String("logs")))
	}
	if rec.Has("curl") {
		parts = append(parts, "<b>cURL:</b>\n"+codeBlock(rec.String("curl")))
	}
	if rec.Has("docs_link") {
		parts = append(parts, line("Documentation", rec.String("docs_link")))
	}
	return strings.Join(parts, "\n")
}

func bugReportDefinition() *flow.Definition {
	return &flow.Definition{
		Name:  "bugreport",
		Steps: bugReportSteps(),
		Render: func(c tele.Context, rec *flow.Record) error {
			return tghelpers.SendHTMLChunks(c, renderBugReport(rec))
		},
	}
}
