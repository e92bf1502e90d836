// Package features wires the QA toolbox conversations: bug reports, test
// documentation, SQL and test data generation, validators, the API
// inspector, pairwise combinations and file generation.
package features

import (
	"fmt"
	"time"

	"qabot/core/telegram"
	"qabot/core/telegram/commands"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/core/telegram/keyboard"
	"qabot/flow"
	"qabot/stats"

	tele "gopkg.in/telebot.v4"
)

// Config tunes feature behaviour. Zero values fall back to defaults.
type Config struct {
	ProbeTimeout   time.Duration `yaml:"probe_timeout" envconfig:"PROBE_TIMEOUT"`
	ProbeBodyLimit int64         `yaml:"probe_body_limit" envconfig:"PROBE_BODY_LIMIT"`
	TestDataMax    int           `yaml:"test_data_max" envconfig:"TEST_DATA_MAX"`
	ImageMaxSide   int           `yaml:"image_max_side" envconfig:"IMAGE_MAX_SIDE"`
}

func (c *Config) normalize() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 30 * time.Second
	}
	if c.ProbeBodyLimit <= 0 {
		c.ProbeBodyLimit = 5 << 20
	}
	if c.TestDataMax <= 0 {
		c.TestDataMax = 50
	}
	if c.ImageMaxSide <= 0 {
		c.ImageMaxSide = 5000
	}
}

// Options carries the dependencies required to register every feature.
type Options struct {
	Engine   *flow.Engine
	Registry *telegram.Registry
	Stats    stats.Store
	AdminID  int64
	Config   Config
}

// Menu button labels, also accepted as plain text outside a conversation.
const (
	labelBugReport = "🐞 Bug report"
	labelDocs      = "📋 Documentation"
	labelPairwise  = "🧪 Pairwise"
	labelSQL       = "🗄 SQL generator"
	labelTestData  = "👥 Test data"
	labelTimestamp = "⏱ Timestamp"
	labelJSON      = "✅ JSON check"
	labelValidate  = "📑 Data validator"
	labelAPI       = "🌐 API inspector"
	labelFileGen   = "📎 File generator"
)

type feature struct {
	command     string
	label       string
	description string
	def         *flow.Definition
}

// Register builds every flow definition and wires commands, the menu and
// the text fallback into the registry.
func Register(opts Options) error {
	if opts.Engine == nil || opts.Registry == nil {
		return fmt.Errorf("features: engine and registry are required")
	}
	cfg := opts.Config
	cfg.normalize()

	list := []feature{
		{"/bugreport", labelBugReport, "Compose a structured bug report", bugReportDefinition()},
		{"/docs", labelDocs, "Create a test case, checklist or bug report", docsDefinition()},
		{"/pairwise", labelPairwise, "Build pairwise test combinations", pairwiseDefinition()},
		{"/sql", labelSQL, "Generate an SQL statement", sqlDefinition()},
		{"/testdata", labelTestData, "Generate fake user records", testDataDefinition(cfg)},
		{"/timestamp", labelTimestamp, "Convert Unix timestamps and dates", timestampDefinition()},
		{"/json", labelJSON, "Validate and pretty-print JSON", jsonDefinition()},
		{"/validate", labelValidate, "Validate JSON, XML or YAML", dataValidatorDefinition()},
		{"/api", labelAPI, "Inspect an HTTP endpoint", probeDefinition(cfg)},
		{"/filegen", labelFileGen, "Generate a test file", fileGenDefinition(cfg)},
	}

	byLabel := make(map[string]tele.HandlerFunc, len(list))
	for _, f := range list {
		if err := opts.Engine.Register(f.def); err != nil {
			return fmt.Errorf("features: %s: %w", f.command, err)
		}
		start := opts.Engine.StartHandler(f.def.Name)
		opts.Registry.RegisterCommand(f.command, commands.Command{
			Handler:     start,
			Description: f.description,
		})
		byLabel[f.label] = start
	}

	menu := menuHandler()
	opts.Registry.RegisterCommand("/start", commands.Command{
		Handler:     menu,
		Description: "Show the main menu",
		Aliases:     []string{"help"},
	})
	opts.Registry.RegisterCommand("/stats", commands.Command{
		Handler:     statsHandler(opts.Stats),
		Description: "Usage statistics",
		AdminOnly:   true,
		Hidden:      true,
	})
	if err := registerStatsCallbacks(opts.Registry, opts.Stats, opts.AdminID); err != nil {
		return fmt.Errorf("features: stats callbacks: %w", err)
	}

	opts.Registry.SetTextFallback(func(c tele.Context) error {
		if start, ok := byLabel[c.Text()]; ok {
			return start(c)
		}
		return menu(c)
	})
	return nil
}

// MenuMarkup returns the main reply keyboard.
func MenuMarkup() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{labelBugReport, labelDocs},
		[]string{labelPairwise, labelSQL},
		[]string{labelTestData, labelTimestamp},
		[]string{labelJSON, labelValidate},
		[]string{labelAPI, labelFileGen},
	)
}

func menuHandler() tele.HandlerFunc {
	const welcome = "<b>QA toolbox</b>\n\n" +
		"Pick a tool from the keyboard below or use its command. " +
		"You can leave any conversation with the menu button."
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, welcome, MenuMarkup())
	}
}

// MenuHandler exposes the menu for engine exits.
func MenuHandler() tele.HandlerFunc { return menuHandler() }
