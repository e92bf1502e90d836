package flow

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"qabot/core/logger"
	"qabot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

func init() {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	logger.L = discard
	logger.Flow = discard
}

// testCtx fakes the subset of tele.Context the engine touches.
type testCtx struct {
	tele.Context

	userID int64
	text   string
	sent   []string
	store  map[string]any
}

func newTestCtx(userID int64) *testCtx {
	return &testCtx{userID: userID, store: make(map[string]any)}
}

func (c *testCtx) Sender() *tele.User { return &tele.User{ID: c.userID} }
func (c *testCtx) Chat() *tele.Chat   { return &tele.Chat{ID: c.userID} }
func (c *testCtx) Update() tele.Update {
	return tele.Update{}
}
func (c *testCtx) Text() string { return c.text }
func (c *testCtx) Get(key string) any {
	return c.store[key]
}
func (c *testCtx) Set(key string, v any) { c.store[key] = v }
func (c *testCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
		return nil
	}
	return fmt.Errorf("unexpected payload %T", what)
}

func (c *testCtx) last() string {
	if len(c.sent) == 0 {
		return ""
	}
	return c.sent[len(c.sent)-1]
}

func buildEngine(t *testing.T, def *Definition) (*Engine, state.Manager, *int) {
	t.Helper()
	mgr := state.NewMemoryManager()
	menuShown := 0
	menu := func(c tele.Context) error {
		menuShown++
		return nil
	}
	eng := New(mgr, menu, nil)
	if err := eng.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	return eng, mgr, &menuShown
}

func say(t *testing.T, mgr state.Manager, c *testCtx, text string) {
	t.Helper()
	c.text = text
	if err := mgr.ManagerHandler(c); err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
}

func twoStepDef(rendered *[]*Record) *Definition {
	return &Definition{
		Name: "demo",
		Steps: []Step{
			{Field: "title", Prompt: "Title?", Rule: NonEmpty()},
			{Field: "notes", Prompt: "Notes?", Rule: NonEmpty(), Skippable: true},
		},
		Render: func(c tele.Context, rec *Record) error {
			*rendered = append(*rendered, rec)
			return c.Send("result")
		},
	}
}

func TestEngineHappyPath(t *testing.T) {
	var rendered []*Record
	def := twoStepDef(&rendered)
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(7)
	if err := eng.StartHandler("demo")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.last() != "Title?" {
		t.Fatalf("expected first prompt, got %q", c.last())
	}

	say(t, mgr, c, "Login broken")
	if c.last() != "Notes?" {
		t.Fatalf("expected second prompt, got %q", c.last())
	}

	say(t, mgr, c, "happens on retina screens")
	if len(rendered) != 1 {
		t.Fatalf("expected one render, got %d", len(rendered))
	}
	rec := rendered[0]
	if rec.String("title") != "Login broken" || rec.String("notes") != "happens on retina screens" {
		t.Fatalf("unexpected record fields: %#v", rec.Fields)
	}
	if !rec.Done {
		t.Fatalf("record should be marked done")
	}
}

func TestEngineSkipOmitsField(t *testing.T) {
	var rendered []*Record
	def := twoStepDef(&rendered)
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(8)
	if err := eng.StartHandler("demo")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "t")
	say(t, mgr, c, SkipLabel)

	if len(rendered) != 1 {
		t.Fatalf("expected render after skip")
	}
	if rendered[0].Has("notes") {
		t.Fatalf("skipped field must be absent from the record")
	}
}

func TestEngineInvalidInputDoesNotAdvance(t *testing.T) {
	var rendered []*Record
	def := twoStepDef(&rendered)
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(9)
	if err := eng.StartHandler("demo")(c); err != nil {
		t.Fatalf("start: %v", err)
	}

	say(t, mgr, c, "   ")
	if !strings.HasPrefix(c.last(), "❌") {
		t.Fatalf("expected rejection message, got %q", c.last())
	}

	say(t, mgr, c, "valid title")
	if c.last() != "Notes?" {
		t.Fatalf("flow should resume at second step, got %q", c.last())
	}
}

func TestEngineExitSentinelClearsState(t *testing.T) {
	var rendered []*Record
	def := twoStepDef(&rendered)
	eng, mgr, menuShown := buildEngine(t, def)

	for _, answers := range [][]string{
		{ExitLabel},
		{"title", ExitLabel},
		{"title", "notes", ExitLabel},
	} {
		c := newTestCtx(10)
		if err := eng.StartHandler("demo")(c); err != nil {
			t.Fatalf("start: %v", err)
		}
		for _, a := range answers {
			say(t, mgr, c, a)
		}
		if mgr.InProgress(10) {
			t.Fatalf("session must be cleared after exit (answers %v)", answers)
		}
	}
	if *menuShown != 3 {
		t.Fatalf("menu should be shown on each exit, got %d", *menuShown)
	}
}

func TestEngineRepeatRestartsFlow(t *testing.T) {
	var rendered []*Record
	def := twoStepDef(&rendered)
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(11)
	if err := eng.StartHandler("demo")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "a")
	say(t, mgr, c, "b")
	say(t, mgr, c, RepeatLabel)

	if c.last() != "Title?" {
		t.Fatalf("repeat should restart from the first step, got %q", c.last())
	}
	say(t, mgr, c, "second run")
	say(t, mgr, c, SkipLabel)
	if len(rendered) != 2 {
		t.Fatalf("expected two renders, got %d", len(rendered))
	}
	if rendered[1].String("title") != "second run" {
		t.Fatalf("second record should be fresh, got %#v", rendered[1].Fields)
	}
}

func TestEngineBranchSwitchesSteps(t *testing.T) {
	var rendered []*Record
	def := &Definition{
		Name: "branchy",
		Steps: []Step{
			{
				Field:    "kind",
				Prompt:   "Kind?",
				Rule:     Choice("Simple", "Rich"),
				Branch:   map[string]string{"Simple": "simple", "Rich": "rich"},
				Keyboard: [][]string{{"Simple", "Rich"}},
			},
		},
		Branches: map[string][]Step{
			"simple": {
				{Field: "name", Prompt: "Name?", Rule: NonEmpty()},
			},
			"rich": {
				{Field: "name", Prompt: "Name?", Rule: NonEmpty()},
				{Field: "extra", Prompt: "Extra?", Rule: NonEmpty()},
			},
		},
		Render: func(c tele.Context, rec *Record) error {
			rendered = append(rendered, rec)
			return nil
		},
	}
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(12)
	if err := eng.StartHandler("branchy")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "Rich")
	if c.last() != "Name?" {
		t.Fatalf("branch should begin with its first step, got %q", c.last())
	}
	say(t, mgr, c, "x")
	if c.last() != "Extra?" {
		t.Fatalf("rich branch has a second step, got %q", c.last())
	}
	say(t, mgr, c, "y")

	if len(rendered) != 1 {
		t.Fatalf("expected render, got %d", len(rendered))
	}
	if rendered[0].String("kind") != "Rich" || rendered[0].String("extra") != "y" {
		t.Fatalf("unexpected record: %#v", rendered[0].Fields)
	}
}

func TestEngineConditionalStepSkipped(t *testing.T) {
	var rendered []*Record
	def := &Definition{
		Name: "cond",
		Steps: []Step{
			{Field: "stmt", Prompt: "Statement?", Rule: Choice("SELECT", "INSERT")},
			{
				Field:  "where",
				Prompt: "Condition?",
				Rule:   NonEmpty(),
				SkipIf: func(rec *Record) bool { return rec.String("stmt") == "INSERT" },
			},
		},
		Render: func(c tele.Context, rec *Record) error {
			rendered = append(rendered, rec)
			return nil
		},
	}
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(13)
	if err := eng.StartHandler("cond")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "INSERT")

	if len(rendered) != 1 {
		t.Fatalf("conditional step should be skipped, renders: %d", len(rendered))
	}
	if rendered[0].Has("where") {
		t.Fatalf("skipped step must not leave a field")
	}
}

func TestEngineBackReturnsToFirstStep(t *testing.T) {
	var rendered []*Record
	def := &Definition{
		Name: "backable",
		Steps: []Step{
			{
				Field:  "format",
				Prompt: "Format?",
				Rule:   Choice("png", "txt"),
				Branch: map[string]string{"png": "png", "txt": "txt"},
			},
		},
		Branches: map[string][]Step{
			"png": {
				{Field: "params", Prompt: "Params?", Rule: NonEmpty(), AllowBack: true},
			},
			"txt": {
				{Field: "content", Prompt: "Content?", Rule: NonEmpty(), AllowBack: true},
			},
		},
		Render: func(c tele.Context, rec *Record) error {
			rendered = append(rendered, rec)
			return nil
		},
	}
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(14)
	if err := eng.StartHandler("backable")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "png")
	say(t, mgr, c, BackLabel)
	if c.last() != "Format?" {
		t.Fatalf("back should re-show the first step, got %q", c.last())
	}
	say(t, mgr, c, "txt")
	say(t, mgr, c, "hello")
	if len(rendered) != 1 || rendered[0].String("content") != "hello" {
		t.Fatalf("unexpected result after back: %#v", rendered)
	}
}

func TestEngineOnDoneCustomChoice(t *testing.T) {
	var rendered []*Record
	var custom int
	def := twoStepDef(&rendered)
	def.DoneKeyboard = [][]string{{RepeatLabel, "Show details"}}
	def.OnDone = func(ctl Controller, choice string) (bool, error) {
		if choice == "Show details" {
			custom++
			return true, ctl.StayDone()
		}
		return false, nil
	}
	eng, mgr, _ := buildEngine(t, def)

	c := newTestCtx(15)
	if err := eng.StartHandler("demo")(c); err != nil {
		t.Fatalf("start: %v", err)
	}
	say(t, mgr, c, "a")
	say(t, mgr, c, "b")
	say(t, mgr, c, "Show details")
	if custom != 1 {
		t.Fatalf("custom done choice should be handled once, got %d", custom)
	}
	say(t, mgr, c, "nonsense")
	if custom != 1 {
		t.Fatalf("unknown done choice must not invoke the hook handler result")
	}
	if mgr.InProgress(15) != true {
		t.Fatalf("done state should persist until exit or repeat")
	}
}
