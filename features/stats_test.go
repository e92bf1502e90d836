package features

import (
	"context"
	"strings"
	"testing"

	"qabot/stats"

	tele "gopkg.in/telebot.v4"
)

type fakeStore struct {
	totals []stats.FlowCount
	daily  []stats.DayCount
}

func (s *fakeStore) Completed(context.Context, string, int64) {}
func (s *fakeStore) Totals(context.Context) ([]stats.FlowCount, error) {
	return s.totals, nil
}
func (s *fakeStore) Daily(context.Context, string) ([]stats.DayCount, error) {
	return s.daily, nil
}
func (s *fakeStore) Enabled() bool { return true }

// statsCtx fakes the subset of tele.Context the stats handlers touch.
type statsCtx struct {
	tele.Context

	sent []string
}

func (c *statsCtx) Sender() *tele.User  { return &tele.User{ID: 42} }
func (c *statsCtx) Chat() *tele.Chat    { return &tele.Chat{ID: 42} }
func (c *statsCtx) Update() tele.Update { return tele.Update{} }
func (c *statsCtx) Get(string) any      { return nil }
func (c *statsCtx) Set(string, any)     {}
func (c *statsCtx) Send(what interface{}, _ ...interface{}) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func TestStatsReportListsFlowsWithButtons(t *testing.T) {
	store := &fakeStore{totals: []stats.FlowCount{
		{Flow: "bugreport", Count: 3},
		{Flow: "pairwise", Count: 1},
	}}
	c := &statsCtx{}

	text, markup, err := statsReport(c, store)
	if err != nil {
		t.Fatalf("statsReport: %v", err)
	}
	if !strings.Contains(text, "bugreport: 3") || !strings.Contains(text, "pairwise: 1") {
		t.Fatalf("unexpected report text: %q", text)
	}
	if markup == nil {
		t.Fatal("expected inline markup")
	}
	// One refresh row plus one drill-down row per flow.
	if got := len(markup.InlineKeyboard); got != 3 {
		t.Fatalf("expected 3 keyboard rows, got %d", got)
	}
	if !strings.Contains(markup.InlineKeyboard[1][0].Data, "bugreport") {
		t.Fatalf("drill-down button payload = %q", markup.InlineKeyboard[1][0].Data)
	}
}

func TestStatsReportEmpty(t *testing.T) {
	text, markup, err := statsReport(&statsCtx{}, &fakeStore{})
	if err != nil {
		t.Fatalf("statsReport: %v", err)
	}
	if !strings.Contains(text, "No completed conversations") {
		t.Fatalf("unexpected text: %q", text)
	}
	if markup != nil {
		t.Fatal("expected no markup for an empty report")
	}
}

func TestStatsHandlerWithoutDatabase(t *testing.T) {
	c := &statsCtx{}
	if err := statsHandler(stats.New(nil))(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "no database configured") {
		t.Fatalf("unexpected reply: %v", c.sent)
	}
}
