package features

import (
	"fmt"
	"strings"

	"qabot/core/telegram"
	"qabot/core/telegram/callbacks"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/core/telegram/keyboard"
	"qabot/stats"

	tele "gopkg.in/telebot.v4"
)

const (
	cbStatsRefresh = "stats_refresh"
	cbStatsFlow    = "stats_flow"
)

func statsHandler(store stats.Store) tele.HandlerFunc {
	return func(c tele.Context) error {
		if store == nil || !store.Enabled() {
			return tghelpers.SendHTML(c, "📊 Usage statistics are not available: no database configured.")
		}
		text, markup, err := statsReport(c, store)
		if err != nil {
			return tghelpers.SendHTML(c, "📊 Could not load usage statistics, try again later.")
		}
		return tghelpers.SendHTML(c, text, markup)
	}
}

// statsReport builds the totals message and its inline keyboard. Each flow
// gets a drill-down button carrying the flow name as payload.
func statsReport(c tele.Context, store stats.Store) (string, *tele.ReplyMarkup, error) {
	totals, err := store.Totals(tghelpers.BuildContext(c))
	if err != nil {
		return "", nil, err
	}
	if len(totals) == 0 {
		return "📊 No completed conversations yet.", nil, nil
	}

	var b strings.Builder
	b.WriteString("📊 <b>Completed conversations</b>\n\n")
	buttons := []keyboard.InlineBtn{{Text: "🔄 Refresh", Unique: cbStatsRefresh}}
	for _, row := range totals {
		fmt.Fprintf(&b, "%s: %d\n", escape(row.Flow), row.Count)
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   "📈 " + row.Flow,
			Unique: cbStatsFlow,
			Data:   row.Flow,
		})
	}
	return strings.TrimRight(b.String(), "\n"), keyboard.InlineButtons(buttons), nil
}

func registerStatsCallbacks(reg *telegram.Registry, store stats.Store, adminID int64) error {
	isAdmin := func(c tele.Context) bool {
		return adminID == 0 || (c.Sender() != nil && c.Sender().ID == adminID)
	}

	if err := reg.RegisterCallback(cbStatsRefresh, func(c tele.Context) error {
		if !isAdmin(c) || store == nil || !store.Enabled() {
			return nil
		}
		text, markup, err := statsReport(c, store)
		if err != nil {
			return nil
		}
		// Editing with identical content fails with "message is not modified";
		// nothing to do in that case.
		_ = tghelpers.EditOrSendHTML(c, text, markup)
		return nil
	}); err != nil {
		return err
	}

	return reg.RegisterCallback(cbStatsFlow, func(c tele.Context) error {
		if !isAdmin(c) || store == nil || !store.Enabled() {
			return nil
		}
		name := callbacks.CallbackPayload(c)
		if name == "" {
			return nil
		}
		days, err := store.Daily(tghelpers.BuildContext(c), name)
		if err != nil {
			return tghelpers.SendHTML(c, "📈 Could not load the daily breakdown, try again later.")
		}
		if len(days) == 0 {
			return tghelpers.SendHTML(c, fmt.Sprintf("📈 <b>%s</b>: nothing in the last 7 days.", escape(name)))
		}
		var b strings.Builder
		fmt.Fprintf(&b, "📈 <b>%s</b>, last 7 days\n\n", escape(name))
		for _, d := range days {
			fmt.Fprintf(&b, "%s: %d\n", d.Day.Format("2006-01-02"), d.Count)
		}
		return tghelpers.SendHTML(c, strings.TrimRight(b.String(), "\n"))
	})
}
