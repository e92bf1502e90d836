package features

import (
	"fmt"
	"strconv"
	"strings"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

const (
	noConditionLabel = "No condition"
	noLimitLabel     = "No LIMIT"
)

// limitRule accepts a positive integer or the "No LIMIT" button.
func limitRule() flow.Rule {
	return func(input string) (any, error) {
		s := strings.TrimSpace(input)
		if strings.EqualFold(s, noLimitLabel) {
			return 0, nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, &flow.ValidationError{
				Code:    flow.CodeNotANumber,
				Message: "Send a positive number or pick \"" + noLimitLabel + "\".",
			}
		}
		if n <= 0 {
			return nil, &flow.ValidationError{
				Code:    flow.CodeOutOfRange,
				Message: "The LIMIT must be greater than zero.",
			}
		}
		return n, nil
	}
}

func splitColumns(raw string) []string {
	var cols []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		cols = []string{"*"}
	}
	return cols
}

// BuildSQL assembles the statement from the collected answers.
func BuildSQL(stmt, table string, columns []string, where string, limit int) string {
	var b strings.Builder
	switch stmt {
	case "SELECT":
		fmt.Fprintf(&b, "SELECT %s\nFROM %s", strings.Join(columns, ", "), table)
		if where != "" {
			fmt.Fprintf(&b, "\nWHERE %s", where)
		}
		if limit > 0 {
			fmt.Fprintf(&b, "\nLIMIT %d", limit)
		}
	case "INSERT":
		placeholders := make([]string, len(columns))
		for i := range placeholders {
			placeholders[i] = "?"
		}
		fmt.Fprintf(&b, "INSERT INTO %s (%s)\nVALUES (%s)",
			table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	case "UPDATE":
		sets := make([]string, len(columns))
		for i, col := range columns {
			sets[i] = col + " = ?"
		}
		fmt.Fprintf(&b, "UPDATE %s\nSET %s", table, strings.Join(sets, ", "))
		if where != "" {
			fmt.Fprintf(&b, "\nWHERE %s", where)
		}
	case "DELETE":
		fmt.Fprintf(&b, "DELETE FROM %s", table)
		if where != "" {
			fmt.Fprintf(&b, "\nWHERE %s", where)
		}
	}
	b.WriteString(";")
	return b.String()
}

func sqlDefinition() *flow.Definition {
	return &flow.Definition{
		Name: "sql",
		Steps: []flow.Step{
			{
				Field:    "stmt",
				Prompt:   "🗄 Which statement do you need?",
				Rule:     flow.Choice("SELECT", "INSERT", "UPDATE", "DELETE"),
				Keyboard: [][]string{{"SELECT", "INSERT"}, {"UPDATE", "DELETE"}},
			},
			{Field: "table", Prompt: "Send the table name.", Rule: flow.NonEmpty()},
			{
				Field:  "columns",
				Prompt: "List the columns separated by commas, or send *.",
				Rule:   flow.NonEmpty(),
				SkipIf: func(rec *flow.Record) bool { return rec.String("stmt") == "DELETE" },
			},
			{
				Field:    "where",
				Prompt:   "Send the WHERE condition.",
				Rule:     flow.NonEmpty(),
				Keyboard: [][]string{{noConditionLabel}},
				SkipIf:   func(rec *flow.Record) bool { return rec.String("stmt") == "INSERT" },
			},
			{
				Field:    "limit",
				Prompt:   "Send the LIMIT value.",
				Rule:     limitRule(),
				Keyboard: [][]string{{noLimitLabel}},
				SkipIf:   func(rec *flow.Record) bool { return rec.String("stmt") != "SELECT" },
			},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			where := rec.String("where")
			if strings.EqualFold(where, noConditionLabel) {
				where = ""
			}
			query := BuildSQL(
				rec.String("stmt"),
				rec.String("table"),
				splitColumns(rec.String("columns")),
				where,
				rec.Int("limit"),
			)
			return tghelpers.SendHTML(c, "🗄 <b>SQL</b>\n"+codeBlock(query))
		},
	}
}
