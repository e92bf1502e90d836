package features

import (
	"fmt"
	"strings"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"
	"qabot/pairwise"

	tele "gopkg.in/telebot.v4"
)

const (
	fullListLabel  = "📋 Full list"
	optimalLabel   = "🧪 Optimal set"
	newParamsLabel = "🧮 New parameters"

	// fullListCap bounds the enumerated full product; above it only the
	// count is reported.
	fullListCap = 500
)

func paramsRule() flow.Rule {
	return func(input string) (any, error) {
		params, err := pairwise.Parse(input)
		if err != nil {
			return nil, &flow.ValidationError{
				Code: flow.CodeInvalidChoice,
				Message: "Could not read the parameters: " + err.Error() +
					"\nUse the form: os: mac, win; browser: chrome, firefox",
			}
		}
		return params, nil
	}
}

func recordParams(rec *flow.Record) []pairwise.Parameter {
	params, _ := rec.Fields["params"].([]pairwise.Parameter)
	return params
}

func renderCombinations(params []pairwise.Parameter, combos []pairwise.Combination) string {
	var b strings.Builder
	for i, combo := range combos {
		fmt.Fprintf(&b, "%d. ", i+1)
		for j, p := range params {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", escape(p.Name), escape(combo[j]))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderPairwiseSummary(params []pairwise.Parameter) string {
	cover := pairwise.Cover(params)
	total := pairwise.ProductSize(params)

	var b strings.Builder
	b.WriteString("🧪 <b>Pairwise combinations</b>\n\n")
	b.WriteString("<b>Parameters:</b>\n")
	for _, p := range params {
		fmt.Fprintf(&b, "• %s: %s\n", escape(p.Name), escape(strings.Join(p.Values, ", ")))
	}
	fmt.Fprintf(&b, "\nFull product: %d combinations\nOptimal set: %d combinations\n\n", total, len(cover))
	b.WriteString(renderCombinations(params, cover))
	return b.String()
}

func pairwiseDefinition() *flow.Definition {
	return &flow.Definition{
		Name: "pairwise",
		Steps: []flow.Step{
			{
				Field: "params",
				Prompt: "🧪 Send the parameters in one message:\n" +
					"<code>os: mac, win; browser: chrome, firefox</code>\n" +
					"At least two parameters are required.",
				Rule: paramsRule(),
			},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			return tghelpers.SendHTMLChunks(c, renderPairwiseSummary(recordParams(rec)))
		},
		DoneKeyboard: [][]string{{fullListLabel, optimalLabel}, {newParamsLabel}},
		OnDone: func(ctl flow.Controller, choice string) (bool, error) {
			params := recordParams(ctl.Rec)
			switch choice {
			case fullListLabel:
				total := pairwise.ProductSize(params)
				if total > fullListCap {
					msg := fmt.Sprintf("The full product holds %d combinations, which is too many to list. Showing the count only.", total)
					if err := tghelpers.SendHTML(ctl.C, msg); err != nil {
						return true, err
					}
					return true, ctl.StayDone()
				}
				out := "📋 <b>Full product</b>\n\n" + renderCombinations(params, pairwise.Product(params))
				if err := tghelpers.SendHTMLChunks(ctl.C, out); err != nil {
					return true, err
				}
				return true, ctl.StayDone()
			case optimalLabel:
				if err := tghelpers.SendHTMLChunks(ctl.C, renderPairwiseSummary(params)); err != nil {
					return true, err
				}
				return true, ctl.StayDone()
			case newParamsLabel:
				return true, ctl.Restart()
			}
			return false, nil
		},
	}
}
