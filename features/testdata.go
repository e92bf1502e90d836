package features

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	tghelpers "qabot/core/telegram/helpers"
	"qabot/flow"

	tele "gopkg.in/telebot.v4"
)

// FakeUser is one generated identity.
type FakeUser struct {
	Name     string
	Username string
	Email    string
	Password string
	Card     string
	Address  string
}

func generateUsers(n int) []FakeUser {
	users := make([]FakeUser, n)
	for i := range users {
		addr := gofakeit.Address()
		users[i] = FakeUser{
			Name:     gofakeit.Name(),
			Username: gofakeit.Username(),
			Email:    gofakeit.Email(),
			Password: gofakeit.Password(true, true, true, true, false, 12),
			Card:     gofakeit.CreditCardNumber(nil),
			Address:  addr.Address,
		}
	}
	return users
}

// luhnValid checks the card number checksum.
func luhnValid(number string) bool {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 12 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func renderUsers(users []FakeUser) string {
	var b strings.Builder
	b.WriteString("👥 <b>Test users</b>\n\n")
	for i, u := range users {
		fmt.Fprintf(&b, "👤 <b>User %d</b>\n", i+1)
		fmt.Fprintf(&b, "├ Name: %s\n", escape(u.Name))
		fmt.Fprintf(&b, "├ Username: %s\n", escape(u.Username))
		fmt.Fprintf(&b, "├ Email: %s\n", escape(u.Email))
		fmt.Fprintf(&b, "├ Password: <code>%s</code>\n", escape(u.Password))
		fmt.Fprintf(&b, "├ Card: <code>%s</code>\n", escape(u.Card))
		fmt.Fprintf(&b, "└ Address: %s\n\n", escape(u.Address))
	}
	return strings.TrimRight(b.String(), "\n")
}

func testDataDefinition(cfg Config) *flow.Definition {
	prompt := fmt.Sprintf("👥 How many users do you need? (1-%d)", cfg.TestDataMax)
	return &flow.Definition{
		Name: "testdata",
		Steps: []flow.Step{
			{Field: "count", Prompt: prompt, Rule: flow.IntRange(1, cfg.TestDataMax)},
		},
		Render: func(c tele.Context, rec *flow.Record) error {
			users := generateUsers(rec.Int("count"))
			return tghelpers.SendHTMLChunks(c, renderUsers(users))
		},
	}
}
