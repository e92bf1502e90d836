package features

import (
	"strings"
	"testing"
)

func TestLuhnValid(t *testing.T) {
	valid := []string{"4539578763621486", "4111111111111111", "5500005555555559"}
	for _, n := range valid {
		if !luhnValid(n) {
			t.Fatalf("%s should pass the checksum", n)
		}
	}
	if luhnValid("4111111111111112") {
		t.Fatalf("broken checksum should fail")
	}
	if luhnValid("123") {
		t.Fatalf("too-short numbers should fail")
	}
}

func TestGenerateUsers(t *testing.T) {
	users := generateUsers(5)
	if len(users) != 5 {
		t.Fatalf("expected 5 users, got %d", len(users))
	}
	for i, u := range users {
		if u.Name == "" || u.Email == "" || u.Username == "" || u.Address == "" {
			t.Fatalf("user %d has empty fields: %+v", i, u)
		}
		if len(u.Password) < 12 {
			t.Fatalf("user %d password too short: %q", i, u.Password)
		}
		if !luhnValid(u.Card) {
			t.Fatalf("user %d card fails checksum: %q", i, u.Card)
		}
		if !strings.Contains(u.Email, "@") {
			t.Fatalf("user %d email malformed: %q", i, u.Email)
		}
	}
}

func TestRenderUsersEscapes(t *testing.T) {
	out := renderUsers([]FakeUser{{
		Name:     "A <b>Tag</b>",
		Username: "user1",
		Email:    "a@example.com",
		Password: "p&ssword12345",
		Card:     "4111111111111111",
		Address:  "1 Main St",
	}})
	if strings.Contains(out, "<b>Tag</b>") {
		t.Fatalf("user content must be escaped: %q", out)
	}
	if !strings.Contains(out, "&amp;") {
		t.Fatalf("ampersand should be escaped: %q", out)
	}
}
