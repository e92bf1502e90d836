package flow

import (
	"errors"
	"reflect"
	"testing"
)

func code(t *testing.T, err error) string {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return verr.Code
}

func TestNonEmpty(t *testing.T) {
	rule := NonEmpty()
	if _, err := rule("   "); code(t, err) != CodeEmptyInput {
		t.Fatalf("blank input should fail with EMPTY_INPUT")
	}
	v, err := rule("  hello ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("expected trimmed value, got %q", v)
	}
}

func TestChoiceMatchesExactly(t *testing.T) {
	rule := Choice("Critical", "Medium", "Minor")
	v, err := rule(" Critical ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "Critical" {
		t.Fatalf("expected accepted option, got %q", v)
	}
	if _, err := rule("critical"); code(t, err) != CodeInvalidChoice {
		t.Fatalf("wrong case should fail with INVALID_CHOICE")
	}
	if _, err := rule("Huge"); code(t, err) != CodeInvalidChoice {
		t.Fatalf("unknown option should fail with INVALID_CHOICE")
	}
}

func TestListParsing(t *testing.T) {
	rule := List()

	cases := []struct {
		in   string
		want []string
	}{
		{"1. a; 2. b;3.c", []string{"a", "b", "c"}},
		{"open app\npress login\nsee error", []string{"open app", "press login", "see error"}},
		{"single step", []string{"single step"}},
		{"1) first; 2) second", []string{"first", "second"}},
		{"a;;b; ", []string{"a", "b"}},
	}
	for _, tc := range cases {
		v, err := rule(tc.in)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if !reflect.DeepEqual(v, tc.want) {
			t.Fatalf("%q: got %v, want %v", tc.in, v, tc.want)
		}
	}

	if _, err := rule(" ; ;"); code(t, err) != CodeEmptyList {
		t.Fatalf("empty list should fail with EMPTY_LIST")
	}
}

func TestIntRange(t *testing.T) {
	rule := IntRange(1, 50)

	if v, err := rule("25"); err != nil || v != 25 {
		t.Fatalf("25 should be accepted, got %v, %v", v, err)
	}
	if _, err := rule("0"); code(t, err) != CodeOutOfRange {
		t.Fatalf("0 should fail with OUT_OF_RANGE")
	}
	if _, err := rule("51"); code(t, err) != CodeOutOfRange {
		t.Fatalf("51 should fail with OUT_OF_RANGE")
	}
	if _, err := rule("abc"); code(t, err) != CodeNotANumber {
		t.Fatalf("abc should fail with NOT_A_NUMBER")
	}
}

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("api.example.com/users?limit=5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://api.example.com/users?limit=5" {
		t.Fatalf("missing scheme should default to https, got %q", got)
	}

	got, err = NormalizeURL("http://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "http://example.com" {
		t.Fatalf("explicit scheme must be preserved, got %q", got)
	}

	if _, err := NormalizeURL("https://"); code(t, err) != CodeInvalidURL {
		t.Fatalf("scheme without host should fail with INVALID_URL")
	}
	if _, err := NormalizeURL("ftp://example.com"); code(t, err) != CodeInvalidURL {
		t.Fatalf("non-http scheme should fail with INVALID_URL")
	}
}
