package features

import (
	"testing"
	"time"
)

func TestParseTimeInputSeconds(t *testing.T) {
	v, ok := ParseTimeInput("1700000000")
	if !ok || !v.numeric {
		t.Fatalf("plain seconds should parse")
	}
	if v.seconds != 1700000000 || v.millis != 1700000000000 {
		t.Fatalf("unexpected values: %+v", v)
	}
}

func TestParseTimeInputMilliseconds(t *testing.T) {
	v, ok := ParseTimeInput("1700000000123")
	if !ok || !v.numeric {
		t.Fatalf("milliseconds should parse")
	}
	if v.seconds != 1700000000 || v.millis != 1700000000123 {
		t.Fatalf("unexpected values: %+v", v)
	}
}

func TestParseTimeInputCommaDecimal(t *testing.T) {
	v, ok := ParseTimeInput("1700000000,5")
	if !ok || v.millis != 1700000000500 {
		t.Fatalf("comma decimals should be accepted: %+v", v)
	}
}

func TestParseTimeInputDate(t *testing.T) {
	v, ok := ParseTimeInput("2023-11-14 22:13")
	if !ok || v.numeric {
		t.Fatalf("date input should parse as a date")
	}
	want := time.Date(2023, 11, 14, 22, 13, 0, 0, time.Local)
	if !v.parsed.Equal(want) {
		t.Fatalf("got %v, want %v", v.parsed, want)
	}
}

func TestParseTimeInputGarbage(t *testing.T) {
	if _, ok := ParseTimeInput("yesterday-ish"); ok {
		t.Fatalf("unrecognized input must not parse")
	}
}
