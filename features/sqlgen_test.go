package features

import (
	"strings"
	"testing"
)

func TestBuildSQLSelect(t *testing.T) {
	got := BuildSQL("SELECT", "users", []string{"id", "name"}, "age > 18", 10)
	want := "SELECT id, name\nFROM users\nWHERE age > 18\nLIMIT 10;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = BuildSQL("SELECT", "users", []string{"*"}, "", 0)
	if got != "SELECT *\nFROM users;" {
		t.Fatalf("unexpected bare select: %q", got)
	}
}

func TestBuildSQLInsertSkipsConditions(t *testing.T) {
	got := BuildSQL("INSERT", "users", []string{"id", "name"}, "ignored", 5)
	want := "INSERT INTO users (id, name)\nVALUES (?, ?);"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBuildSQLUpdateAndDelete(t *testing.T) {
	got := BuildSQL("UPDATE", "users", []string{"name", "email"}, "id = 1", 0)
	want := "UPDATE users\nSET name = ?, email = ?\nWHERE id = 1;"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = BuildSQL("DELETE", "users", nil, "id = 1", 0)
	if got != "DELETE FROM users\nWHERE id = 1;" {
		t.Fatalf("unexpected delete: %q", got)
	}
	got = BuildSQL("DELETE", "users", nil, "", 0)
	if got != "DELETE FROM users;" {
		t.Fatalf("unconditioned delete: %q", got)
	}
}

func TestSplitColumns(t *testing.T) {
	got := splitColumns(" id, name , email ")
	if strings.Join(got, "|") != "id|name|email" {
		t.Fatalf("unexpected columns: %v", got)
	}
	if got := splitColumns("  "); len(got) != 1 || got[0] != "*" {
		t.Fatalf("blank input should default to *, got %v", got)
	}
}

func TestLimitRule(t *testing.T) {
	rule := limitRule()
	if v, err := rule("25"); err != nil || v != 25 {
		t.Fatalf("25 should be accepted: %v, %v", v, err)
	}
	if v, err := rule("no limit"); err != nil || v != 0 {
		t.Fatalf("the no-limit label should yield zero: %v, %v", v, err)
	}
	if _, err := rule("-3"); err == nil {
		t.Fatalf("negative limit must be rejected")
	}
	if _, err := rule("ten"); err == nil {
		t.Fatalf("non-numeric limit must be rejected")
	}
}
