package pairwise

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	params, err := Parse("os: mac, win; browser: chrome, firefox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	if params[0].Name != "os" || len(params[0].Values) != 2 {
		t.Fatalf("unexpected first parameter: %+v", params[0])
	}
	if params[1].Values[1] != "firefox" {
		t.Fatalf("value order must be preserved: %+v", params[1])
	}
}

func TestParseNewlineSeparated(t *testing.T) {
	params, err := Parse("os: mac, win\nbrowser: chrome, firefox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
}

func TestParseRejectsSingleParameter(t *testing.T) {
	if _, err := Parse("os: mac, win"); !errors.Is(err, ErrTooFewParameters) {
		t.Fatalf("expected ErrTooFewParameters, got %v", err)
	}
}

func TestParseRejectsMalformedEntry(t *testing.T) {
	for _, in := range []string{"os mac win; browser: chrome", ": a, b; browser: chrome", "os: ; browser: chrome"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestProductSize(t *testing.T) {
	params := []Parameter{
		{Name: "a", Values: []string{"1", "2", "3"}},
		{Name: "b", Values: []string{"x", "y"}},
		{Name: "c", Values: []string{"p", "q"}},
	}
	if got := ProductSize(params); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}
	if got := len(Product(params)); got != 12 {
		t.Fatalf("expected 12 combinations, got %d", got)
	}
}

func TestCoverContainsEveryPair(t *testing.T) {
	params := []Parameter{
		{Name: "os", Values: []string{"mac", "win", "linux"}},
		{Name: "browser", Values: []string{"chrome", "firefox"}},
		{Name: "lang", Values: []string{"en", "de"}},
	}
	cover := Cover(params)

	if len(cover) == 0 || len(cover) >= len(Product(params)) {
		t.Fatalf("cover size %d should be positive and below full product %d",
			len(cover), ProductSize(params))
	}

	for a := 0; a < len(params); a++ {
		for b := a + 1; b < len(params); b++ {
			for _, av := range params[a].Values {
				for _, bv := range params[b].Values {
					found := false
					for _, combo := range cover {
						if combo[a] == av && combo[b] == bv {
							found = true
							break
						}
					}
					if !found {
						t.Fatalf("pair (%s=%s, %s=%s) not covered",
							params[a].Name, av, params[b].Name, bv)
					}
				}
			}
		}
	}
}

func TestCoverTwoParamsEqualsProduct(t *testing.T) {
	params := []Parameter{
		{Name: "os", Values: []string{"mac", "win"}},
		{Name: "browser", Values: []string{"chrome", "firefox"}},
	}
	if got := len(Cover(params)); got != 4 {
		t.Fatalf("two parameters need the full product, got %d", got)
	}
}
