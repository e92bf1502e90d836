package flow

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Validation error codes surfaced in logs and used by tests.
const (
	CodeEmptyInput    = "EMPTY_INPUT"
	CodeInvalidChoice = "INVALID_CHOICE"
	CodeEmptyList     = "EMPTY_LIST"
	CodeNotANumber    = "NOT_A_NUMBER"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeInvalidURL    = "INVALID_URL"
)

// ValidationError describes a rejected answer. The message is user facing
// and the code is stable for logging.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(code, format string, args ...any) error {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Rule validates one answer and returns the value to store in the
// conversation record.
type Rule func(input string) (any, error)

// NonEmpty accepts any non-blank text.
func NonEmpty() Rule {
	return func(input string) (any, error) {
		s := strings.TrimSpace(input)
		if s == "" {
			return nil, invalid(CodeEmptyInput, "This field cannot be empty, please try again.")
		}
		return s, nil
	}
}

// Choice accepts exactly one of the given options. Matching is
// case-sensitive: the options arrive on keyboard buttons, so any other
// spelling is typed input that missed the set.
func Choice(options ...string) Rule {
	return func(input string) (any, error) {
		s := strings.TrimSpace(input)
		for _, opt := range options {
			if s == opt {
				return opt, nil
			}
		}
		return nil, invalid(CodeInvalidChoice,
			"Please pick one of the options: %s.", strings.Join(options, ", "))
	}
}

var ordinalRe = regexp.MustCompile(`^\s*\d+\s*[.)]\s*`)

// List parses a delimited list. Items are split on semicolons when present,
// otherwise on newlines, otherwise the whole message is a single item.
// Leading ordinal markers like "1." or "2)" are stripped from each item.
func List() Rule {
	return func(input string) (any, error) {
		raw := strings.TrimSpace(input)
		var parts []string
		switch {
		case strings.Contains(raw, ";"):
			parts = strings.Split(raw, ";")
		case strings.Contains(raw, "\n"):
			parts = strings.Split(raw, "\n")
		default:
			parts = []string{raw}
		}

		items := make([]string, 0, len(parts))
		for _, p := range parts {
			item := strings.TrimSpace(ordinalRe.ReplaceAllString(p, ""))
			if item != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return nil, invalid(CodeEmptyList, "The list is empty, please send at least one item.")
		}
		return items, nil
	}
}

// IntRange accepts an integer between min and max inclusive.
func IntRange(min, max int) Rule {
	return func(input string) (any, error) {
		s := strings.TrimSpace(input)
		if s == "" {
			return nil, invalid(CodeEmptyInput, "This field cannot be empty, please try again.")
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, invalid(CodeNotANumber, "Please send a whole number.")
		}
		if n < min || n > max {
			return nil, invalid(CodeOutOfRange, "The number must be between %d and %d.", min, max)
		}
		return n, nil
	}
}

// URL accepts an absolute http(s) URL. A missing scheme defaults to https.
func URL() Rule {
	return func(input string) (any, error) {
		s := strings.TrimSpace(input)
		if s == "" {
			return nil, invalid(CodeEmptyInput, "This field cannot be empty, please try again.")
		}
		return NormalizeURL(s)
	}
}

// NormalizeURL prepends https:// when no scheme is present and verifies the
// result parses with a non-empty host.
func NormalizeURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", invalid(CodeInvalidURL, "That does not look like a valid URL.")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", invalid(CodeInvalidURL, "That does not look like a valid URL.")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", invalid(CodeInvalidURL, "Only http and https URLs are supported.")
	}
	return u.String(), nil
}
