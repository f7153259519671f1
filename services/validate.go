package services

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// PublicError carries a message that is safe to show to the shopper as-is.
type PublicError struct {
	Msg string
}

func (e *PublicError) Error() string { return e.Msg }

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\(\d{3}\) \d{3}-\d{4}$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	last4Re = regexp.MustCompile(`^\d{4}$`)
)

func ValidEmail(s string) bool { return emailRe.MatchString(s) }

func ValidPhone(s string) bool { return phoneRe.MatchString(s) }

func ValidZip(s string) bool { return zipRe.MatchString(s) }

// FormatPhone turns ten raw digits (punctuation ignored) into "(555) 123-4567".
// Anything else is returned trimmed but otherwise unchanged.
func FormatPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	var digits []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == ' ' || c == '-' || c == '(' || c == ')' || c == '.':
		default:
			return raw
		}
	}
	if len(digits) != 10 {
		return raw
	}
	d := string(digits)
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
