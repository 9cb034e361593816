package model

import (
	"bytes"
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLen = 200
	maxShortLen = 500
	maxTextLen  = 50000
)

// Number is a JSON number that also accepts a numeric string, as sent by
// HTML forms.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return NewValidationError("", "invalid string")
		}
		raw = strings.TrimSpace(raw)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Invalidf("", "%s is not a number", string(b))
	}
	*n = Number(f)
	return nil
}

// IsInt reports whether n has no fractional part.
func (n Number) IsInt() bool { return float64(n) == math.Trunc(float64(n)) }

// Date is a calendar date. It decodes YYYY-MM-DD or RFC3339 and encodes as
// YYYY-MM-DD. An empty string decodes to the zero Date.
type Date struct{ time.Time }

const dateLayout = "2006-01-02"

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return NewValidationError("", "must be a date string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return Invalidf("", "%q is not a date (want YYYY-MM-DD)", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

// String renders the date for display.
func (d *Date) String() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// Ingredients is a list of recipe ingredients. Besides a JSON array it accepts
// a single string with one ingredient per line or comma.
type Ingredients []string

func (in *Ingredients) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*in = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return NewValidationError("", "invalid string")
		}
		*in = strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' })
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return NewValidationError("", "must be a list of strings")
	}
	*in = list
	return nil
}

func (in Ingredients) normalized() Ingredients {
	out := make(Ingredients, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalizeDate(d *Date) *Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}

// ---- field rules ----

func required(field, v string, limit int) error {
	if v == "" {
		return NewValidationError(field, "is required")
	}
	return maxLen(field, v, limit)
}

func maxLen(field, v string, limit int) error {
	if utf8.RuneCountInString(v) > limit {
		return Invalidf(field, "exceeds %d characters", limit)
	}
	return nil
}

// rating must be an integer in [1,5] when present.
func rating(r *Number) error {
	if r == nil {
		return nil
	}
	if !r.IsInt() || *r < 1 || *r > 5 {
		return NewValidationError("rating", "must be an integer between 1 and 5")
	}
	return nil
}

func requiredNumber(field string, n *Number, min float64) error {
	if n == nil {
		return NewValidationError(field, "is required")
	}
	if float64(*n) < min {
		return Invalidf(field, "must be at least %g", min)
	}
	return nil
}

func httpURL(field, v string) error {
	if err := required(field, v, 2048); err != nil {
		return err
	}
	u, err := url.ParseRequestURI(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewValidationError(field, "must be an http or https URL")
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
