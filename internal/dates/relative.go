// Package dates resolves the date expressions used by modifiedafter and
// modifiedbefore criteria.
//
// An expression is either "now", an absolute date/time, or
// "<base> <+|-> <amount> <unit>" where base is itself "now" or an absolute date.
// Unparseable input never fails loudly: it resolves to an invalid Timestamp and
// every comparison against an invalid Timestamp is false.
package dates

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"
)

var (
	offsetRegex = regexp.MustCompile(`(?i)^(.+?)\s+([+-])\s+(\d+)\s+(second|minute|hour|day|week|month|year)s?$`)

	// the only numeric phrase handed to naturaldate, e.g. "3 days ago"
	agoRegex   = regexp.MustCompile(`(?i)^\d+\s+(second|minute|hour|day|week|month|year)s?\s+ago$`)
	digitRegex = regexp.MustCompile(`\d`)
)

// Calendar offsets beyond this many years resolve to Invalid
const maxYearOffset = 10000

// Layouts accepted for absolute dates, most specific first.
var absoluteLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Timestamp is a resolved point in time. The zero value is invalid.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Invalid is the result of an unparseable expression
var Invalid = Timestamp{}

// At wraps a concrete time as a valid Timestamp
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// After reports whether t is strictly after u. False if either is invalid.
func (t Timestamp) After(u Timestamp) bool {
	return t.Valid && u.Valid && t.Time.After(u.Time)
}

// Before reports whether t is strictly before u. False if either is invalid.
func (t Timestamp) Before(u Timestamp) bool {
	return t.Valid && u.Valid && t.Time.Before(u.Time)
}

func (t Timestamp) String() string {
	if !t.Valid {
		return "Invalid Date"
	}
	return t.Time.Format(time.RFC3339)
}

// Resolver evaluates date expressions against a clock and a location.
// Absolute dates without a zone are read in Location.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

// NewResolver returns a resolver on the wall clock in the local zone
func NewResolver() *Resolver {
	return &Resolver{Now: time.Now, Location: time.Local}
}

func (r *Resolver) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now().In(r.location())
	}
	return r.Now().In(r.location())
}

func (r *Resolver) location() *time.Location {
	if r == nil || r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Resolve evaluates expr
func (r *Resolver) Resolve(expr string) Timestamp {
	expr = strings.TrimSpace(expr)
	if strings.EqualFold(expr, "now") {
		return At(r.now())
	}

	if m := offsetRegex.FindStringSubmatch(expr); m != nil {
		base := r.Resolve(m[1])
		if !base.Valid {
			return Invalid
		}
		amount, err := strconv.Atoi(m[3])
		if err != nil {
			return Invalid
		}
		if m[2] == "-" {
			amount = -amount
		}
		t, ok := addUnit(base.Time, amount, strings.ToLower(m[4]))
		if !ok {
			return Invalid
		}
		return At(t)
	}

	return r.ParseAbsolute(expr)
}

// ParseAbsolute parses a calendar date or date-time. Natural language such as
// "yesterday" or "last week" is accepted as a fallback.
func (r *Resolver) ParseAbsolute(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Invalid
	}

	loc := r.location()
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return At(t)
		}
	}

	return r.parseNatural(s)
}

func (r *Resolver) parseNatural(s string) Timestamp {
	// naturaldate reads stray numbers as times of day
	if digitRegex.MatchString(s) && !agoRegex.MatchString(s) {
		return Invalid
	}

	ref := r.now()
	t, err := naturaldate.Parse(s, ref)
	if err != nil {
		return Invalid
	}

	// naturaldate hands back the reference time for input it did not understand
	if t.Equal(ref) {
		switch strings.ToLower(s) {
		case "right now", "currently":
			return At(t)
		}
		return Invalid
	}
	return At(t)
}

// addUnit shifts t by amount units. ok is false when the shift does not fit
// in a time.Duration or exceeds maxYearOffset years.
func addUnit(t time.Time, amount int, unit string) (time.Time, bool) {
	switch unit {
	case "second":
		return addDuration(t, amount, time.Second)
	case "minute":
		return addDuration(t, amount, time.Minute)
	case "hour":
		return addDuration(t, amount, time.Hour)
	case "day":
		if !within(amount, maxYearOffset*366) {
			return t, false
		}
		return t.AddDate(0, 0, amount), true
	case "week":
		if !within(amount, maxYearOffset*53) {
			return t, false
		}
		return t.AddDate(0, 0, 7*amount), true
	case "month":
		if !within(amount, maxYearOffset*12) {
			return t, false
		}
		return t.AddDate(0, amount, 0), true
	case "year":
		if !within(amount, maxYearOffset) {
			return t, false
		}
		return t.AddDate(amount, 0, 0), true
	}
	return t, false
}

func addDuration(t time.Time, amount int, unit time.Duration) (time.Time, bool) {
	if !within(amount, int(math.MaxInt64/int64(unit))) {
		return t, false
	}
	return t.Add(time.Duration(amount) * unit), true
}

func within(amount, limit int) bool {
	return amount >= -limit && amount <= limit
}
