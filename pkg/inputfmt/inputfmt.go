// Package inputfmt converts values to and from the text of native form
// controls.
//
// Every function is pure. "Local time" is always an explicit
// *time.Location; a nil location means time.Local.
package inputfmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Control text layouts.
const (
	LayoutDate           = "2006-01-02"
	LayoutMonth          = "2006-01"
	LayoutTime           = "15:04"
	LayoutTimeSeconds    = "15:04:05"
	LayoutDateTime       = "2006-01-02T15:04"
	LayoutDateTimeSecond = "2006-01-02T15:04:05"
)

var (
	// ErrInvalidWeek is returned for malformed week strings.
	ErrInvalidWeek = errors.New("inputfmt: invalid week string")

	// ErrWeekRange is returned for week numbers outside 1..53 or weeks the
	// year does not have.
	ErrWeekRange = errors.New("inputfmt: week out of range")

	// ErrUnsupportedControl is returned by ParseControl for control types
	// without a date representation.
	ErrUnsupportedControl = errors.New("inputfmt: control has no date value")
)

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// ShowSeconds reports whether a control's step attribute asks for second
// precision (a step below 60).
func ShowSeconds(step string) bool {
	if step == "" {
		return false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(step), 64)
	return err == nil && f < 60
}

// Format renders v for an input of type controlType. ok is false when the
// value must not be written: a datetime-local timestamp that is not
// positive, or a date-like value that cannot be interpreted. In that case
// the control keeps its current text.
func Format(controlType string, v any, step string, loc *time.Location) (text string, ok bool) {
	switch controlType {
	case "datetime-local":
		t, ok := ToTime(v, loc)
		if !ok || t.UnixMilli() <= 0 {
			return "", false
		}
		return FormatDateTimeLocal(t, ShowSeconds(step), loc), true
	case "month":
		t, ok := ToTime(v, loc)
		if !ok {
			return "", false
		}
		return FormatMonth(t), true
	case "week":
		t, ok := ToTime(v, loc)
		if !ok {
			s, isString := v.(string)
			if !isString {
				return "", false
			}
			parsed, err := ParseWeek(s, loc)
			if err != nil {
				return "", false
			}
			t = parsed
		}
		return FormatWeek(t, loc), true
	case "date":
		t, ok := ToTime(v, loc)
		if !ok {
			return "", false
		}
		return FormatDate(t), true
	case "time":
		t, ok := ToTime(v, loc)
		if !ok {
			return "", false
		}
		return FormatTime(t, ShowSeconds(step)), true
	default:
		return String(v), true
	}
}

// FormatDateTimeLocal renders t as a datetime-local value in loc.
func FormatDateTimeLocal(t time.Time, seconds bool, loc *time.Location) string {
	t = t.In(location(loc))
	if seconds {
		return t.Format(LayoutDateTimeSecond)
	}
	return t.Format(LayoutDateTime)
}

// FormatMonth renders t as YYYY-MM in UTC.
func FormatMonth(t time.Time) string {
	return t.UTC().Format(LayoutMonth)
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(LayoutDate)
}

// FormatTime renders the UTC time of day of t.
func FormatTime(t time.Time, seconds bool) string {
	if seconds {
		return t.UTC().Format(LayoutTimeSeconds)
	}
	return t.UTC().Format(LayoutTime)
}

// FormatWeek renders the ISO-8601 week of t's calendar date in loc as
// YYYY-Www. The year is the ISO week-numbering year.
func FormatWeek(t time.Time, loc *time.Location) string {
	local := t.In(location(loc))
	date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	year, week := date.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeek returns midnight in loc of the Monday starting ISO week
// "YYYY-Www".
func ParseWeek(s string, loc *time.Location) (time.Time, error) {
	yearPart, weekPart, found := strings.Cut(strings.TrimSpace(s), "-W")
	if !found {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidWeek, s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrInvalidWeek, yearPart)
	}
	week, err := strconv.Atoi(weekPart)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: week %q", ErrInvalidWeek, weekPart)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("%w: ISO 8601 weeks are numbered from 1 to 53", ErrWeekRange)
	}

	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	if y, w := monday.ISOWeek(); y != year || w != week {
		return time.Time{}, fmt.Errorf("%w: %d has no ISO week %d", ErrWeekRange, year, week)
	}
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, location(loc)), nil
}

// ToTime interprets v as an instant. It accepts time.Time, *time.Time,
// Unix milliseconds as any integer or float, and strings in RFC 3339,
// date, month and time-of-day (UTC) and datetime-local (in loc) layouts.
func ToTime(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case int:
		return time.UnixMilli(int64(t)), true
	case int32:
		return time.UnixMilli(int64(t)), true
	case int64:
		return time.UnixMilli(t), true
	case uint64:
		return time.UnixMilli(int64(t)), true
	case float32:
		return millis(float64(t))
	case float64:
		return millis(t)
	case string:
		return parseTimeString(t, loc)
	}
	return time.Time{}, false
}

func millis(f float64) (time.Time, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(f)), true
}

func parseTimeString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range []string{LayoutDate, LayoutMonth, LayoutTimeSeconds, LayoutTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{LayoutDateTimeSecond, LayoutDateTime, "2006-01-02T15:04:05.000"} {
		if t, err := time.ParseInLocation(layout, s, location(loc)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseControl converts the text of a date-like control back into an
// instant, the way valueAsDate does. datetime-local text is read in loc;
// the other types are UTC.
func ParseControl(controlType, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	var (
		t   time.Time
		err error
	)
	switch controlType {
	case "date":
		t, err = time.Parse(LayoutDate, value)
	case "month":
		t, err = time.Parse(LayoutMonth, value)
	case "week":
		t, err = ParseWeek(value, time.UTC)
	case "time":
		t, err = time.Parse(LayoutTimeSeconds, value)
		if err != nil {
			t, err = time.Parse(LayoutTime, value)
		}
		if err == nil {
			t = time.Date(1970, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
		}
	case "datetime-local":
		t, err = time.ParseInLocation(LayoutDateTimeSecond, value, location(loc))
		if err != nil {
			t, err = time.ParseInLocation(LayoutDateTime, value, location(loc))
		}
	default:
		parsed, ok := parseTimeString(value, loc)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: %s", ErrUnsupportedControl, controlType)
		}
		return parsed, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("inputfmt: parse %s value %q: %w", controlType, value, err)
	}
	return t, nil
}

// IsDateControl reports whether controlType holds a date-like value.
func IsDateControl(controlType string) bool {
	switch controlType {
	case "datetime-local", "date", "time", "month", "week":
		return true
	}
	return false
}

// String is the shared value to text conversion: nil is empty, floats are
// printed without exponent noise and times as RFC 3339.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	case error:
		return t.Error()
	default:
		return fmt.Sprint(v)
	}
}
