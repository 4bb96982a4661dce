package clockstate

import (
	"errors"
	"fmt"
	"time"

	clockerrors "github.com/go-drift/clockface/pkg/errors"
)

const (
	dateLayout    = "2006-01-02"
	timeLayout    = "15:04:05"
	timeLayoutMin = "15:04"
)

// Date is a calendar date without a time zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// String returns the ISO-8601 form YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, &clockerrors.ParseError{DataType: "date", Input: s, Err: err}
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// TimeOfDay is a wall-clock time with second precision.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// String returns the ISO-8601 form HH:MM:SS.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// ParseTimeOfDay parses an ISO-8601 local time. HH:MM:SS and HH:MM are
// accepted; a fractional second is accepted and dropped. Every field must
// have two digits.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if !isTimeShape(s) {
		return TimeOfDay{}, &clockerrors.ParseError{DataType: "time of day", Input: s, Err: errTimeShape}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		var errMin error
		t, errMin = time.Parse(timeLayoutMin, s)
		if errMin != nil {
			return TimeOfDay{}, &clockerrors.ParseError{DataType: "time of day", Input: s, Err: err}
		}
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

var errTimeShape = errors.New("want HH:MM, HH:MM:SS or HH:MM:SS.fraction")

// isTimeShape reports whether s is laid out as HH:MM, HH:MM:SS or
// HH:MM:SS followed by a '.' or ',' fraction. time.Parse alone accepts a
// one-digit hour.
func isTimeShape(s string) bool {
	twoDigits := func(i int) bool {
		return i+2 <= len(s) && isDigit(s[i]) && isDigit(s[i+1])
	}
	if !twoDigits(0) || len(s) < 5 || s[2] != ':' || !twoDigits(3) {
		return false
	}
	if len(s) == 5 {
		return true
	}
	if s[5] != ':' || !twoDigits(6) {
		return false
	}
	if len(s) == 8 {
		return true
	}
	if s[8] != '.' && s[8] != ',' || len(s) == 9 {
		return false
	}
	for i := 9; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

// FromTime converts an instant to the date and time of day on its own
// location's calendar.
func FromTime(t time.Time) (Date, TimeOfDay) {
	year, month, day := t.Date()
	hour, minute, second := t.Clock()
	return Date{Year: year, Month: month, Day: day},
		TimeOfDay{Hour: hour, Minute: minute, Second: second}
}
