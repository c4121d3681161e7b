package core

import (
	"fmt"
	"time"
)

// Month is a calendar month in a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// NewMonth returns a normalized Month; out-of-range months roll into the
// neighbouring years.
func NewMonth(year int, month time.Month) Month {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthOf returns the Month in which t occurs in t's location.
func MonthOf(t time.Time) Month {
	year, month, _ := t.Date()
	return Month{Year: year, Month: month}
}

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String returns the month formatted as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Next returns the following month, rolling December into January.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Before(o Month) bool {
	return m.Year < o.Year || (m.Year == o.Year && m.Month < o.Month)
}

func (m Month) After(o Month) bool {
	return o.Before(m)
}

func (m Month) Equal(o Month) bool {
	return m.Year == o.Year && m.Month == o.Month
}

// Contains reports whether t falls in m, judged in t's location.
func (m Month) Contains(t time.Time) bool {
	return MonthOf(t).Equal(m)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Date returns noon UTC on the given day of m. Days past the end of the
// month are clamped to its last day, so day 31 lands on Feb 28 or 29.
func (m Month) Date(day int) time.Time {
	if last := m.Days(); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(m.Year, m.Month, day, 12, 0, 0, 0, time.UTC)
}

// December returns the last month of the given year.
func December(year int) Month {
	return Month{Year: year, Month: time.December}
}
