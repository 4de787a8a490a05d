// Package utils provides time and date helpers for the China A-share
// market calendar.
package utils

import (
	"fmt"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD date format used throughout the
// data layer (cache filenames, query parameters, report headers).
const DateLayout = "2006-01-02"

// CST is the China Standard Time location (UTC+8, Asia/Shanghai).
var CST *time.Location

func init() {
	var err error
	CST, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		// Fallback: fixed zone when the tz database is not available.
		CST = time.FixedZone("CST", 8*60*60)
	}
}

// NowCST returns the current time in CST.
func NowCST() time.Time {
	return time.Now().In(CST)
}

// Day truncates a time to midnight of its calendar date, preserving the
// location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar date,
// ignoring time-of-day and timezone fractions.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ParseDate parses a YYYY-MM-DD date string in CST.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, CST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CompactDate formats a time as YYYYMMDD, the format the Tushare API
// expects.
func CompactDate(t time.Time) string {
	return t.Format("20060102")
}

// IsWeekend reports whether the date is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns each calendar day from start to end inclusive.
func DaysBetween(start, end time.Time) []time.Time {
	var days []time.Time
	for d := Day(start); !d.After(Day(end)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// DateStringVariants returns the free-text date spellings commonly seen
// on Chinese platforms for one day: "2025-09-21", "2025年09月21日",
// "09-21", and "9月21日". Matching all four maximizes hit rate against
// unstructured timestamps.
func DateStringVariants(t time.Time) []string {
	return []string{
		t.Format(DateLayout),
		t.Format("2006年01月02日"),
		t.Format("01-02"),
		fmt.Sprintf("%d月%d日", int(t.Month()), t.Day()),
	}
}
