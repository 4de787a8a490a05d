package rssnews

import (
	"testing"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/utils"
)

func TestInWindow(t *testing.T) {
	q := vendor.Query{
		StartDate: time.Date(2025, 9, 14, 0, 0, 0, 0, utils.CST),
		EndDate:   time.Date(2025, 9, 21, 0, 0, 0, 0, utils.CST),
	}

	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2025, 9, 13, 23, 59, 0, 0, utils.CST), false},
		{time.Date(2025, 9, 14, 0, 0, 0, 0, utils.CST), true},
		{time.Date(2025, 9, 21, 23, 59, 59, 0, utils.CST), true},
		// The morning after the end date is outside the window even
		// though it is within 24h of the end-date midnight.
		{time.Date(2025, 9, 22, 0, 0, 0, 0, utils.CST), false},
		{time.Date(2025, 9, 22, 8, 30, 0, 0, utils.CST), false},
	}
	for _, tc := range cases {
		if got := inWindow(tc.at, q); got != tc.want {
			t.Errorf("inWindow(%s) = %v, want %v", tc.at, got, tc.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"<p>昆仑万维发布<b>公告</b></p>", "昆仑万维发布公告"},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMatchesAny(t *testing.T) {
	keys := []string{"300418.SZ", "昆仑万维", "300418"}

	if !matchesAny("快讯：300418 涨停", keys) {
		t.Error("bare code mention must match")
	}
	if !matchesAny("昆仑万维三季报", keys) {
		t.Error("company name mention must match")
	}
	if matchesAny("无关内容", keys) {
		t.Error("unrelated text must not match")
	}
	if matchesAny("anything", []string{""}) {
		t.Error("empty keys must not match everything")
	}
}
