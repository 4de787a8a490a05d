package googlenews

import (
	"testing"
	"time"

	"github.com/arhow/tradingagents/pkg/utils"
)

func TestParseWhenAbsolute(t *testing.T) {
	anchor := time.Date(2025, 9, 21, 0, 0, 0, 0, utils.CST)

	cases := []struct {
		in   string
		want string
	}{
		{"Sep 19, 2025", "2025-09-19"},
		{"2025年9月19日", "2025-09-19"},
		{"2025-09-19", "2025-09-19"},
	}
	for _, tc := range cases {
		got := parseWhen(tc.in, anchor)
		if utils.FormatDate(got) != tc.want {
			t.Errorf("parseWhen(%q) = %v, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseWhenRelative(t *testing.T) {
	anchor := time.Date(2025, 9, 21, 12, 0, 0, 0, utils.CST)

	if got := parseWhen("2 days ago", anchor); utils.FormatDate(got) != "2025-09-19" {
		t.Errorf("2 days ago = %v", got)
	}
	if got := parseWhen("3小时前", anchor); !got.Equal(anchor.Add(-3 * time.Hour)) {
		t.Errorf("3小时前 = %v", got)
	}
	if got := parseWhen("gibberish", anchor); !got.IsZero() {
		t.Errorf("unparsable input must yield zero time, got %v", got)
	}
}
