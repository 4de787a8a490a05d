package tushare

import (
	"strings"
	"testing"

	"github.com/arhow/tradingagents/internal/vendor"
)

func TestRowsMapFieldsByName(t *testing.T) {
	data := &apiData{
		Fields: []string{"ts_code", "trade_date", "close", "vol"},
		Items: [][]any{
			{"300418.SZ", "20250919", 38.5, 120000.0},
			{"300418.SZ", "20250918", 37.9, 98000.0},
		},
	}

	rows := data.rows()
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].str("trade_date") != "20250919" {
		t.Errorf("trade_date = %q", rows[0].str("trade_date"))
	}
	if rows[1].num("close") != 37.9 {
		t.Errorf("close = %v", rows[1].num("close"))
	}
	if rows[0].str("missing") != "" || rows[0].num("missing") != 0 {
		t.Error("missing fields must yield zero values")
	}
}

func TestIsRateLimitMsg(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"抱歉，您每分钟最多访问该接口50次", true},
		{"抱歉，您每天最多访问该接口20000次", true},
		{"抱歉，您没有接口访问权限", false},
		{"参数错误", false},
	}
	for _, tc := range cases {
		if got := isRateLimitMsg(tc.msg); got != tc.want {
			t.Errorf("isRateLimitMsg(%q) = %v, want %v", tc.msg, got, tc.want)
		}
	}
}

func TestRelated(t *testing.T) {
	q := vendor.Query{Symbol: "300418.SZ", CompanyName: "昆仑万维"}

	cases := []struct {
		title, content string
		want           bool
	}{
		{"昆仑万维发布公告", "", true},
		{"三季报点评", "300418 业绩超预期", true},
		{"市场快讯", "提及 300418.SZ 的讨论", true},
		{"无关新闻", "别的公司", false},
	}
	for _, tc := range cases {
		if got := related(q, tc.title, tc.content); got != tc.want {
			t.Errorf("related(%q, %q) = %v, want %v", tc.title, tc.content, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("市", maxContentRunes+10)
	got := truncate(long)
	if want := maxContentRunes + 3; len([]rune(got)) != want {
		t.Fatalf("truncated to %d runes, want %d", len([]rune(got)), want)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated content must end with ellipsis")
	}
	if truncate("短文") != "短文" {
		t.Error("short content must pass through unchanged")
	}
}

func TestFetchersCoverMethods(t *testing.T) {
	c := NewClient(nil, "token")
	methods := map[vendor.Method]bool{}
	for _, f := range c.Fetchers() {
		if f.Vendor() != "tushare" {
			t.Errorf("vendor = %q", f.Vendor())
		}
		methods[f.Method()] = true
	}
	for _, m := range []vendor.Method{
		vendor.MethodDailyPrice, vendor.MethodCompanyInfo,
		vendor.MethodNews, vendor.MethodGlobalNews,
	} {
		if !methods[m] {
			t.Errorf("missing fetcher for %s", m)
		}
	}
}
