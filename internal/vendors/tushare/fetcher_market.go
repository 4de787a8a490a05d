package tushare

import (
	"context"
	"sort"
	"time"

	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// --- DailyPrice fetcher ---

type dailyPriceFetcher struct {
	client *Client
}

func (f *dailyPriceFetcher) Vendor() string        { return vendorName }
func (f *dailyPriceFetcher) Method() vendor.Method { return vendor.MethodDailyPrice }

func (f *dailyPriceFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	data, err := f.client.call(ctx, "daily", map[string]any{
		"ts_code":    q.Symbol,
		"start_date": utils.CompactDate(q.StartDate),
		"end_date":   utils.CompactDate(q.EndDate),
	}, "ts_code,trade_date,open,high,low,close,vol,amount")
	if err != nil {
		return nil, err
	}

	bars := make([]models.Bar, 0, len(data.Items))
	for _, r := range data.rows() {
		date, err := time.ParseInLocation("20060102", r.str("trade_date"), utils.CST)
		if err != nil {
			continue
		}
		bars = append(bars, models.Bar{
			Date:   date,
			Open:   r.num("open"),
			High:   r.num("high"),
			Low:    r.num("low"),
			Close:  r.num("close"),
			Volume: r.num("vol"),
			Amount: r.num("amount"),
		})
	}

	// The API returns newest first.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return &vendor.Result{Data: bars}, nil
}

// --- CompanyInfo fetcher ---

type companyInfoFetcher struct {
	client *Client
}

func (f *companyInfoFetcher) Vendor() string        { return vendorName }
func (f *companyInfoFetcher) Method() vendor.Method { return vendor.MethodCompanyInfo }

func (f *companyInfoFetcher) Fetch(ctx context.Context, q vendor.Query) (*vendor.Result, error) {
	data, err := f.client.call(ctx, "stock_basic", map[string]any{
		"ts_code": q.Symbol,
	}, "ts_code,symbol,name,area,industry,market,list_date")
	if err != nil {
		return nil, err
	}

	rows := data.rows()
	if len(rows) == 0 {
		return nil, vendor.ErrNoData
	}
	r := rows[0]
	info := &models.CompanyInfo{
		Symbol:   r.str("ts_code"),
		Code:     r.str("symbol"),
		Name:     r.str("name"),
		Area:     r.str("area"),
		Industry: r.str("industry"),
		Market:   r.str("market"),
		ListDate: r.str("list_date"),
	}
	return &vendor.Result{Data: info}, nil
}
