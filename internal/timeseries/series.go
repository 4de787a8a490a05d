// Package timeseries persists per-symbol daily price series as CSV
// files keyed by (symbol, start date, end date). A file, once written,
// is authoritative: it is never re-validated against the remote source,
// never mutated, and never evicted automatically.
package timeseries

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/arhow/tradingagents/pkg/models"
	"github.com/arhow/tradingagents/pkg/utils"
)

// Series is a daily price series ordered ascending by date.
type Series []models.Bar

var csvHeader = []string{"date", "open", "high", "low", "close", "volume", "amount"}

// WriteCSV writes the series with the canonical header. Dates are
// formatted YYYY-MM-DD so files diff and sort cleanly.
func (s Series) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, bar := range s {
		rec := []string{
			utils.FormatDate(bar.Date),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			formatFloat(bar.Volume),
			formatFloat(bar.Amount),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", utils.FormatDate(bar.Date), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a series written by WriteCSV. Rows must be well formed
// and dates must ascend; a violation means the file was not produced by
// this cache and is rejected.
func ReadCSV(r io.Reader) (Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("unexpected CSV header column %d: got %q, want %q", i, header[i], want)
		}
	}

	var series Series
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		date, err := utils.ParseDate(rec[0])
		if err != nil {
			return nil, err
		}
		if n := len(series); n > 0 && !series[n-1].Date.Before(date) {
			return nil, fmt.Errorf("dates not ascending at %s", rec[0])
		}

		bar := models.Bar{Date: date}
		for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &bar.Amount} {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %s column %s: %w", rec[0], csvHeader[i+1], err)
			}
			*dst = v
		}
		series = append(series, bar)
	}
	return series, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
