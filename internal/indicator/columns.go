// Package indicator computes named technical indicators over a daily
// price series and answers point-in-time lookups with trading-calendar
// awareness. Indicator columns are always derived from the whole series
// because moving averages, MACD, and band indicators need preceding
// history; positions without enough history hold NaN.
package indicator

import (
	"math"

	"github.com/arhow/tradingagents/pkg/models"
)

// columnFunc derives one indicator column from a price series. The
// returned slice is index-aligned with the input bars.
type columnFunc func(bars []models.Bar) []float64

var columns = map[string]columnFunc{
	"close_50_sma":  func(b []models.Bar) []float64 { return smaSeries(closes(b), 50) },
	"close_200_sma": func(b []models.Bar) []float64 { return smaSeries(closes(b), 200) },
	"close_10_ema":  func(b []models.Bar) []float64 { return emaSeries(closes(b), 10) },
	"macd":          func(b []models.Bar) []float64 { return macdSeries(closes(b)).macd },
	"macds":         func(b []models.Bar) []float64 { return macdSeries(closes(b)).signal },
	"macdh":         func(b []models.Bar) []float64 { return macdSeries(closes(b)).histogram },
	"rsi":           func(b []models.Bar) []float64 { return rsiSeries(closes(b), 14) },
	"boll":          func(b []models.Bar) []float64 { return bollSeries(closes(b), 20, 0) },
	"boll_ub":       func(b []models.Bar) []float64 { return bollSeries(closes(b), 20, 2) },
	"boll_lb":       func(b []models.Bar) []float64 { return bollSeries(closes(b), 20, -2) },
	"atr":           func(b []models.Bar) []float64 { return atrSeries(b, 14) },
	"vwma":          func(b []models.Bar) []float64 { return vwmaSeries(b, 14) },
	"mfi":           func(b []models.Bar) []float64 { return mfiSeries(b, 14) },
}

func closes(bars []models.Bar) []float64 {
	vals := make([]float64, len(bars))
	for i, b := range bars {
		vals[i] = b.Close
	}
	return vals
}

func nanSlice(n int) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = math.NaN()
	}
	return vals
}

// smaSeries is the simple moving average over the trailing period.
func smaSeries(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if len(vals) < period {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// emaSeries is the exponential moving average, seeded with the SMA of
// the first period values.
func emaSeries(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if len(vals) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += vals[i]
	}
	out[period-1] = sum / float64(period)

	k := 2.0 / float64(period+1)
	for i := period; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out
}

type macdColumns struct {
	macd, signal, histogram []float64
}

// macdSeries computes the MACD line (EMA12−EMA26), its EMA9 signal, and
// the histogram (line − signal).
func macdSeries(vals []float64) macdColumns {
	n := len(vals)
	fast := emaSeries(vals, 12)
	slow := emaSeries(vals, 26)

	line := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			line[i] = fast[i] - slow[i]
		}
	}

	signal := emaTail(line, 9)
	hist := nanSlice(n)
	for i := 0; i < n; i++ {
		if !math.IsNaN(line[i]) && !math.IsNaN(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return macdColumns{macd: line, signal: signal, histogram: hist}
}

// emaTail applies an EMA to a column whose leading entries are NaN,
// seeding from the first run of valid values.
func emaTail(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	first := -1
	for i, v := range vals {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	if first < 0 || len(vals)-first < period {
		return out
	}

	sum := 0.0
	for i := first; i < first+period; i++ {
		sum += vals[i]
	}
	seed := first + period - 1
	out[seed] = sum / float64(period)

	k := 2.0 / float64(period+1)
	for i := seed + 1; i < len(vals); i++ {
		out[i] = vals[i]*k + out[i-1]*(1-k)
	}
	return out
}

// rsiSeries computes the Relative Strength Index with Wilder smoothing.
func rsiSeries(vals []float64, period int) []float64 {
	n := len(vals)
	out := nanSlice(n)
	if n < period+1 {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := vals[i] - vals[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < n; i++ {
		change := vals[i] - vals[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// bollSeries computes the Bollinger middle band plus mult standard
// deviations: mult 0 is the middle line, +2 the upper band, −2 the
// lower band.
func bollSeries(vals []float64, period int, mult float64) []float64 {
	out := nanSlice(len(vals))
	if len(vals) < period {
		return out
	}
	for i := period - 1; i < len(vals); i++ {
		window := vals[i-period+1 : i+1]
		mean := avg(window)
		out[i] = mean + mult*stddev(window, mean)
	}
	return out
}

// atrSeries computes the Average True Range with Wilder smoothing.
func atrSeries(bars []models.Bar, period int) []float64 {
	n := len(bars)
	out := nanSlice(n)
	if n < period+1 {
		return out
	}

	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += tr[i]
	}
	out[period-1] = sum / float64(period)
	for i := period; i < n; i++ {
		out[i] = (out[i-1]*float64(period-1) + tr[i]) / float64(period)
	}
	return out
}

// vwmaSeries computes the volume-weighted moving average of the close.
func vwmaSeries(bars []models.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	if len(bars) < period {
		return out
	}
	for i := period - 1; i < len(bars); i++ {
		var pv, vol float64
		for j := i - period + 1; j <= i; j++ {
			pv += bars[j].Close * bars[j].Volume
			vol += bars[j].Volume
		}
		if vol > 0 {
			out[i] = pv / vol
		}
	}
	return out
}

// mfiSeries computes the Money Flow Index from typical price and volume.
func mfiSeries(bars []models.Bar, period int) []float64 {
	n := len(bars)
	out := nanSlice(n)
	if n < period+1 {
		return out
	}

	typical := make([]float64, n)
	for i, b := range bars {
		typical[i] = (b.High + b.Low + b.Close) / 3
	}

	for i := period; i < n; i++ {
		var pos, neg float64
		for j := i - period + 1; j <= i; j++ {
			flow := typical[j] * bars[j].Volume
			switch {
			case typical[j] > typical[j-1]:
				pos += flow
			case typical[j] < typical[j-1]:
				neg += flow
			}
		}
		if neg == 0 {
			out[i] = 100
		} else {
			ratio := pos / neg
			out[i] = 100 - (100 / (1 + ratio))
		}
	}
	return out
}

func avg(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(vals)))
}
