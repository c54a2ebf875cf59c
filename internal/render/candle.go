package render

import (
	"math"
	"time"
)

// Candle is one OHLC record
type Candle struct {
	Time   string  `json:"time"`
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// CandleStats summarizes a candle series
type CandleStats struct {
	Current   float64 `json:"current"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	ChangePct float64 `json:"changePct"`
}

// Up reports whether the series closed above its first open
func (s CandleStats) Up() bool {
	return s.ChangePct > 0
}

// CandleChart is a close/high/low series with optional volume bars
type CandleChart struct {
	Candles   []Candle    `json:"candles"`
	HasVolume bool        `json:"hasVolume"`
	Stats     CandleStats `json:"stats"`
}

func candles(data []map[string]any) *CandleChart {
	out := &CandleChart{Candles: make([]Candle, 0, len(data))}
	_, out.HasVolume = data[0]["volume"]

	for _, rec := range data {
		c := Candle{
			Time:   toLabel(rec["time"]),
			Open:   toFloat(rec["open"]),
			High:   toFloat(rec["high"]),
			Low:    toFloat(rec["low"]),
			Close:  toFloat(rec["close"]),
			Volume: toFloat(rec["volume"]),
		}
		c.Date = shortDate(rec["time"])
		out.Candles = append(out.Candles, c)
	}

	out.Stats = candleStats(out.Candles)
	return out
}

func candleStats(cs []Candle) CandleStats {
	first, last := cs[0], cs[len(cs)-1]
	stats := CandleStats{
		Current: last.Close,
		High:    math.Inf(-1),
		Low:     math.Inf(1),
	}
	for _, c := range cs {
		stats.High = math.Max(stats.High, c.High)
		stats.Low = math.Min(stats.Low, c.Low)
	}
	if first.Open != 0 {
		stats.ChangePct = (last.Close - first.Open) / first.Open * 100
	}
	return stats
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// shortDate formats a candle time as "Jan 2". Numbers are epoch milliseconds.
func shortDate(v any) string {
	var t time.Time
	switch x := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, x); err == nil {
				t = parsed
				break
			}
		}
		if t.IsZero() {
			return x
		}
	case nil:
		return ""
	default:
		ms := toFloat(x)
		if ms == 0 {
			return toLabel(v)
		}
		t = time.UnixMilli(int64(ms)).UTC()
	}
	return t.Format("Jan 2")
}
