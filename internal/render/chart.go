// Package render turns backend chart and market payloads into display models
// and plain-text views.
package render

import (
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// Point is one labelled value of a bar, line or area chart
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Chart is the display model selected for a GraphData payload. Exactly one of
// Points, Gauge or Candles is populated, according to Type.
type Chart struct {
	Type        domain.ChartType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`

	LabelKey string  `json:"labelKey,omitempty"`
	ValueKey string  `json:"valueKey,omitempty"`
	Points   []Point `json:"points,omitempty"`

	Gauge   *Gauge       `json:"gauge,omitempty"`
	Candles *CandleChart `json:"candles,omitempty"`
}

// fieldRole lists the keys tried, in order, for a chart's label and value
type fieldRole struct {
	labels        []string
	values        []string
	labelFallback string
	valueFallback string
}

var fieldRoles = map[domain.ChartType]fieldRole{
	domain.ChartBar: {
		labels:        []string{"label", "time", "hour", "date"},
		values:        []string{"value", "volume", "count", "price"},
		labelFallback: "label",
		valueFallback: "value",
	},
	domain.ChartLine: {
		labels:        []string{"label", "time", "date", "timestamp", "hour", "index"},
		values:        []string{"value", "equity", "balance", "price", "amount"},
		labelFallback: "label",
		valueFallback: "value",
	},
	domain.ChartArea: {
		labelFallback: "time",
		valueFallback: "price",
	},
}

// Dispatch selects the chart for g. Unknown or missing types render as a
// candle chart. A nil payload or one without records renders nothing.
func Dispatch(g *domain.GraphData) *Chart {
	if g == nil || len(g.Data) == 0 {
		return nil
	}

	chart := &Chart{
		Type:        g.Type,
		Title:       g.Title,
		Description: g.Description,
	}

	switch g.Type {
	case domain.ChartBar, domain.ChartLine, domain.ChartArea:
		chart.LabelKey, chart.ValueKey = inferKeys(fieldRoles[g.Type], g.Data[0])
		chart.Points = points(g.Data, chart.LabelKey, chart.ValueKey)
	case domain.ChartGauge:
		chart.Gauge = gauge(g.Data[0])
	default:
		chart.Type = domain.ChartCandle
		chart.Candles = candles(g.Data)
	}

	return chart
}

// inferKeys resolves label and value keys once per dataset from the first record
func inferKeys(role fieldRole, sample map[string]any) (string, string) {
	return pickKey(sample, role.labels, role.labelFallback), pickKey(sample, role.values, role.valueFallback)
}

func pickKey(sample map[string]any, candidates []string, fallback string) string {
	for _, key := range candidates {
		if _, ok := sample[key]; ok {
			return key
		}
	}
	return fallback
}

func points(data []map[string]any, labelKey, valueKey string) []Point {
	out := make([]Point, 0, len(data))
	for _, rec := range data {
		out = append(out, Point{
			Label: toLabel(rec[labelKey]),
			Value: toFloat(rec[valueKey]),
		})
	}
	return out
}

// Gauge is a single headline value
type Gauge struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
	Label     string  `json:"label,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

func gauge(rec map[string]any) *Gauge {
	g := &Gauge{
		Value:     toFloat(rec["value"]),
		Formatted: toLabel(rec["formatted"]),
		Label:     toLabel(rec["label"]),
		Timestamp: toLabel(rec["timestamp"]),
	}
	if g.Formatted == "" {
		g.Formatted = "$" + formatPlain(g.Value)
	}
	return g
}
