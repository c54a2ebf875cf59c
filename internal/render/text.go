package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

const barWidth = 30

// MessageText renders a chat message with its speaker and local time
func MessageText(w io.Writer, msg domain.Message) {
	who := "You"
	if msg.Role == domain.RoleAssistant {
		who = "Bot"
	}
	fmt.Fprintf(w, "%s [%s]\n%s\n", who, msg.Timestamp.Local().Format(time.Kitchen), msg.Content)

	if panel := MarketCards(msg.MarketData); panel != nil {
		fmt.Fprintln(w)
		MarketText(w, panel)
	}
	if chart := Dispatch(msg.GraphData); chart != nil {
		fmt.Fprintln(w)
		ChartText(w, chart)
	}
}

// MarketText renders price cards followed by a bar comparison
func MarketText(w io.Writer, p *MarketPanel) {
	fmt.Fprintln(w, "Market Data")
	for _, c := range p.Cards {
		fmt.Fprintf(w, "  %-4s %-8s $%s", c.Name, c.Symbol, FormatPrice(c.Price))
		if c.Timestamp != "" {
			fmt.Fprintf(w, "  (%s)", c.Timestamp)
		}
		fmt.Fprintln(w)
	}
	if len(p.Points) > 0 {
		bars(w, p.Points)
	}
}

// ChartText renders a chart as text
func ChartText(w io.Writer, c *Chart) {
	if c.Title != "" {
		fmt.Fprintln(w, c.Title)
	}
	if c.Description != "" {
		fmt.Fprintln(w, c.Description)
	}

	switch {
	case c.Gauge != nil:
		fmt.Fprintf(w, "  %s\n", c.Gauge.Formatted)
		if c.Gauge.Label != "" {
			fmt.Fprintf(w, "  %s\n", c.Gauge.Label)
		}
		if c.Gauge.Timestamp != "" {
			fmt.Fprintf(w, "  %s\n", c.Gauge.Timestamp)
		}
	case c.Candles != nil:
		candleText(w, c.Candles)
	default:
		bars(w, c.Points)
	}
}

func candleText(w io.Writer, cc *CandleChart) {
	for _, c := range cc.Candles {
		fmt.Fprintf(w, "  %-8s O %s  H %s  L %s  C %s", c.Date, FormatPrice(c.Open), FormatPrice(c.High), FormatPrice(c.Low), FormatPrice(c.Close))
		if cc.HasVolume {
			fmt.Fprintf(w, "  V %s", FormatPrice(c.Volume))
		}
		fmt.Fprintln(w)
	}

	s := cc.Stats
	trend := "▼"
	if s.Up() {
		trend = "▲"
	}
	fmt.Fprintf(w, "  Current $%s | High $%s | Low $%s | Change %s %s\n",
		FormatPrice(s.Current), FormatPrice(s.High), FormatPrice(s.Low), FormatPercent(s.ChangePct), trend)
}

// bars draws a horizontal bar per point, scaled to the largest magnitude
func bars(w io.Writer, pts []Point) {
	labelWidth := 0
	peak := 0.0
	for _, p := range pts {
		labelWidth = max(labelWidth, len(p.Label))
		peak = math.Max(peak, math.Abs(p.Value))
	}

	for _, p := range pts {
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(p.Value) / peak * barWidth))
		}
		fmt.Fprintf(w, "  %-*s %s %s\n", labelWidth, p.Label, strings.Repeat("█", n), FormatPrice(p.Value))
	}
}

// LoadingText renders the waiting indicator for a progress value
func LoadingText(progress int) string {
	progress = clampProgress(progress)
	filled := progress * barWidth / maxProgress
	return fmt.Sprintf("%s [%s%s] %d%% complete",
		LoadingSteps[StepAt(progress)].Text,
		strings.Repeat("=", filled),
		strings.Repeat(" ", barWidth-filled),
		progress)
}
