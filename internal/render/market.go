package render

import (
	"github.com/WaqasSiddique02/Trading-Assistant-Chatbot/internal/domain"
)

// MarketCard is the price card of one symbol
type MarketCard struct {
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// MarketPanel holds the BTC and ETH cards plus their comparison chart
type MarketPanel struct {
	Cards  []MarketCard `json:"cards"`
	Points []Point      `json:"points"`
}

var marketSymbols = []struct {
	name   string
	symbol string
}{
	{"BTC", domain.SymbolBTC},
	{"ETH", domain.SymbolETH},
}

// MarketCards builds the market panel. Returns nil when neither BTC nor ETH
// is present. Chart points with a non-positive price are dropped.
func MarketCards(md domain.MarketData) *MarketPanel {
	panel := &MarketPanel{}

	for _, s := range marketSymbols {
		ticker, ok := md[s.symbol]
		if !ok {
			continue
		}
		price := ticker.Price.Float()
		symbol := ticker.Symbol
		if symbol == "" {
			symbol = s.symbol
		}
		panel.Cards = append(panel.Cards, MarketCard{
			Name:      s.name,
			Symbol:    symbol,
			Price:     price,
			Timestamp: ticker.Timestamp,
		})
		if price > 0 {
			panel.Points = append(panel.Points, Point{Label: s.name, Value: price})
		}
	}

	if len(panel.Cards) == 0 {
		return nil
	}
	return panel
}
