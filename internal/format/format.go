// Package format renders backend values the way the point-of-sale screens display them
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	StockUnknown  = "Stock N/A"
	StockInStock  = "En Stock"
	StockLow      = "Stock Bajo"
	StockSoldOut  = "Agotado"
	lowStockLimit = 20
)

// Price renders a decimal string as 'Bs. 12.50'; unparseable amounts become 'Bs. ---'
func Price(value string) string {
	amount, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "Bs. ---"
	}
	return fmt.Sprintf("Bs. %.2f", amount)
}

// StockStatus returns the availability label of a stock amount; nil means unknown
func StockStatus(stock *int) string {
	switch {
	case stock == nil:
		return StockUnknown
	case *stock > lowStockLimit:
		return StockInStock
	case *stock > 0:
		return StockLow
	default:
		return StockSoldOut
	}
}
