package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	assert.Equal(t, "Bs. 12.50", Price("12.5"))
	assert.Equal(t, "Bs. 15.00", Price("15.00"))
	assert.Equal(t, "Bs. 0.00", Price("0"))
	assert.Equal(t, "Bs. 1.23", Price(" 1.234 "))
	assert.Equal(t, "Bs. ---", Price(""))
	assert.Equal(t, "Bs. ---", Price("gratis"))
	assert.Equal(t, "Bs. ---", Price("NaN"))
	assert.Equal(t, "Bs. ---", Price("Inf"))
}

func TestStockStatus(t *testing.T) {
	stock := func(n int) *int {
		return &n
	}

	assert.Equal(t, StockUnknown, StockStatus(nil))
	assert.Equal(t, StockInStock, StockStatus(stock(21)))
	assert.Equal(t, StockLow, StockStatus(stock(20)))
	assert.Equal(t, StockLow, StockStatus(stock(1)))
	assert.Equal(t, StockSoldOut, StockStatus(stock(0)))
	assert.Equal(t, StockSoldOut, StockStatus(stock(-3)))
}
