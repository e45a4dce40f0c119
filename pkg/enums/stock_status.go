package enums

import "fmt"

// StockStatus tracks shelf availability of an item.
type StockStatus string

const (
	StockStatusInStock      StockStatus = "in-stock"
	StockStatusOutOfStock   StockStatus = "out-of-stock"
	StockStatusLowStock     StockStatus = "low-stock"
	StockStatusDiscontinued StockStatus = "discontinued"
)

var validStockStatuses = []StockStatus{
	StockStatusInStock,
	StockStatusOutOfStock,
	StockStatusLowStock,
	StockStatusDiscontinued,
}

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockStatus.
func (s StockStatus) IsValid() bool {
	for _, candidate := range validStockStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockStatus converts raw input into a StockStatus.
func ParseStockStatus(value string) (StockStatus, error) {
	for _, candidate := range validStockStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock status %q", value)
}

func StockStatuses() []StockStatus {
	return append([]StockStatus(nil), validStockStatuses...)
}
