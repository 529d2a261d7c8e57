package domain

import "time"

// MonthDateLayout is the storage format of ProductionMonth.MonthDate.
const MonthDateLayout = "2006-01-02"

// MonthNameLayout is the display label format of a production month.
const MonthNameLayout = "2006-01"

// Benchmark is a named reference price series.
type Benchmark struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a sellable stream of a given product type, optionally priced
// against a benchmark.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ProductTypeID int64  `json:"productTypeId"`
	BenchmarkID   *int64 `json:"benchmarkId,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Property is a producing lease with a number of wells.
type Property struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	QuantityOfWells int    `json:"quantityOfWells"`
	Location        string `json:"location,omitempty"`
	Description     string `json:"description,omitempty"`
}

// PropertyProduct links a property to a product it produces.
type PropertyProduct struct {
	PropertyID int64 `json:"propertyId"`
	ProductID  int64 `json:"productId"`
}

// ProductionMonth is a calendar month keyed by its first day.
type ProductionMonth struct {
	ID        int64     `json:"id"`
	MonthDate time.Time `json:"monthDate"`
	MonthName string    `json:"monthName"`
}

// NewProductionMonth returns the production month containing t, normalized to
// the first day of the month in UTC.
func NewProductionMonth(t time.Time) ProductionMonth {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return ProductionMonth{
		MonthDate: first,
		MonthName: first.Format(MonthNameLayout),
	}
}
