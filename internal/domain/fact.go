package domain

// PPTPM is the property × product type × production month fact row. It is the
// grain at which production and sales metrics are recorded.
type PPTPM struct {
	ID                int64    `json:"id"`
	PropertyID        int64    `json:"propertyId"`
	ProductTypeID     int64    `json:"productTypeId"`
	ProductionMonthID int64    `json:"productionMonthId"`
	NGLYield          *float64 `json:"nglYield,omitempty"`
}

// FactRow is a PPTPM joined with the names the metric generator needs.
type FactRow struct {
	PPTPM
	PropertyName string
}

// ProductionMetric is one measured production figure for a PPTPM.
type ProductionMetric struct {
	ID          int64   `json:"id"`
	PPTPMID     int64   `json:"pptpmId"`
	MetricName  string  `json:"metricName"`
	MetricValue float64 `json:"metricValue"`
	Description string  `json:"description,omitempty"`
}

// SalesMetric is one sales figure for a PPTPM. TaxTypeID is set only when the
// metric type is Taxes.
type SalesMetric struct {
	ID                int64   `json:"id"`
	PPTPMID           int64   `json:"pptpmId"`
	SalesMetricTypeID int64   `json:"salesMetricTypeId"`
	TaxTypeID         *int64  `json:"taxTypeId,omitempty"`
	Value             float64 `json:"value"`
	Description       string  `json:"description,omitempty"`
}

// RealisedPrice is a Realised Price sales metric with the PPTPM context the
// differential generator resolves benchmarks from.
type RealisedPrice struct {
	SalesMetricID int64
	PropertyID    int64
	PropertyName  string
	ProductTypeID int64
}

// Differential is the signed spread between a realised price and a benchmark.
type Differential struct {
	ID              int64   `json:"id"`
	BenchmarkID     int64   `json:"benchmarkId"`
	RealisedPriceID int64   `json:"realisedPriceId"`
	Value           float64 `json:"value"`
	Description     string  `json:"description,omitempty"`
}
