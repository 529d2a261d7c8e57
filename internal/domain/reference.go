package domain

// Product type names.
const (
	ProductTypeOil        = "oil"
	ProductTypeGas        = "gas"
	ProductTypeCondensate = "condensate"
	ProductTypeNGL        = "ngl"
)

// Sales metric type names.
const (
	SalesMetricTaxes         = "Taxes"
	SalesMetricDeductions    = "Deductions"
	SalesMetricDifferential  = "Differential"
	SalesMetricVolume        = "Volume"
	SalesMetricRealisedPrice = "Realised Price"
	SalesMetricRevenue       = "Revenue"
)

// Tax type names.
const (
	TaxTypeProduction = "Production Tax"
	TaxTypeProperty   = "Property Tax"
)

// ProductType classifies products (oil, gas, condensate, ngl).
type ProductType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// SalesMetricType names the kind of value a SalesMetric carries.
type SalesMetricType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaxType qualifies a SalesMetric of type Taxes.
type TaxType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
