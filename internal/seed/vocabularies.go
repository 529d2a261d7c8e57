package seed

import "github.com/johnwards/wells/internal/domain"

// VocabularyDef is one fixed reference row.
type VocabularyDef struct {
	Name        string
	Description string
}

// ProductTypeDefs are the product types every dataset starts with.
var ProductTypeDefs = []VocabularyDef{
	{Name: domain.ProductTypeOil, Description: "Crude oil products"},
	{Name: domain.ProductTypeGas, Description: "Natural gas products"},
	{Name: domain.ProductTypeCondensate, Description: "Gas condensate products"},
	{Name: domain.ProductTypeNGL, Description: "Natural gas liquids"},
}

// SalesMetricTypeDefs are the kinds of sales figure recorded per PPTPM.
var SalesMetricTypeDefs = []VocabularyDef{
	{Name: domain.SalesMetricTaxes, Description: "Various tax payments"},
	{Name: domain.SalesMetricDeductions, Description: "Contractual deductions"},
	{Name: domain.SalesMetricDifferential, Description: "Price differentials"},
	{Name: domain.SalesMetricVolume, Description: "Sales volumes"},
	{Name: domain.SalesMetricRealisedPrice, Description: "Actual sale prices"},
	{Name: domain.SalesMetricRevenue, Description: "Generated revenue"},
}

// TaxTypeDefs qualify Taxes sales metrics.
var TaxTypeDefs = []VocabularyDef{
	{Name: domain.TaxTypeProduction, Description: "Tax on production volume"},
	{Name: domain.TaxTypeProperty, Description: "Tax on property value"},
}
