package datagen

import (
	"errors"
	"fmt"
	"time"

	"github.com/johnwards/wells/internal/domain"
)

// Config controls the volume, shape and randomness of a generation run.
type Config struct {
	NumProperties int `yaml:"num_properties" env:"WELLS_NUM_PROPERTIES"`
	NumProducts   int `yaml:"num_products" env:"WELLS_NUM_PRODUCTS"`
	NumBenchmarks int `yaml:"num_benchmarks" env:"WELLS_NUM_BENCHMARKS"`
	NumMonths     int `yaml:"num_months" env:"WELLS_NUM_MONTHS"`

	NumProductionMetricsPerPPTPM int `yaml:"num_production_metrics_per_pptpm" env:"WELLS_NUM_PRODUCTION_METRICS_PER_PPTPM"`

	// Informational. One sales metric is written per sales metric type.
	NumSalesMetricsPerPPTPM int `yaml:"num_sales_metrics_per_pptpm" env:"WELLS_NUM_SALES_METRICS_PER_PPTPM"`

	// Probability that a property × product type × month triple is included
	// although the property owns no product of that type.
	NoiseProbability float64 `yaml:"noise_probability" env:"WELLS_NOISE_PROBABILITY"`

	// Probability that a generated product is priced against a benchmark.
	ProductBenchmarkProbability float64 `yaml:"product_benchmark_probability" env:"WELLS_PRODUCT_BENCHMARK_PROBABILITY"`

	FactBatchSize         int `yaml:"fact_batch_size" env:"WELLS_FACT_BATCH_SIZE"`
	MetricBatchSize       int `yaml:"metric_batch_size" env:"WELLS_METRIC_BATCH_SIZE"`
	DifferentialBatchSize int `yaml:"differential_batch_size" env:"WELLS_DIFFERENTIAL_BATCH_SIZE"`

	// Seed makes a run reproducible. Zero seeds from the clock.
	Seed uint64 `yaml:"seed" env:"WELLS_SEED"`

	// ProductTypes restricts the product types used for products and the
	// fact grid. Empty means every seeded type.
	ProductTypes []string `yaml:"product_types" env:"WELLS_PRODUCT_TYPES" env-separator:","`

	// StartMonth is the first production month, formatted YYYY-MM.
	StartMonth string `yaml:"start_month" env:"WELLS_START_MONTH"`
}

// DefaultConfig returns the default generation volumes.
func DefaultConfig() Config {
	return Config{
		NumProperties:                50,
		NumProducts:                  30,
		NumBenchmarks:                10,
		NumMonths:                    36,
		NumProductionMetricsPerPPTPM: 5,
		NumSalesMetricsPerPPTPM:      6,
		NoiseProbability:             0.2,
		ProductBenchmarkProbability:  1.0,
		FactBatchSize:                1000,
		MetricBatchSize:              500,
		DifferentialBatchSize:        1000,
		StartMonth:                   "2020-01",
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"num_properties", c.NumProperties},
		{"num_months", c.NumMonths},
		{"num_production_metrics_per_pptpm", c.NumProductionMetricsPerPPTPM},
		{"fact_batch_size", c.FactBatchSize},
		{"metric_batch_size", c.MetricBatchSize},
		{"differential_batch_size", c.DifferentialBatchSize},
	}
	for _, f := range positive {
		if f.v < 1 {
			errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", f.name, f.v))
		}
	}
	if c.NumProducts < 0 {
		errs = append(errs, fmt.Errorf("num_products must not be negative, got %d", c.NumProducts))
	}
	if c.NumBenchmarks < 0 {
		errs = append(errs, fmt.Errorf("num_benchmarks must not be negative, got %d", c.NumBenchmarks))
	}
	if c.NoiseProbability < 0 || c.NoiseProbability > 1 {
		errs = append(errs, fmt.Errorf("noise_probability must be within [0, 1], got %v", c.NoiseProbability))
	}
	if c.ProductBenchmarkProbability < 0 || c.ProductBenchmarkProbability > 1 {
		errs = append(errs, fmt.Errorf("product_benchmark_probability must be within [0, 1], got %v", c.ProductBenchmarkProbability))
	}
	if _, err := c.startMonth(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) startMonth() (time.Time, error) {
	t, err := time.Parse(domain.MonthNameLayout, c.StartMonth)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_month %q must be formatted YYYY-MM", c.StartMonth)
	}
	return t, nil
}
