package datagen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/domain"
)

// ProductionMetricNames are the production measures drawn for each PPTPM.
var ProductionMetricNames = []string{
	"Daily Rate", "Cumulative Production", "Peak Rate", "Decline Rate", "Water Cut",
}

const (
	minProductionValue = 100
	maxProductionValue = 10000
)

// salesRange returns the value range of a sales metric type.
func salesRange(name string) (lo, hi float64) {
	switch name {
	case domain.SalesMetricVolume:
		return 1000, 100000
	case domain.SalesMetricRevenue:
		return 10000, 1000000
	default:
		return 10, 1000
	}
}

// generateMetrics pages through the fact grid by ascending id and writes the
// production metrics and one sales metric per sales metric type for every
// row. Each page commits in one transaction.
func (g *Generator) generateMetrics(ctx context.Context) (int64, error) {
	var (
		total int64
		after int64
		page  int
		prod  []domain.ProductionMetric
		sales []domain.SalesMetric
	)
	for {
		rows, err := g.store.Facts.FactPage(ctx, after, g.cfg.MetricBatchSize)
		if err != nil {
			return total, err
		}
		if len(rows) == 0 {
			return total, nil
		}

		prod = prod[:0]
		sales = sales[:0]
		for _, row := range rows {
			prod = g.appendProductionMetrics(prod, row)
			sales = g.appendSalesMetrics(sales, row)
		}
		if err := g.store.Metrics.InsertMetrics(ctx, prod, sales); err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}

		n := int64(len(prod) + len(sales))
		total += n
		g.logger.Debug("metric batch committed",
			zap.String("stage", StageMetrics),
			zap.Int("batch", page),
			zap.Int("pptpm", len(rows)),
			zap.Int64("rows", n),
		)
		after = rows[len(rows)-1].ID
		page++
	}
}

func (g *Generator) appendProductionMetrics(dst []domain.ProductionMetric, row domain.FactRow) []domain.ProductionMetric {
	for i := 0; i < g.cfg.NumProductionMetricsPerPPTPM; i++ {
		name := ProductionMetricNames[g.rnd.index(len(ProductionMetricNames))]
		dst = append(dst, domain.ProductionMetric{
			PPTPMID:     row.ID,
			MetricName:  name,
			MetricValue: g.rnd.money(minProductionValue, maxProductionValue),
			Description: fmt.Sprintf("%s for %s", name, row.PropertyName),
		})
	}
	return dst
}

func (g *Generator) appendSalesMetrics(dst []domain.SalesMetric, row domain.FactRow) []domain.SalesMetric {
	for _, smt := range g.refs.salesMetricTypes {
		lo, hi := salesRange(smt.Name)
		m := domain.SalesMetric{
			PPTPMID:           row.ID,
			SalesMetricTypeID: smt.ID,
			Value:             g.rnd.money(lo, hi),
			Description:       fmt.Sprintf("%s for %s", smt.Name, row.PropertyName),
		}
		if smt.Name == domain.SalesMetricTaxes {
			id := g.refs.taxTypes[g.rnd.index(len(g.refs.taxTypes))].ID
			m.TaxTypeID = &id
		}
		dst = append(dst, m)
	}
	return dst
}
