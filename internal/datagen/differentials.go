package datagen

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/domain"
)

const (
	minDifferential = -20
	maxDifferential = 20
)

// generateDifferentials writes one differential per benchmark that prices a
// product of the realised price's property and product type. When no such
// benchmark exists a random benchmark stands in. Without any benchmark the
// stage writes nothing.
func (g *Generator) generateDifferentials(ctx context.Context) (int64, error) {
	benchmarks, err := g.store.Entities.Benchmarks(ctx)
	if err != nil {
		return 0, err
	}
	if len(benchmarks) == 0 {
		g.logger.Warn("no benchmarks exist, skipping differentials", zap.String("stage", StageDifferentials))
		return 0, nil
	}
	linked, err := g.store.Entities.PropertyProducts(ctx)
	if err != nil {
		return 0, err
	}

	var (
		total     int64
		after     int64
		page      int
		fallbacks int
		batch     []domain.Differential
	)
	for {
		prices, err := g.store.Metrics.RealisedPricePage(ctx, after, g.cfg.DifferentialBatchSize)
		if err != nil {
			return total, err
		}
		if len(prices) == 0 {
			break
		}

		batch = batch[:0]
		for _, rp := range prices {
			ids := matchingBenchmarks(linked[rp.PropertyID], rp.ProductTypeID)
			if len(ids) == 0 {
				ids = []int64{benchmarks[g.rnd.index(len(benchmarks))].ID}
				fallbacks++
			}
			for _, id := range ids {
				batch = append(batch, domain.Differential{
					BenchmarkID:     id,
					RealisedPriceID: rp.SalesMetricID,
					Value:           g.rnd.money(minDifferential, maxDifferential),
					Description:     fmt.Sprintf("Differential for %s", rp.PropertyName),
				})
			}
		}
		if err := g.store.Metrics.InsertDifferentials(ctx, batch); err != nil {
			return total, fmt.Errorf("page %d: %w", page, err)
		}

		total += int64(len(batch))
		g.logger.Debug("differential batch committed",
			zap.String("stage", StageDifferentials),
			zap.Int("batch", page),
			zap.Int("rows", len(batch)),
		)
		after = prices[len(prices)-1].SalesMetricID
		page++
	}

	if fallbacks > 0 {
		g.logger.Info("realised prices without a matching benchmark used a random benchmark",
			zap.String("stage", StageDifferentials),
			zap.Int("count", fallbacks),
		)
	}
	return total, nil
}

// matchingBenchmarks returns the distinct benchmark ids, ascending, of the
// products with the given type that are priced against a benchmark.
func matchingBenchmarks(products []domain.Product, productTypeID int64) []int64 {
	var ids []int64
	for _, p := range products {
		if p.ProductTypeID == productTypeID && p.BenchmarkID != nil && !slices.Contains(ids, *p.BenchmarkID) {
			ids = append(ids, *p.BenchmarkID)
		}
	}
	slices.Sort(ids)
	return ids
}
