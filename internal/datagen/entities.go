package datagen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/domain"
)

// Locations a property can be placed in.
var Locations = []string{
	"Texas", "Oklahoma", "Louisiana", "North Dakota", "Wyoming",
	"Colorado", "New Mexico", "California", "Alaska",
}

const (
	minDescriptionLen = 20
	maxDescriptionLen = 100
	minWells          = 1
	maxWells          = 100
)

// generateEntities creates benchmarks, products, properties and production
// months. Products only reference benchmarks inserted in the same stage.
func (g *Generator) generateEntities(ctx context.Context) (int64, error) {
	benchmarks := make([]domain.Benchmark, g.cfg.NumBenchmarks)
	for i := range benchmarks {
		n := i + 1
		benchmarks[i] = domain.Benchmark{
			Name:        fmt.Sprintf("Benchmark %d", n),
			Description: fmt.Sprintf("Description for benchmark %d", n),
		}
	}
	benchmarks, err := g.store.Entities.InsertBenchmarks(ctx, benchmarks)
	if err != nil {
		return 0, err
	}

	products := make([]domain.Product, g.cfg.NumProducts)
	for i := range products {
		pt := g.refs.productTypes[g.rnd.index(len(g.refs.productTypes))]
		p := domain.Product{
			Name:          fmt.Sprintf("Product %d", i+1),
			ProductTypeID: pt.ID,
		}
		if len(benchmarks) > 0 && g.rnd.chance(g.cfg.ProductBenchmarkProbability) {
			id := benchmarks[g.rnd.index(len(benchmarks))].ID
			p.BenchmarkID = &id
		}
		p.Description = g.rnd.letters(minDescriptionLen, maxDescriptionLen)
		products[i] = p
	}
	if _, err := g.store.Entities.InsertProducts(ctx, products); err != nil {
		return 0, err
	}

	properties := make([]domain.Property, g.cfg.NumProperties)
	for i := range properties {
		properties[i] = domain.Property{
			Name:            fmt.Sprintf("Property %d", i+1),
			QuantityOfWells: g.rnd.intBetween(minWells, maxWells),
			Location:        Locations[g.rnd.index(len(Locations))],
			Description:     g.rnd.letters(minDescriptionLen, maxDescriptionLen),
		}
	}
	if _, err := g.store.Entities.InsertProperties(ctx, properties); err != nil {
		return 0, err
	}

	start, err := g.cfg.startMonth()
	if err != nil {
		return 0, err
	}
	months := make([]domain.ProductionMonth, g.cfg.NumMonths)
	for i := range months {
		months[i] = domain.NewProductionMonth(start.AddDate(0, i, 0))
	}
	if _, err := g.store.Entities.InsertProductionMonths(ctx, months); err != nil {
		return 0, err
	}

	g.logger.Debug("entities inserted",
		zap.Int("benchmarks", len(benchmarks)),
		zap.Int("products", len(products)),
		zap.Int("properties", len(properties)),
		zap.Int("months", len(months)),
	)
	return int64(len(benchmarks) + len(products) + len(properties) + len(months)), nil
}
