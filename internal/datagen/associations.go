package datagen

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnwards/wells/internal/domain"
)

const (
	minProductsPerProperty = 1
	maxProductsPerProperty = 5
)

// generateAssociations links every property to between one and five distinct
// products, capped at the number of products.
func (g *Generator) generateAssociations(ctx context.Context) (int64, error) {
	properties, err := g.store.Entities.Properties(ctx)
	if err != nil {
		return 0, err
	}
	products, err := g.store.Entities.Products(ctx)
	if err != nil {
		return 0, err
	}

	var links []domain.PropertyProduct
	for _, prop := range properties {
		k := min(g.rnd.intBetween(minProductsPerProperty, maxProductsPerProperty), len(products))
		for _, i := range g.rnd.sample(len(products), k) {
			links = append(links, domain.PropertyProduct{PropertyID: prop.ID, ProductID: products[i].ID})
		}
	}
	if err := g.store.Entities.LinkProducts(ctx, links); err != nil {
		return 0, err
	}
	return int64(len(links)), nil
}

// generateFactGrid walks properties × product types × months in ascending id
// order. A triple is included when the property owns a product of that type,
// otherwise with NoiseProbability. The noise draw is only taken for triples
// without a matching product, so the included set does not depend on the
// batch size.
func (g *Generator) generateFactGrid(ctx context.Context) (int64, error) {
	properties, err := g.store.Entities.Properties(ctx)
	if err != nil {
		return 0, err
	}
	months, err := g.store.Entities.ProductionMonths(ctx)
	if err != nil {
		return 0, err
	}
	owned, err := g.ownedProductTypes(ctx)
	if err != nil {
		return 0, err
	}

	var (
		total int64
		n     int
	)
	batch := make([]domain.PPTPM, 0, g.cfg.FactBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := g.store.Facts.InsertPPTPMs(ctx, batch); err != nil {
			return fmt.Errorf("batch %d: %w", n, err)
		}
		g.logger.Debug("fact batch committed", zap.String("stage", StageFactGrid), zap.Int("batch", n), zap.Int("rows", len(batch)))
		total += int64(len(batch))
		n++
		batch = batch[:0]
		return nil
	}

	for _, prop := range properties {
		for _, pt := range g.refs.productTypes {
			for _, month := range months {
				if !owned[prop.ID][pt.ID] && !g.rnd.chance(g.cfg.NoiseProbability) {
					continue
				}
				row := domain.PPTPM{
					PropertyID:        prop.ID,
					ProductTypeID:     pt.ID,
					ProductionMonthID: month.ID,
				}
				if pt.ID == g.refs.nglTypeID {
					y := g.rnd.money(minNGLYield, maxNGLYield)
					row.NGLYield = &y
				}
				batch = append(batch, row)
				if len(batch) == g.cfg.FactBatchSize {
					if err := flush(); err != nil {
						return total, err
					}
				}
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

const (
	minNGLYield = 0.1
	maxNGLYield = 5.0
)

// ownedProductTypes maps property id to the set of product type ids it owns
// a product of.
func (g *Generator) ownedProductTypes(ctx context.Context) (map[int64]map[int64]bool, error) {
	linked, err := g.store.Entities.PropertyProducts(ctx)
	if err != nil {
		return nil, err
	}
	owned := make(map[int64]map[int64]bool, len(linked))
	for propertyID, products := range linked {
		types := make(map[int64]bool, len(products))
		for _, p := range products {
			types[p.ProductTypeID] = true
		}
		owned[propertyID] = types
	}
	return owned, nil
}
