package usecase

import (
	"math"

	"edumaster-order-bot/internal/domain/model"
)

// PricingUseCase computes the quoted price for an order.
type PricingUseCase interface {
	// Compute maps (level, deadline, pages) to a price in euros.
	//
	// An unknown level yields 0 — callers guard keys upstream, this function
	// does not signal failure. An unknown deadline falls back to multiplier
	// 1.0. The per-page ceiling caps the effective per-page cost, so the cap
	// scales with the page count.
	Compute(levelKey, deadlineKey string, pages int) float64
}

var _ PricingUseCase = (*pricingUC)(nil)

type pricingUC struct {
	cat *model.Catalog
}

func NewPricingUseCase(cat *model.Catalog) *pricingUC {
	return &pricingUC{cat: cat}
}

func (p *pricingUC) Compute(levelKey, deadlineKey string, pages int) float64 {
	level, ok := p.cat.Level(levelKey)
	if !ok {
		return 0
	}
	multiplier := 1.0
	if d, ok := p.cat.Deadline(deadlineKey); ok {
		multiplier = d.Multiplier
	}
	raw := level.BasePrice * multiplier * float64(pages)
	return math.Min(raw, p.cat.CeilingPerPage*float64(pages))
}
