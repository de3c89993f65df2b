package service

import (
	"github.com/boddenberg/ops-console-bfa-go/internal/domain"
)

// ============================================================
// Insight Engine: agregações puras sobre o snapshot
// ============================================================

// Field reads an optional monetary field; nil means the item does not have it.
type Field[T any] func(T) *float64

// Count returns the number of items.
func Count[T any](items []T) int {
	return len(items)
}

// SumMonetary adds primary(item), or fallback(item) when primary is missing,
// or 0 when both are missing. fallback may be nil.
func SumMonetary[T any](items []T, primary, fallback Field[T]) float64 {
	var total float64
	for _, it := range items {
		total += monetary(it, primary, fallback)
	}
	return total
}

// Average is SumMonetary divided by Count, and 0 for an empty collection.
func Average[T any](items []T, primary, fallback Field[T]) float64 {
	n := Count(items)
	if n == 0 {
		return 0
	}
	return SumMonetary(items, primary, fallback) / float64(n)
}

// MaxBy returns the item with the greatest value. On ties the first one wins.
// ok is false for an empty collection.
func MaxBy[T any](items []T, value func(T) float64) (best T, ok bool) {
	for i, it := range items {
		if i == 0 || value(it) > value(best) {
			best = it
		}
	}
	return best, len(items) > 0
}

// Distribution returns the percentage share of a and b in a+b.
// Both shares are 0 when the sum is 0.
func Distribution(a, b float64) (pa, pb float64) {
	sum := a + b
	if sum == 0 {
		return 0, 0
	}
	return a / sum * 100, b / sum * 100
}

func monetary[T any](item T, primary, fallback Field[T]) float64 {
	if primary != nil {
		if v := primary(item); v != nil {
			return *v
		}
	}
	if fallback != nil {
		if v := fallback(item); v != nil {
			return *v
		}
	}
	return 0
}

// Catalog field accessors.
var (
	partSalePrice    Field[domain.Part]    = func(p domain.Part) *float64 { return p.SalePrice }
	partCostPrice    Field[domain.Part]    = func(p domain.Part) *float64 { return p.CostPrice }
	serviceUnitPrice Field[domain.Service] = func(s domain.Service) *float64 { return s.UnitPrice }
)

// PartPrice is the sale price of a part, falling back to its cost.
func PartPrice(p domain.Part) float64 {
	return monetary(p, partSalePrice, partCostPrice)
}

// ServicePrice is the unit price of a service.
func ServicePrice(s domain.Service) float64 {
	return monetary(s, serviceUnitPrice, nil)
}

// Insights is the aggregate view of one snapshot.
type Insights struct {
	Customers int
	Parts     int
	Services  int

	PartsTotal    float64
	ServicesTotal float64
	AvgPartPrice  float64
	AvgService    float64

	PartsShare    float64
	ServicesShare float64

	TopPart      *domain.Part
	TopService   *domain.Service
	CheapPart    *domain.Part
	CheapService *domain.Service
}

// Summarize computes every aggregate the assistant reports from a snapshot.
func Summarize(snap *domain.Snapshot) Insights {
	if snap == nil {
		return Insights{}
	}

	in := Insights{
		Customers:     Count(snap.Customers),
		Parts:         Count(snap.Parts),
		Services:      Count(snap.Services),
		PartsTotal:    SumMonetary(snap.Parts, partSalePrice, partCostPrice),
		ServicesTotal: SumMonetary(snap.Services, serviceUnitPrice, nil),
		AvgPartPrice:  Average(snap.Parts, partSalePrice, partCostPrice),
		AvgService:    Average(snap.Services, serviceUnitPrice, nil),
	}
	in.PartsShare, in.ServicesShare = Distribution(in.PartsTotal, in.ServicesTotal)

	if p, ok := MaxBy(snap.Parts, PartPrice); ok {
		in.TopPart = &p
	}
	if s, ok := MaxBy(snap.Services, ServicePrice); ok {
		in.TopService = &s
	}
	if p, ok := MaxBy(snap.Parts, func(p domain.Part) float64 { return -PartPrice(p) }); ok {
		in.CheapPart = &p
	}
	if s, ok := MaxBy(snap.Services, func(s domain.Service) float64 { return -ServicePrice(s) }); ok {
		in.CheapService = &s
	}
	return in
}
