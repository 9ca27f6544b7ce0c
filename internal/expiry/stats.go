package expiry

import (
	"github.com/shopspring/decimal"
)

// Stats feeds the dashboard tiles.
type Stats struct {
	Critical72h   int             `json:"critical72h"`
	ExpiredCount  int             `json:"expiredCount"`
	ValueAtRisk7d decimal.Decimal `json:"valueAtRisk7d"`
}

// Summarize derives the tiles from the active enriched set. It is a single
// pass and is meant to run on every request.
func Summarize(rows []EnrichedBatch) Stats {
	s := Stats{ValueAtRisk7d: decimal.Zero}
	for _, b := range rows {
		d := b.DaysUntilExpiry
		if d < 0 {
			s.ExpiredCount++
			continue
		}
		if d <= 3 {
			s.Critical72h++
		}
		if d <= 7 {
			s.ValueAtRisk7d = s.ValueAtRisk7d.Add(b.Value())
		}
	}
	return s
}

// BundleCandidates lists the distinct product names expiring within a week,
// in first-seen order.
func BundleCandidates(rows []EnrichedBatch) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, b := range rows {
		if b.DaysUntilExpiry < 0 || b.DaysUntilExpiry > 7 || seen[b.ProductName] {
			continue
		}
		seen[b.ProductName] = true
		out = append(out, b.ProductName)
	}
	return out
}

// HasUrgent drives the alert banner: anything at two days or less, expired
// included.
func HasUrgent(rows []EnrichedBatch) bool {
	for _, b := range rows {
		if b.DaysUntilExpiry <= 2 {
			return true
		}
	}
	return false
}
