package expiry

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"shelfkeeper/internal/domain"
)

// Horizon is a coarse dashboard bucket. Expired batches belong to none.
type Horizon string

const (
	HorizonWeek   Horizon = "week"   // 0..7 days
	HorizonMonth  Horizon = "month"  // 8..30 days
	HorizonFuture Horizon = "future" // 31+ days
)

func (h Horizon) Valid() bool {
	return h == HorizonWeek || h == HorizonMonth || h == HorizonFuture
}

// Contains reports whether days falls in the horizon. The three horizons are
// disjoint and together cover every non-negative day count.
func (h Horizon) Contains(days int) bool {
	switch h {
	case HorizonWeek:
		return days >= 0 && days <= 7
	case HorizonMonth:
		return days > 7 && days <= 30
	case HorizonFuture:
		return days > 30
	}
	return false
}

// UrgencyFilter narrows the inventory view to one bucket, or none with "all".
type UrgencyFilter string

const (
	FilterAll      UrgencyFilter = "all"
	FilterCritical UrgencyFilter = UrgencyFilter(UrgencyCritical)
	FilterWarning  UrgencyFilter = UrgencyFilter(UrgencyWarning)
	FilterSafe     UrgencyFilter = UrgencyFilter(UrgencySafe)
	FilterExpired  UrgencyFilter = UrgencyFilter(UrgencyExpired)
)

func (f UrgencyFilter) Valid() bool {
	switch f {
	case FilterAll, FilterCritical, FilterWarning, FilterSafe, FilterExpired:
		return true
	}
	return false
}

// CategoryAll disables the category filter.
const CategoryAll = "All"

// ViewQuery selects rows for a screen. Zero values disable a predicate.
type ViewQuery struct {
	Horizon  Horizon
	Urgency  UrgencyFilter
	Category domain.Category
	Search   string
}

// SelectView applies every predicate in q and sorts the survivors by days
// until expiry, soonest first. Equal days keep their input order.
func SelectView(rows []EnrichedBatch, q ViewQuery, settings *AlertSettings) []EnrichedBatch {
	if settings == nil {
		settings = Defaults()
	}
	needle := strings.ToLower(q.Search)
	out := make([]EnrichedBatch, 0, len(rows))
	for _, b := range rows {
		if needle != "" && !strings.Contains(strings.ToLower(b.ProductName), needle) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && b.Category != q.Category {
			continue
		}
		if q.Horizon != "" {
			if b.Status != domain.StatusActive || !q.Horizon.Contains(b.DaysUntilExpiry) {
				continue
			}
		}
		if q.Urgency != "" && q.Urgency != FilterAll {
			if settings.Classify(b.DaysUntilExpiry, b.Category) != Urgency(q.Urgency) {
				continue
			}
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b EnrichedBatch) int {
		return cmp.Compare(a.DaysUntilExpiry, b.DaysUntilExpiry)
	})
	return out
}

// DaysLabel renders days until expiry the way the screens show it.
func DaysLabel(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("Expired %dd ago", -days)
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	}
	return fmt.Sprintf("%d days", days)
}
