package expiry

import (
	"errors"
	"fmt"

	"shelfkeeper/internal/domain"
)

// FallbackCategory supplies thresholds for categories without their own row.
const FallbackCategory = domain.CategoryHousehold

var (
	ErrMissingFallback = errors.New("alert settings: no entry for the Household fallback category")
	ErrBadThresholds   = errors.New("alert settings: critical days exceed warning days")
)

type AlertSetting struct {
	Category     domain.Category `json:"category"`
	CriticalDays int             `json:"criticalDays"`
	WarningDays  int             `json:"warningDays"`
}

// AlertSettings is the validated per-category threshold table.
type AlertSettings struct {
	rows       []AlertSetting
	byCategory map[domain.Category]AlertSetting
}

// NewAlertSettings validates rows. The first row wins for a repeated category.
func NewAlertSettings(rows []AlertSetting) (*AlertSettings, error) {
	s := &AlertSettings{byCategory: make(map[domain.Category]AlertSetting, len(rows))}
	for _, r := range rows {
		if r.CriticalDays > r.WarningDays {
			return nil, fmt.Errorf("%w: %s (%d > %d)", ErrBadThresholds, r.Category, r.CriticalDays, r.WarningDays)
		}
		if _, dup := s.byCategory[r.Category]; dup {
			continue
		}
		s.byCategory[r.Category] = r
		s.rows = append(s.rows, r)
	}
	if _, ok := s.byCategory[FallbackCategory]; !ok {
		return nil, ErrMissingFallback
	}
	return s, nil
}

func DefaultAlertSettings() []AlertSetting {
	return []AlertSetting{
		{Category: domain.CategoryDairy, CriticalDays: 3, WarningDays: 7},
		{Category: domain.CategoryMeatFish, CriticalDays: 3, WarningDays: 5},
		{Category: domain.CategoryProduce, CriticalDays: 2, WarningDays: 4},
		{Category: domain.CategoryBakery, CriticalDays: 2, WarningDays: 4},
		{Category: domain.CategoryDrinks, CriticalDays: 30, WarningDays: 60},
		{Category: domain.CategorySnacks, CriticalDays: 30, WarningDays: 60},
		{Category: domain.CategoryCanned, CriticalDays: 30, WarningDays: 90},
		{Category: domain.CategoryHousehold, CriticalDays: 0, WarningDays: 0},
		{Category: domain.CategoryAlcohol, CriticalDays: 30, WarningDays: 60},
	}
}

// Defaults returns the built-in table. It panics only if the built-in rows
// are broken, which the package tests rule out.
func Defaults() *AlertSettings {
	s, err := NewAlertSettings(DefaultAlertSettings())
	if err != nil {
		panic(err)
	}
	return s
}

// LookupOrDefault returns the row for c, or the Household row.
func (s *AlertSettings) LookupOrDefault(c domain.Category) AlertSetting {
	if r, ok := s.byCategory[c]; ok {
		return r
	}
	return s.byCategory[FallbackCategory]
}

// All returns the rows in configuration order.
func (s *AlertSettings) All() []AlertSetting {
	out := make([]AlertSetting, len(s.rows))
	copy(out, s.rows)
	return out
}

// Classify buckets days using the thresholds for category c.
func (s *AlertSettings) Classify(days int, c domain.Category) Urgency {
	return Classify(days, s.LookupOrDefault(c))
}
