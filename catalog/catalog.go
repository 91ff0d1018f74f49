// Package catalog filters and sorts equipment listings for the browse page.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"rentkit/models"
)

const All = "all"

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price_low"
	SortPriceHigh SortKey = "price_high"
	SortPopular   SortKey = "popular"
)

var CategoryOptions = append([]models.Option{{Value: All, Label: "All Categories"}}, models.Categories...)

var PriceOptions = []models.Option{
	{Value: All, Label: "Any Price"},
	{Value: "0-20", Label: "Under £20"},
	{Value: "20-50", Label: "£20 - £50"},
	{Value: "50-100", Label: "£50 - £100"},
	{Value: "100+", Label: "£100+"},
}

var SortOptions = []models.Option{
	{Value: string(SortNewest), Label: "Newest First"},
	{Value: string(SortPriceLow), Label: "Price: Low to High"},
	{Value: string(SortPriceHigh), Label: "Price: High to Low"},
	{Value: string(SortPopular), Label: "Most Popular"},
}

// PriceBracket is an inclusive daily price range. Open brackets have no max.
type PriceBracket struct {
	Min  float64
	Max  float64
	Open bool
}

func (b PriceBracket) Contains(p float64) bool {
	if p < b.Min {
		return false
	}
	return b.Open || p <= b.Max
}

// ParsePriceBracket accepts "all", "lo-hi" or "lo+". ok is false for "all" or "".
func ParsePriceBracket(s string) (b PriceBracket, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == All {
		return PriceBracket{}, false, nil
	}
	if lo, found := strings.CutSuffix(s, "+"); found {
		floor, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return PriceBracket{}, false, fmt.Errorf("price range %q: %w", s, err)
		}
		return PriceBracket{Min: floor, Open: true}, true, nil
	}
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return PriceBracket{}, false, fmt.Errorf("price range %q: want lo-hi or lo+", s)
	}
	floor, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return PriceBracket{}, false, fmt.Errorf("price range %q: %w", s, err)
	}
	ceil, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return PriceBracket{}, false, fmt.Errorf("price range %q: %w", s, err)
	}
	if ceil < floor {
		return PriceBracket{}, false, fmt.Errorf("price range %q: max below min", s)
	}
	return PriceBracket{Min: floor, Max: ceil}, true, nil
}

// Query is the browse page's filter state.
type Query struct {
	Text     string  `form:"q" json:"q"`
	Location string  `form:"location" json:"location"`
	Category string  `form:"category" json:"category"`
	Price    string  `form:"price" json:"price"`
	Sort     SortKey `form:"sort" json:"sort"`
}

// Predicate selects listings.
type Predicate func(models.Equipment) bool

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func Available() Predicate {
	return func(e models.Equipment) bool { return e.Availability }
}

// MatchText matches name, description or brand.
func MatchText(q string) Predicate {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(e models.Equipment) bool {
		return contains(e.Name, q) || contains(e.Description, q) || contains(e.Brand, q)
	}
}

// MatchLocation matches location or postcode.
func MatchLocation(q string) Predicate {
	q = strings.ToLower(strings.TrimSpace(q))
	return func(e models.Equipment) bool {
		return contains(e.Location, q) || contains(e.Postcode, q)
	}
}

func InCategory(c string) Predicate {
	return func(e models.Equipment) bool { return e.Category == c }
}

func InPrice(b PriceBracket) Predicate {
	return func(e models.Equipment) bool { return b.Contains(e.PricePerDay) }
}

// Predicates turns a query into its filter set. Empty fields and "all" add nothing.
func (q Query) Predicates() ([]Predicate, error) {
	ps := []Predicate{Available()}
	if strings.TrimSpace(q.Text) != "" {
		ps = append(ps, MatchText(q.Text))
	}
	if strings.TrimSpace(q.Location) != "" {
		ps = append(ps, MatchLocation(q.Location))
	}
	if q.Category != "" && q.Category != All {
		ps = append(ps, InCategory(q.Category))
	}
	b, ok, err := ParsePriceBracket(q.Price)
	if err != nil {
		return nil, err
	}
	if ok {
		ps = append(ps, InPrice(b))
	}
	return ps, nil
}

// Filter keeps the listings matching every predicate, preserving order.
func Filter(items []models.Equipment, ps ...Predicate) []models.Equipment {
	out := make([]models.Equipment, 0, len(items))
next:
	for _, it := range items {
		for _, p := range ps {
			if !p(it) {
				continue next
			}
		}
		out = append(out, it)
	}
	return out
}

// Sort orders listings in place. Ties keep their input order.
func Sort(items []models.Equipment, key SortKey) error {
	var less func(a, b models.Equipment) bool
	switch key {
	case "", SortNewest, SortPopular:
		// popular 暂时按创建时间
		less = func(a, b models.Equipment) bool { return a.CreatedDate.After(b.CreatedDate) }
	case SortPriceLow:
		less = func(a, b models.Equipment) bool { return a.PricePerDay < b.PricePerDay }
	case SortPriceHigh:
		less = func(a, b models.Equipment) bool { return a.PricePerDay > b.PricePerDay }
	default:
		return fmt.Errorf("unknown sort %q", key)
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	return nil
}

// Browse applies the full query.
func Browse(items []models.Equipment, q Query) ([]models.Equipment, error) {
	ps, err := q.Predicates()
	if err != nil {
		return nil, err
	}
	out := Filter(items, ps...)
	if err := Sort(out, q.Sort); err != nil {
		return nil, err
	}
	return out, nil
}
