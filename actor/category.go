package actor

import (
	"sort"
	"strings"
)

// Category is a bitmask labelling what a body is, used to filter overlap partners
// without comparing strings on every step.
type Category uint32

const CategoryNone Category = 0

const (
	CategoryDefault Category = 1 << iota
	CategoryWater
	CategoryFloater
	CategoryDebris
)

var categoryNames = map[string]Category{
	"none":    CategoryNone,
	"default": CategoryDefault,
	"water":   CategoryWater,
	"floater": CategoryFloater,
	"debris":  CategoryDebris,
}

// Matches reports whether c shares at least one bit with mask
func (c Category) Matches(mask Category) bool {
	return c&mask != 0
}

func (c Category) String() string {
	var names []string
	for name, cat := range categoryNames {
		if cat != CategoryNone && c&cat == cat {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

// ParseCategory resolves a case-insensitive category name, as written in scene files
func ParseCategory(name string) (Category, bool) {
	c, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
