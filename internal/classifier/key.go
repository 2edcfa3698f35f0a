// Package classifier decides which translation keys survive into the valid
// language files. Classification is a pure function of the key and a fixed
// rule table; a Classifier is safe for concurrent use.
package classifier

import "strings"

// Category is the namespace of a translation key, derived from its first
// dot-separated segment.
type Category string

const (
	CategoryBlock        Category = "block"
	CategoryItem         Category = "item"
	CategoryEntity       Category = "entity"
	CategoryBiome        Category = "biome"
	CategoryEffect       Category = "effect"
	CategoryEnchantment  Category = "enchantment"
	CategoryUpgrade      Category = "upgrade"
	CategoryFilledMap    Category = "filled_map"
	CategoryTrimPattern  Category = "trim_pattern"
	CategoryAdvancements Category = "advancements"
	CategoryOther        Category = "other"
)

func (c Category) String() string { return string(c) }

var knownCategories = map[string]Category{
	"block":        CategoryBlock,
	"item":         CategoryItem,
	"entity":       CategoryEntity,
	"biome":        CategoryBiome,
	"effect":       CategoryEffect,
	"enchantment":  CategoryEnchantment,
	"upgrade":      CategoryUpgrade,
	"filled_map":   CategoryFilledMap,
	"trim_pattern": CategoryTrimPattern,
	"advancements": CategoryAdvancements,
}

// CategoryOf returns the category of a raw key.
func CategoryOf(key string) Category {
	first, _, _ := strings.Cut(key, ".")
	if c, ok := knownCategories[first]; ok {
		return c
	}
	return CategoryOther
}

// namespace is the second segment used by the game's own registries.
const namespace = "minecraft"

// Key is a parsed translation key.
type Key struct {
	Raw      string
	Segments []string
	Category Category
}

// ParseKey splits raw on '.'. Empty segments are kept, so "a..b" has three
// segments and "a." has two.
func ParseKey(raw string) Key {
	return Key{
		Raw:      raw,
		Segments: strings.Split(raw, "."),
		Category: CategoryOf(raw),
	}
}

// Depth is the number of segments.
func (k Key) Depth() int { return len(k.Segments) }

// Segment returns segment i, or "" when out of range.
func (k Key) Segment(i int) string {
	if i < 0 || i >= len(k.Segments) {
		return ""
	}
	return k.Segments[i]
}

// namespaced reports whether the key has the form <category>.minecraft.<...>.
func (k Key) namespaced() bool {
	return k.Depth() >= 3 && k.Segments[1] == namespace
}
