package classifier

import (
	"fmt"
	"slices"
	"strings"
)

// Built-in rule set names.
const (
	CanonicalName = "canonical"
	LegacyName    = "legacy"
)

// bannedSubstring marks pottery shard variants, dropped in every namespace.
const bannedSubstring = "pottery_shard"

// canonicalExclusions are keys that match an allow pattern but are not game
// terms (UI messages, map tooltips, internal labels).
var canonicalExclusions = []string{
	"block.minecraft.set_spawn",
	"enchantment.minecraft.sweeping",
	"entity.minecraft.falling_block_type",
	"filled_map.id",
	"filled_map.level",
	"filled_map.locked",
	"filled_map.scale",
	"filled_map.unknown",
}

// legacyExclusions is the older list. It lacks
// "enchantment.minecraft.sweeping"; the legacy table keeps that gap as-is.
var legacyExclusions = []string{
	"block.minecraft.set_spawn",
	"entity.minecraft.falling_block_type",
	"filled_map.id",
	"filled_map.level",
	"filled_map.locked",
	"filled_map.scale",
	"filled_map.unknown",
}

// legacyPrefixes is the namespace allow-list of the legacy table.
var legacyPrefixes = []string{
	"block.minecraft.",
	"entity.minecraft.",
	"item.minecraft.",
	"biome.",
	"effect.minecraft.",
	"enchantment.minecraft.",
	"upgrade.",
	"filled_map.",
	"trim_pattern.",
}

// CanonicalExclusions returns a copy of the canonical exclusion set.
func CanonicalExclusions() []string { return slices.Clone(canonicalExclusions) }

// LegacyExclusions returns a copy of the legacy exclusion set.
func LegacyExclusions() []string { return slices.Clone(legacyExclusions) }

// ByName returns the built-in rule set called name.
func ByName(name string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CanonicalName, "":
		return Canonical(), nil
	case LegacyName:
		return Legacy(), nil
	default:
		return RuleSet{}, fmt.Errorf("classifier: unknown rule set %q", name)
	}
}

// Canonical is the pattern allow-list table: exclusions and the substring ban
// first, then one allow rule per key shape; anything else is rejected.
func Canonical() RuleSet {
	return RuleSet{
		Name: CanonicalName,
		Rules: []Rule{
			reject("exclusion", inSet(canonicalExclusions)),
			reject("substring-ban", containsBanned),
			accept("block-name", topLevelName(CategoryBlock)),
			accept("entity-name", topLevelName(CategoryEntity)),
			accept("item-name", topLevelName(CategoryItem)),
			accept("item-effect", itemEffect),
			accept("biome", anyDepth(CategoryBiome)),
			accept("effect-name", topLevelName(CategoryEffect)),
			accept("enchantment", namespacedAnyDepth(CategoryEnchantment)),
			accept("upgrade", anyDepth(CategoryUpgrade)),
			accept("filled-map", anyDepth(CategoryFilledMap)),
			accept("trim-pattern", anyDepth(CategoryTrimPattern)),
			accept("advancement-title", advancementTitle),
		},
		Default: Reject,
	}
}

// Legacy is the prefix allow-list table with overrides. It differs from
// Canonical on "enchantment.minecraft.sweeping" and on effect sub-keys such
// as "effect.minecraft.speed.extra", both of which it accepts.
func Legacy() RuleSet {
	return RuleSet{
		Name: LegacyName,
		Rules: []Rule{
			accept("advancement-title", advancementTitle),
			reject("namespace-prefix", not(hasPrefix(legacyPrefixes))),
			reject("exclusion", inSet(legacyExclusions)),
			reject("substring-ban", containsBanned),
			accept("item-effect", itemEffect),
			reject("sub-key", subKey),
		},
		Default: Accept,
	}
}

func inSet(keys []string) func(Key) bool {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return func(k Key) bool {
		_, ok := set[k.Raw]
		return ok
	}
}

func containsBanned(k Key) bool {
	return strings.Contains(k.Raw, bannedSubstring)
}

func hasPrefix(prefixes []string) func(Key) bool {
	prefixes = slices.Clone(prefixes)
	return func(k Key) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(k.Raw, p) {
				return true
			}
		}
		return false
	}
}

// topLevelName matches <category>.minecraft.<name> with no further segments.
func topLevelName(c Category) func(Key) bool {
	return func(k Key) bool {
		return k.Category == c && k.Depth() == 3 && k.namespaced()
	}
}

// namespacedAnyDepth matches <category>.minecraft.<anything>. The tail may
// not span lines.
func namespacedAnyDepth(c Category) func(Key) bool {
	return func(k Key) bool {
		return k.Category == c && k.namespaced() && singleLine(k)
	}
}

// anyDepth matches <category>.<anything>. The tail may not span lines.
func anyDepth(c Category) func(Key) bool {
	return func(k Key) bool {
		return k.Category == c && k.Depth() >= 2 && singleLine(k)
	}
}

func singleLine(k Key) bool {
	return !strings.ContainsRune(k.Raw, '\n')
}

// itemEffect matches item.minecraft.<item>.effect.<effect>, e.g. potion and
// tipped arrow variants.
func itemEffect(k Key) bool {
	return k.Category == CategoryItem && k.Depth() == 5 && k.namespaced() && k.Segments[3] == "effect"
}

// advancementTitle matches advancements.<tab>.<id>.title.
func advancementTitle(k Key) bool {
	return k.Category == CategoryAdvancements && k.Depth() == 4 && k.Segments[3] == "title"
}

// subKey matches block, item and entity keys that carry a property after the
// top-level name, e.g. block.minecraft.bed.occupied.
func subKey(k Key) bool {
	switch k.Category {
	case CategoryBlock, CategoryItem, CategoryEntity:
		return k.Depth() > 3 && k.namespaced()
	}
	return false
}
