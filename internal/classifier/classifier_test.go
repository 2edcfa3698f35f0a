package classifier

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowPattern is the single-expression form of the canonical allow-list.
// The decision table must agree with it on every key.
var allowPattern = regexp.MustCompile(`^(block\.minecraft\.[^.]*` +
	`|entity\.minecraft\.[^.]*` +
	`|item\.minecraft\.[^.]*` +
	`|item\.minecraft\.[^.]*\.effect\.[^.]*` +
	`|biome\..*` +
	`|effect\.minecraft\.[^.]*` +
	`|enchantment\.minecraft\..*` +
	`|upgrade\..*` +
	`|filled_map\..*` +
	`|trim_pattern\..*` +
	`|advancements\.[^.]*\.[^.]*\.title)$`)

func patternValid(key string) bool {
	for _, ex := range canonicalExclusions {
		if key == ex {
			return false
		}
	}
	return !strings.Contains(key, bannedSubstring) && allowPattern.MatchString(key)
}

// sampleKeys is a slice of a real en_us file plus edge shapes.
var sampleKeys = []string{
	"block.minecraft.stone",
	"block.minecraft.stone.some_extra",
	"block.minecraft.bed.occupied",
	"block.minecraft.set_spawn",
	"block.minecraft.",
	"block.minecraft",
	"block.stone",
	"entity.minecraft.zombie",
	"entity.minecraft.villager.farmer",
	"entity.minecraft.falling_block_type",
	"item.minecraft.diamond_sword",
	"item.minecraft.potion.effect.speed",
	"item.minecraft.tipped_arrow.effect.water",
	"item.minecraft.potion.effect",
	"item.minecraft.potion.effect.speed.long",
	"item.minecraft.potion.color.red",
	"item.minecraft.angler_pottery_shard",
	"item.minecraft.smithing_template.upgrade",
	"biome.minecraft.forest",
	"biome.minecraft.forest.any.depth",
	"biome.",
	"biome",
	"effect.minecraft.speed",
	"effect.minecraft.speed.extra",
	"effect.none",
	"enchantment.minecraft.sharpness",
	"enchantment.minecraft.sweeping",
	"enchantment.minecraft.sweeping_edge",
	"enchantment.minecraft.sharpness.desc",
	"enchantment.level.1",
	"upgrade.minecraft.netherite_upgrade",
	"filled_map.id",
	"filled_map.level",
	"filled_map.locked",
	"filled_map.scale",
	"filled_map.unknown",
	"filled_map.buried_treasure",
	"filled_map.monument",
	"trim_pattern.minecraft.coast",
	"advancements.story.iron_tools.title",
	"advancements.story.iron_tools.description",
	"advancements.story.title",
	"advancements.story.iron_tools.title.extra",
	"advancements.adventure.pottery_shard.title",
	"gui.done",
	"options.fov",
	"",
	".",
	"..",
	"item..effect.",
	"ITEM.MINECRAFT.STONE",
	"block.minecraft.石头",
	"block.minecraft.stone\n",
	"block.minecraft.a\nb",
	"biome.a\nb",
	"biome.minecraft.forest\n",
	"enchantment.minecraft.a\nb",
	"upgrade.\n",
	"advancements.a\nb.c.title",
}

func TestCanonical_Properties(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"top-level block", "block.minecraft.stone", true},
		{"block sub-key rejected", "block.minecraft.stone.some_extra", false},
		{"top-level entity", "entity.minecraft.zombie", true},
		{"entity sub-key rejected", "entity.minecraft.villager.farmer", false},
		{"top-level item", "item.minecraft.diamond_sword", true},
		{"item sub-key rejected", "item.minecraft.potion.color.red", false},
		{"item effect exception", "item.minecraft.potion.effect.speed", true},
		{"item effect one level too deep", "item.minecraft.potion.effect.speed.long", false},
		{"biome any depth", "biome.minecraft.forest.any.depth", true},
		{"effect name", "effect.minecraft.speed", true},
		{"effect sub-key rejected", "effect.minecraft.speed.extra", false},
		{"enchantment any depth", "enchantment.minecraft.sharpness.desc", true},
		{"enchantment needs namespace", "enchantment.level.1", false},
		{"upgrade any depth", "upgrade.minecraft.netherite_upgrade", true},
		{"filled map not excluded", "filled_map.buried_treasure", true},
		{"trim pattern any depth", "trim_pattern.minecraft.coast", true},
		{"advancement title", "advancements.story.iron_tools.title", true},
		{"advancement description rejected", "advancements.story.iron_tools.description", false},
		{"advancement title too shallow", "advancements.story.title", false},
		{"unrelated namespace", "gui.done", false},
		{"empty key", "", false},
		{"category is case sensitive", "ITEM.MINECRAFT.STONE", false},
		{"non-ascii name segment", "block.minecraft.石头", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, c.Valid(tt.key), "Valid(%q)", tt.key)
		})
	}
}

func TestCanonical_ExclusionPrecedence(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	for _, key := range CanonicalExclusions() {
		d := c.Classify(key)
		assert.False(t, d.Valid, "excluded key %q must be invalid", key)
		assert.Equal(t, "exclusion", d.Rule, "key %q", key)
		// Without the exclusion every one of these would match an allow pattern.
		assert.True(t, allowPattern.MatchString(key), "key %q should match an allow pattern", key)
	}
}

func TestCanonical_SubstringBan(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	for _, key := range []string{
		"item.minecraft.angler_pottery_shard",
		"item.minecraft.pottery_shard",
		"biome.pottery_shard.anything",
		"advancements.adventure.pottery_shard.title",
		"pottery_shard",
		"filled_map.xpottery_shardx",
	} {
		d := c.Classify(key)
		assert.False(t, d.Valid, "key %q", key)
		assert.Equal(t, "substring-ban", d.Rule, "key %q", key)
	}
}

func TestCanonical_AgreesWithPattern(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	for _, key := range sampleKeys {
		assert.Equal(t, patternValid(key), c.Valid(key), "key %q", key)
	}
}

func TestCanonical_MultiLineTail(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	for _, key := range []string{"biome.a\nb", "enchantment.minecraft.a\nb", "filled_map.x\n", "trim_pattern.\ncoast"} {
		assert.False(t, c.Valid(key), "key %q", key)
	}
	// single-segment names may hold any non-dot byte
	assert.True(t, c.Valid("block.minecraft.a\nb"))
}

func TestClassify_ReportsRuleAndCategory(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	d := c.Classify("item.minecraft.potion.effect.speed")
	assert.True(t, d.Valid)
	assert.Equal(t, "item-effect", d.Rule)
	assert.Equal(t, CategoryItem, d.Category)

	d = c.Classify("gui.done")
	assert.False(t, d.Valid)
	assert.Equal(t, DefaultRuleName, d.Rule)
	assert.Equal(t, CategoryOther, d.Category)
}

func TestLegacy_CommonCasesMatchCanonical(t *testing.T) {
	t.Parallel()
	canonical := NewCanonical()
	legacy := New(Legacy())

	for _, key := range []string{
		"block.minecraft.stone",
		"block.minecraft.stone.some_extra",
		"entity.minecraft.zombie",
		"entity.minecraft.villager.farmer",
		"item.minecraft.diamond_sword",
		"item.minecraft.potion.effect.speed",
		"item.minecraft.potion.color.red",
		"item.minecraft.angler_pottery_shard",
		"biome.minecraft.forest.any.depth",
		"effect.minecraft.speed",
		"enchantment.minecraft.sharpness",
		"filled_map.id",
		"filled_map.monument",
		"trim_pattern.minecraft.coast",
		"upgrade.minecraft.netherite_upgrade",
		"advancements.story.iron_tools.title",
		"advancements.story.iron_tools.description",
		"gui.done",
	} {
		assert.Equal(t, canonical.Valid(key), legacy.Valid(key), "key %q", key)
	}
}

// The legacy table has known gaps. These tests pin them so a change to either
// table is a deliberate decision, not an accident.
func TestLegacy_KnownDivergences(t *testing.T) {
	t.Parallel()
	canonical := NewCanonical()
	legacy := New(Legacy())

	tests := []struct {
		name string
		key  string
	}{
		{"sweeping is missing from the legacy exclusion set", "enchantment.minecraft.sweeping"},
		{"legacy only rejects sub-keys for block, item and entity", "effect.minecraft.speed.extra"},
		{"legacy accepts advancement titles before the substring ban", "advancements.adventure.pottery_shard.title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, canonical.Valid(tt.key))
			assert.True(t, legacy.Valid(tt.key))
		})
	}

	assert.NotContains(t, LegacyExclusions(), "enchantment.minecraft.sweeping")
	assert.Contains(t, CanonicalExclusions(), "enchantment.minecraft.sweeping")
}

func TestExclusionsAreCopies(t *testing.T) {
	t.Parallel()

	ex := CanonicalExclusions()
	ex[0] = "gui.done"
	assert.False(t, NewCanonical().Valid("gui.done"))
	assert.Equal(t, "block.minecraft.set_spawn", CanonicalExclusions()[0])
}

func TestNew_CopiesRules(t *testing.T) {
	t.Parallel()

	rs := Canonical()
	c := New(rs)
	rs.Rules[0] = accept("everything", func(Key) bool { return true })

	assert.False(t, c.Valid("gui.done"))
}

func TestByName(t *testing.T) {
	t.Parallel()

	rs, err := ByName("")
	require.NoError(t, err)
	assert.Equal(t, CanonicalName, rs.Name)

	rs, err = ByName(" Legacy ")
	require.NoError(t, err)
	assert.Equal(t, LegacyName, rs.Name)

	_, err = ByName("regex")
	require.Error(t, err)
}

func TestClassifier_ConcurrentUse(t *testing.T) {
	t.Parallel()
	c := NewCanonical()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, key := range sampleKeys {
				assert.Equal(t, patternValid(key), c.Valid(key))
			}
		}()
	}
	wg.Wait()
}

func FuzzCanonicalClassify(f *testing.F) {
	for _, key := range sampleKeys {
		f.Add(key)
	}
	c := NewCanonical()

	f.Fuzz(func(t *testing.T, key string) {
		if got, want := c.Valid(key), patternValid(key); got != want {
			t.Fatalf("Valid(%q) = %v, pattern says %v", key, got, want)
		}
		// Legacy must be total too.
		_ = New(Legacy()).Classify(key)
	})
}
