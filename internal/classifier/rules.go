package classifier

import (
	"regexp"
	"strings"

	"griefingcounter/internal/models"
)

var instanceIDSuffix = regexp.MustCompile(`_\d+$`)

// Normalize lowercases a raw actor name and strips the trailing "_<digits>"
// instance ID the engine appends to spawned entities.
// "PU_Human_Enemy_NPC_Juggernaut_12345" → "pu_human_enemy_npc_juggernaut".
func Normalize(raw string) string {
	return instanceIDSuffix.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), "")
}

// StripID removes the trailing instance ID but keeps the original casing.
// Display-only; matching always goes through Normalize.
func StripID(raw string) string {
	return instanceIDSuffix.ReplaceAllString(strings.TrimSpace(raw), "")
}

// npcPrefixes are the entity-name prefixes that mark a non-player actor: the
// generic NPC prefixes plus the creature species.
var npcPrefixes = []string{
	"pu_", "npc_", "aimodule_",
	"vlk_", "kopion_", "marok_", "quasigrazer_",
}

// rule is one classification step: first matching rule wins.
type rule struct {
	match    func(name string) bool
	category func(name string) string
}

func static(cat string) func(string) string {
	return func(string) string { return cat }
}

func containsAny(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, sub := range subs {
			if strings.Contains(name, sub) {
				return true
			}
		}
		return false
	}
}

func containsAll(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, sub := range subs {
			if !strings.Contains(name, sub) {
				return false
			}
		}
		return true
	}
}

func hasPrefixAny(prefixes ...string) func(string) bool {
	return func(name string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				return true
			}
		}
		return false
	}
}

// rules is evaluated top to bottom over the normalized name. Order matters:
// the composite checks must run before the plain keyword fallbacks they would
// otherwise shadow (e.g. "hangar…unknown" before the bare "hazard" catch-all).
var rules = []rule{
	// Decorative flair props and hangar furniture report as unknown entities.
	{containsAll("flair", "unknown"), static(models.CategoryUnknown)},
	{containsAll("hangar", "unknown"), static(models.CategoryUnknown)},

	{hasPrefixAny("vlk", "kopion", "marok", "quasigrazer"), static(models.CategoryAnimal)},

	// Generic archetype entities carry their role behind the marker.
	{containsAny("npc_archetypes"), func(name string) string {
		switch {
		case strings.Contains(name, "soldier"), strings.Contains(name, "juggernaut"):
			return models.CategoryGround
		case strings.Contains(name, "pilot"):
			return models.CategoryPilot
		case strings.Contains(name, "techie"), strings.Contains(name, "technical"):
			return models.CategoryTechnical
		case strings.Contains(name, "prisoner"), strings.Contains(name, "civilian"):
			return models.CategoryCivilian
		default:
			return models.CategoryGround
		}
	}},

	// Hazard dungeon spawns are combat NPCs except the medics.
	{containsAll("hazard", "dungeon"), func(name string) string {
		switch {
		case strings.Contains(name, "exec"):
			return models.CategoryGround
		case strings.Contains(name, "medic"):
			return models.CategoryTechnical
		default:
			return models.CategoryGround
		}
	}},

	{containsAny("pilot"), static(models.CategoryPilot)},
	{containsAny("gunner"), static(models.CategoryGunner)},
	{containsAny("ground", "soldier", "cqc", "juggernaut", "sniper", "gangster", "grunt", "kareah", "militia"),
		static(models.CategoryGround)},
	{func(name string) bool {
		return strings.Contains(name, "civilian") ||
			(strings.Contains(name, "populace") && !strings.Contains(name, "worker"))
	}, static(models.CategoryCivilian)},
	{containsAny("worker", "shopkeeper", "vendor", "gardener", "farmer"), static(models.CategoryWorker)},
	{containsAny("law", "security", "guard"), static(models.CategoryLawEnforcement)},
	{containsAny("pirate"), static(models.CategoryPirate)},
	{containsAny("engineer", "technical", "techie", "medic"), static(models.CategoryTechnical)},
	{containsAny("test"), static(models.CategoryTest)},
	{containsAny("flair"), static(models.CategoryGround)},
	{containsAny("hazard"), static(models.CategoryGround)},
}

// Classify maps a raw actor name to a category by running the ordered rules
// over its normalized form. Names no rule recognizes come back uncategorized
// and stay eligible for a later reclassification pass.
func Classify(raw string) string {
	name := Normalize(raw)
	for _, r := range rules {
		if r.match(name) {
			return r.category(name)
		}
	}
	return models.CategoryUncategorized
}

// IsNPC reports whether a raw actor name denotes a non-player entity: either
// it carries an NPC marker prefix, or the rules resolve it to a creature or an
// unknown decorative entity. Every other name is a human player identity.
func IsNPC(raw string) bool {
	name := Normalize(raw)
	for _, p := range npcPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	switch Classify(name) {
	case models.CategoryAnimal, models.CategoryUnknown:
		return true
	}
	return false
}
