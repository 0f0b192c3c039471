package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"griefingcounter/internal/models"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "pu_human_enemy_npc_juggernaut", Normalize("PU_Human_Enemy_NPC_Juggernaut_12345"))
	assert.Equal(t, "vlk_enemy", Normalize(" vlk_enemy_456 "))
	assert.Equal(t, "plain_name", Normalize("plain_name"))
	// Only a trailing numeric suffix is stripped.
	assert.Equal(t, "npc_01_guard", Normalize("NPC_01_Guard"))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"pu_human_enemy_npc_pilot_12345", models.CategoryPilot},
		{"vlk_enemy_456", models.CategoryAnimal},
		{"kopion_adult_87", models.CategoryAnimal},
		{"pu_human_enemy_gunner_33", models.CategoryGunner},
		{"pu_human_enemy_groundcombat_npc_soldier_7", models.CategoryGround},
		{"pu_human_populace_civilian_11", models.CategoryCivilian},
		{"pu_human_populace_worker_11", models.CategoryWorker},
		{"pu_human_security_guard_2", models.CategoryLawEnforcement},
		{"pu_pirate_boarding_5", models.CategoryPirate},
		{"pu_human_ship_engineer_9", models.CategoryTechnical},
		{"pu_test_dummy", models.CategoryTest},
		{"pu_flair_bench_01", models.CategoryGround},
		{"pu_hazard_turret_4", models.CategoryGround},
		{"pu_mystery_entity_42", models.CategoryUncategorized},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.name), "name %q", tc.name)
	}
}

func TestClassifyCompositeRulesWinOverKeywords(t *testing.T) {
	// flair+unknown and hangar+unknown resolve before any keyword fallback.
	assert.Equal(t, models.CategoryUnknown, Classify("unknown_flair_chair_2"))
	assert.Equal(t, models.CategoryUnknown, Classify("hangar_unknown_fixture_9"))

	// The archetype marker sub-dispatches instead of falling through.
	assert.Equal(t, models.CategoryGround, Classify("npc_archetypes_human_soldier_3"))
	assert.Equal(t, models.CategoryPilot, Classify("npc_archetypes_human_pilot_3"))
	assert.Equal(t, models.CategoryCivilian, Classify("npc_archetypes_human_prisoner_3"))
	assert.Equal(t, models.CategoryTechnical, Classify("npc_archetypes_human_techie_3"))
	assert.Equal(t, models.CategoryGround, Classify("npc_archetypes_human_unarmed_3"))

	// Hazard dungeon spawns: medics are technical, the rest ground.
	assert.Equal(t, models.CategoryTechnical, Classify("pu_hazard_dungeon_medic_1"))
	assert.Equal(t, models.CategoryGround, Classify("pu_hazard_dungeon_exec_1"))
	assert.Equal(t, models.CategoryGround, Classify("pu_hazard_dungeon_raider_1"))
}

func TestClassifyIsDeterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, models.CategoryPilot, Classify("pu_human_enemy_npc_pilot_12345"))
		assert.Equal(t, models.CategoryAnimal, Classify("vlk_enemy_456"))
	}
}

func TestIsNPC(t *testing.T) {
	assert.True(t, IsNPC("PU_Human_Enemy_NPC_Pilot_12345"))
	assert.True(t, IsNPC("vlk_enemy_456"))
	assert.True(t, IsNPC("kopion_pup_1"))
	assert.True(t, IsNPC("AIModule_Unmanned_Turret_2"))
	// Decorative unknowns count as NPC even without a marker prefix.
	assert.True(t, IsNPC("unknown_flair_chair_2"))

	assert.False(t, IsNPC("test_player"))
	assert.False(t, IsNPC("SomeRandomPlayer"))
	// A player whose handle contains an NPC keyword stays a player.
	assert.False(t, IsNPC("PilotFan99"))
}
