package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deathLine = `<2025-03-01 12:01:00> [SC] <Actor Death> An Actor died! 'victim1' [123] in zone 'TestZone' killed by 'test_player' [456] using 'TestWeapon' [Class TestClass] with damage type 'TestDamage'`

func TestParseDeathLine(t *testing.T) {
	ev := Parse(deathLine)
	require.NotNil(t, ev)
	assert.Equal(t, "2025-03-01 12:01:00", ev.Timestamp)
	assert.Equal(t, "victim1", ev.Victim)
	assert.Equal(t, "test_player", ev.Killer)
	assert.Equal(t, "TestZone", ev.Zone)
	assert.Equal(t, "TestWeapon", ev.Weapon)
	assert.Equal(t, "TestClass", ev.DamageClass)
	assert.Equal(t, "TestDamage", ev.DamageType)
}

func TestParseIgnoresOtherLines(t *testing.T) {
	lines := []string{
		"",
		"<2025-03-01 12:00:00> [SC] Some other log message that doesn't match the pattern",
		"<2025-03-01 12:00:00> [SC] <Vehicle Destruction> 'ship1' [1] destroyed",
		"An Actor died! 'victim1' [123]", // no timestamp, no marker
	}
	for _, line := range lines {
		assert.Nil(t, Parse(line), "line %q should not match", line)
	}
}

func TestParseMarkerCaseInsensitive(t *testing.T) {
	line := `<2025-03-01 12:01:00> [SC] <ACTOR DEATH> An Actor died! 'v' [1] IN ZONE 'z' KILLED BY 'k' [2] USING 'w' [CLASS c] WITH DAMAGE TYPE 'd'`
	ev := Parse(line)
	require.NotNil(t, ev)
	assert.Equal(t, "v", ev.Victim)
	assert.Equal(t, "k", ev.Killer)
}

func TestParseToleratesInvalidUTF8(t *testing.T) {
	// A broken byte in the noise prefix must not break matching.
	line := "<2025-03-01 12:01:00> [SC] \xff<Actor Death> An Actor died! 'v' [1] in zone 'z' killed by 'k' [2] using 'w' [Class c] with damage type 'd'"
	ev := Parse(line)
	require.NotNil(t, ev)
	assert.Equal(t, "v", ev.Victim)
}

func TestParseKeepsNamesVerbatim(t *testing.T) {
	line := `<2025-03-01 12:01:00> [SC] <Actor Death> An Actor died! 'PU_Human_Enemy_NPC_Juggernaut_12345' [100] in zone 'OOC_Stanton_1a' killed by 'Some Player' [200] using 'behr_rifle_ballistic_01_555' [Class Rifle] with damage type 'Bullet'`
	ev := Parse(line)
	require.NotNil(t, ev)
	assert.Equal(t, "PU_Human_Enemy_NPC_Juggernaut_12345", ev.Victim)
	assert.Equal(t, "Some Player", ev.Killer)
	assert.Equal(t, "behr_rifle_ballistic_01_555", ev.Weapon)
}
