package parser

import (
	"regexp"
	"strings"

	"griefingcounter/internal/models"
)

// actorDeathRegex matches the game's death notification line:
//
//	<2025-03-01 12:01:00> [SC] <Actor Death> An Actor died! 'victim' [123] in zone 'Zone'
//	killed by 'killer' [456] using 'Weapon' [Class SomeClass] with damage type 'Damage'
//
// The field order and delimiters are an external contract of the game client.
var actorDeathRegex = regexp.MustCompile(`(?i)^<(?P<timestamp>[^>]+)>.*?<Actor Death>.*?'(?P<victim>[^']+)' \[\d+\].*?in zone '(?P<zone>[^']+)'.*?killed by '(?P<killer>[^']+)' \[\d+\].*?using '(?P<weapon>[^']+)' \[Class (?P<class>[^]]+)\].*?with damage type '(?P<damage_type>[^']+)'`)

var groupIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, name := range actorDeathRegex.SubexpNames() {
		if name != "" {
			idx[name] = i
		}
	}
	return idx
}()

// Parse extracts a kill event from one raw log line. Almost every line of the
// game log is unrelated noise, so a non-matching line returns nil, never an
// error. Invalid UTF-8 is replaced rather than rejected.
func Parse(line string) *models.KillEvent {
	line = strings.ToValidUTF8(strings.TrimSpace(line), "�")
	m := actorDeathRegex.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &models.KillEvent{
		Timestamp:   m[groupIndex["timestamp"]],
		Victim:      m[groupIndex["victim"]],
		Killer:      m[groupIndex["killer"]],
		Zone:        m[groupIndex["zone"]],
		Weapon:      m[groupIndex["weapon"]],
		DamageClass: m[groupIndex["class"]],
		DamageType:  m[groupIndex["damage_type"]],
	}
}
