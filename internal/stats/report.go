package stats

import (
	"fmt"
	"math"
	"strings"

	"griefingcounter/internal/models"
)

// categoryLabels for the rendered report, in display order.
var categoryLabels = []struct {
	key   string
	label string
}{
	{models.CategoryPilot, "NPC Pilot"},
	{models.CategoryGunner, "NPC Gunner"},
	{models.CategoryGround, "NPC Ground"},
	{models.CategoryCivilian, "NPC Civilian"},
	{models.CategoryWorker, "NPC Worker"},
	{models.CategoryLawEnforcement, "NPC Law Enforcement"},
	{models.CategoryPirate, "NPC Pirate"},
	{models.CategoryTechnical, "NPC Technical"},
	{models.CategoryTest, "NPC Test"},
	{models.CategoryAnimal, "NPC Animal"},
	{models.CategoryUncategorized, "NPC Uncategorized"},
}

// RenderText formats a summary as the human-readable report shown in the UI.
// Consumers wanting numbers should read the StatsSummary fields instead of
// parsing this.
func RenderText(sum *models.StatsSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Kills: %d\n", sum.Kills)
	fmt.Fprintf(&b, "Total Deaths (excl. suicides): %d\n", sum.Deaths)
	if math.IsInf(sum.KDRatio, 1) {
		b.WriteString("K/D Ratio (excl. suicides): inf\n\n")
	} else {
		fmt.Fprintf(&b, "K/D Ratio (excl. suicides): %.2f\n\n", sum.KDRatio)
	}

	b.WriteString("Kills Breakdown:\n")
	fmt.Fprintf(&b, "  Player Kills: %d\n", sum.KillBreakdown[models.CategoryPlayers])
	for _, c := range categoryLabels {
		fmt.Fprintf(&b, "  %s Kills: %d\n", c.label, sum.KillBreakdown[c.key])
	}

	b.WriteString("\nDeaths Breakdown:\n")
	fmt.Fprintf(&b, "  Player Deaths: %d\n", sum.DeathBreakdown[models.CategoryPlayers])
	fmt.Fprintf(&b, "  Unknown Deaths: %d\n", sum.DeathBreakdown[models.CategoryUnknown])
	fmt.Fprintf(&b, "  Suicides: %d\n", sum.Suicides)
	for _, c := range categoryLabels {
		fmt.Fprintf(&b, "  %s Deaths: %d\n", c.label, sum.DeathBreakdown[c.key])
	}
	return b.String()
}

// RenderRecent formats recent events as the scrolling event list text.
func RenderRecent(events []models.KillEvent) string {
	var b strings.Builder
	for _, ev := range events {
		fmt.Fprintf(&b, "Time: %s\n", ev.Timestamp)
		fmt.Fprintf(&b, "Killer: %s\n", ev.Killer)
		fmt.Fprintf(&b, "Killed: %s\n", ev.Victim)
		fmt.Fprintf(&b, "Weapon: %s\n", ev.Weapon)
		fmt.Fprintf(&b, "Class: %s\n", ev.DamageClass)
		fmt.Fprintf(&b, "Type: %s\n", ev.DamageType)
		fmt.Fprintf(&b, "Zone: %s\n", ev.Zone)
		b.WriteString("------------------------------------\n")
	}
	return b.String()
}
