package models

import "time"

// KillEvent is one recorded actor death from the game log.
// Timestamp keeps the original log format ("2006-01-02 15:04:05"), which sorts
// lexicographically, so the store never needs to parse it.
type KillEvent struct {
	Timestamp   string
	Victim      string
	Killer      string
	Zone        string
	Weapon      string
	DamageClass string
	DamageType  string
}

// Bookmark tracks the byte offset up to which a log file has been ingested.
type Bookmark struct {
	FilePath   string
	LastOffset int64
}

// UnknownActor is the upstream log's sentinel for an unattributed killer
// (environment deaths arrive with this literal name).
const UnknownActor = "unknown"

// NPC categories as stored in the category cache.
const (
	CategoryPilot          = "pilot"
	CategoryGunner         = "gunner"
	CategoryGround         = "ground"
	CategoryCivilian       = "civilian"
	CategoryWorker         = "worker"
	CategoryLawEnforcement = "lawenforcement"
	CategoryPirate         = "pirate"
	CategoryTechnical      = "technical"
	CategoryTest           = "test"
	CategoryAnimal         = "animal"
	CategoryUncategorized  = "uncategorized"
)

// Pseudo-categories used only for filtering and breakdowns, never cached.
const (
	CategoryPlayers = "players"
	CategoryUnknown = "unknown"
)

// NPCCategories lists every cacheable category, in display order.
var NPCCategories = []string{
	CategoryPilot,
	CategoryGunner,
	CategoryGround,
	CategoryCivilian,
	CategoryWorker,
	CategoryLawEnforcement,
	CategoryPirate,
	CategoryTechnical,
	CategoryTest,
	CategoryAnimal,
	CategoryUncategorized,
}

// Filters restricts stats queries to a calendar-day window and a set of
// enabled categories. Both bounds are whole days: From is inclusive from its
// midnight, To is inclusive through its last second (events before the
// midnight after To).
type Filters struct {
	From *time.Time
	To   *time.Time

	// Categories maps category name → enabled. Keys are the NPC categories
	// plus "players" and "unknown". A nil map enables everything; a missing
	// key counts as enabled.
	Categories map[string]bool
}

// Allows reports whether events attributed to cat pass the category filter.
func (f Filters) Allows(cat string) bool {
	if f.Categories == nil {
		return true
	}
	enabled, ok := f.Categories[cat]
	if !ok {
		return true
	}
	return enabled
}

// StatsSummary carries the aggregated numbers for one player and filter set.
// Kills and Deaths are already filtered and suicide-adjusted; Suicides is
// always the unfiltered count for the date window.
type StatsSummary struct {
	Kills    int
	Deaths   int
	Suicides int

	// KDRatio is Kills/Deaths, +Inf when Deaths is zero.
	KDRatio float64

	// KillBreakdown buckets kills by the victim's category, DeathBreakdown
	// buckets deaths by the killer's category ("players", "unknown" or an
	// NPC category).
	KillBreakdown  map[string]int
	DeathBreakdown map[string]int
}

// LeaderboardRow is one entry of a top-10 board.
type LeaderboardRow struct {
	Name  string
	Count int
}
