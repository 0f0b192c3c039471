package stats

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"griefingcounter/internal/classifier"
	"griefingcounter/internal/models"
	"griefingcounter/internal/store"
)

// RecentLimit caps the recent-events listing.
const RecentLimit = 100

// boardSize caps each leaderboard.
const boardSize = 10

// Engine answers stats queries for one tracked player by combining the event
// store with the classifier. Category filtering happens here, not in SQL,
// because attribution needs the rule set and the category cache.
type Engine struct {
	store  *store.Store
	player string
	logger *zap.Logger
}

func NewEngine(st *store.Store, player string, logger *zap.Logger) *Engine {
	return &Engine{store: st, player: strings.ToLower(strings.TrimSpace(player)), logger: logger}
}

// categoryOf attributes an actor name for filtering and breakdowns: the
// "unknown" killer sentinel, a human player, or the NPC category from the
// cache (falling back to a fresh classification).
func categoryOf(name string, cache map[string]string) string {
	norm := classifier.Normalize(name)
	if norm == models.UnknownActor {
		return models.CategoryUnknown
	}
	if !classifier.IsNPC(norm) {
		return models.CategoryPlayers
	}
	if cat, ok := cache[norm]; ok {
		return cat
	}
	return classifier.Classify(norm)
}

// ComputeStats aggregates kills, deaths and suicides for the filter window.
// Suicides are counted regardless of category filters; kills and deaths only
// include events whose other party passes the filter.
func (e *Engine) ComputeStats(ctx context.Context, f models.Filters) (*models.StatsSummary, error) {
	e.logger.Debug("Computing stats",
		zap.String("player", e.player), zap.Timep("from", f.From), zap.Timep("to", f.To))
	cache, err := e.store.Categories(ctx)
	if err != nil {
		return nil, err
	}

	killRows, err := e.store.Events(ctx,
		store.NewQuery().KillerIs(e.player).VictimNot(e.player).DateWindow(f.From, f.To))
	if err != nil {
		return nil, err
	}
	deathRows, err := e.store.Events(ctx,
		store.NewQuery().VictimIs(e.player).KillerNot(e.player).DateWindow(f.From, f.To))
	if err != nil {
		return nil, err
	}
	suicides, err := e.store.CountEvents(ctx,
		store.NewQuery().KillerIs(e.player).VictimIs(e.player).DateWindow(f.From, f.To))
	if err != nil {
		return nil, err
	}

	sum := &models.StatsSummary{
		Suicides:       suicides,
		KillBreakdown:  make(map[string]int),
		DeathBreakdown: make(map[string]int),
	}
	for _, ev := range killRows {
		cat := categoryOf(ev.Victim, cache)
		if !f.Allows(cat) {
			continue
		}
		sum.Kills++
		sum.KillBreakdown[cat]++
	}
	for _, ev := range deathRows {
		cat := categoryOf(ev.Killer, cache)
		if !f.Allows(cat) {
			continue
		}
		sum.Deaths++
		sum.DeathBreakdown[cat]++
	}

	if sum.Deaths == 0 {
		sum.KDRatio = math.Inf(1)
	} else {
		sum.KDRatio = float64(sum.Kills) / float64(sum.Deaths)
	}
	return sum, nil
}

// RecentEvents lists the newest events where the player is killer or victim
// (suicides excluded), filtered by the other party's category, capped at
// limit (at most RecentLimit). Names are returned with instance-ID suffixes
// stripped for display; matching already happened on the raw values.
func (e *Engine) RecentEvents(ctx context.Context, f models.Filters, limit int) ([]models.KillEvent, error) {
	if limit <= 0 || limit > RecentLimit {
		limit = RecentLimit
	}
	cache, err := e.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	q := store.NewQuery().Involves(e.player).DateWindow(f.From, f.To).NewestFirst()
	if len(f.Categories) == 0 {
		// No category filter means no rows get dropped below, so the cap
		// can go into the query itself.
		q.Limit(limit)
	}
	rows, err := e.store.Events(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]models.KillEvent, 0, limit)
	for _, ev := range rows {
		other := ev.Killer
		if strings.EqualFold(strings.TrimSpace(ev.Killer), e.player) {
			other = ev.Victim
		}
		if !f.Allows(categoryOf(other, cache)) {
			continue
		}
		ev.Victim = classifier.StripID(ev.Victim)
		ev.Killer = classifier.StripID(ev.Killer)
		ev.Weapon = classifier.StripID(ev.Weapon)
		ev.Zone = classifier.StripID(ev.Zone)
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Leaderboards returns the top-10 victims of the player and the top-10 killers
// of the player, grouped case-insensitively with instance IDs stripped,
// suicides excluded and the unattributed-killer sentinel dropped from the
// death board. Equal counts order by name ascending.
func (e *Engine) Leaderboards(ctx context.Context, f models.Filters) (killBoard, deathBoard []models.LeaderboardRow, err error) {
	cache, err := e.store.Categories(ctx)
	if err != nil {
		return nil, nil, err
	}

	killRows, err := e.store.Events(ctx,
		store.NewQuery().KillerIs(e.player).VictimNot(e.player).DateWindow(f.From, f.To))
	if err != nil {
		return nil, nil, err
	}
	deathRows, err := e.store.Events(ctx,
		store.NewQuery().VictimIs(e.player).KillerNot(e.player).DateWindow(f.From, f.To))
	if err != nil {
		return nil, nil, err
	}

	killBoard = topCounts(killRows, f, cache, false, func(ev models.KillEvent) string { return ev.Victim })
	deathBoard = topCounts(deathRows, f, cache, true, func(ev models.KillEvent) string { return ev.Killer })
	return killBoard, deathBoard, nil
}

func topCounts(rows []models.KillEvent, f models.Filters, cache map[string]string,
	skipUnknown bool, party func(models.KillEvent) string) []models.LeaderboardRow {

	counts := make(map[string]int)
	display := make(map[string]string)
	for _, ev := range rows {
		name := party(ev)
		norm := classifier.Normalize(name)
		// An actor literally named "unknown" (or "Unknown_123") collides
		// with the unattributed-killer sentinel and is dropped with it.
		if skipUnknown && norm == models.UnknownActor {
			continue
		}
		if !f.Allows(categoryOf(name, cache)) {
			continue
		}
		counts[norm]++
		if _, seen := display[norm]; !seen {
			display[norm] = classifier.StripID(name)
		}
	}

	board := make([]models.LeaderboardRow, 0, len(counts))
	for norm, n := range counts {
		board = append(board, models.LeaderboardRow{Name: display[norm], Count: n})
	}
	sort.Slice(board, func(i, j int) bool {
		if board[i].Count != board[j].Count {
			return board[i].Count > board[j].Count
		}
		return strings.ToLower(board[i].Name) < strings.ToLower(board[j].Name)
	})
	if len(board) > boardSize {
		board = board[:boardSize]
	}
	return board
}
