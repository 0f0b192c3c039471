package store

import (
	"strings"
	"time"
)

// Query builds a parameterized predicate list over the kills table: a base
// clause plus optional clauses, never string-interpolated values.
type Query struct {
	where   []string
	args    []any
	orderBy string
	limit   int
}

// NewQuery starts an empty query (matches everything).
func NewQuery() *Query { return &Query{} }

// And appends one predicate clause with its arguments.
func (q *Query) And(expr string, args ...any) *Query {
	q.where = append(q.where, expr)
	q.args = append(q.args, args...)
	return q
}

// KillerIs matches events where the killer equals name, case-insensitively.
func (q *Query) KillerIs(name string) *Query {
	return q.And("LOWER(killer) = ?", strings.ToLower(name))
}

// KillerNot excludes events where the killer equals name, case-insensitively.
func (q *Query) KillerNot(name string) *Query {
	return q.And("LOWER(killer) <> ?", strings.ToLower(name))
}

// VictimIs matches events where the victim equals name, case-insensitively.
func (q *Query) VictimIs(name string) *Query {
	return q.And("LOWER(killed_player) = ?", strings.ToLower(name))
}

// VictimNot excludes events where the victim equals name, case-insensitively.
func (q *Query) VictimNot(name string) *Query {
	return q.And("LOWER(killed_player) <> ?", strings.ToLower(name))
}

// Involves matches events where name is killer or victim but not both, which
// also drops suicides.
func (q *Query) Involves(name string) *Query {
	lower := strings.ToLower(name)
	return q.And("(LOWER(killer) = ? OR LOWER(killed_player) = ?) AND NOT (LOWER(killer) = ? AND LOWER(killed_player) = ?)",
		lower, lower, lower, lower)
}

// DateWindow restricts to the calendar-day window [from 00:00, day after to).
// Nil bounds are open. Timestamps compare as text because the log format is
// already "2006-01-02 15:04:05".
func (q *Query) DateWindow(from, to *time.Time) *Query {
	if from != nil {
		q.And("timestamp >= ?", from.Format("2006-01-02")+" 00:00:00")
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		q.And("timestamp < ?", next.Format("2006-01-02")+" 00:00:00")
	}
	return q
}

// NewestFirst orders by timestamp descending.
func (q *Query) NewestFirst() *Query {
	q.orderBy = "timestamp DESC"
	return q
}

// Limit caps the result set.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Select renders the final SQL for the given column list plus the arguments.
func (q *Query) Select(columns string) (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columns)
	b.WriteString(" FROM kills")
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}
	args := q.args
	if q.limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(append([]any{}, args...), q.limit)
	}
	return b.String(), args
}
