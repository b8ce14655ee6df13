package store

import (
	"strconv"
	"strings"

	"github.com/persistorai/auditlens/internal/models"
)

// maxListLimit is a defense-in-depth cap on limit values for list queries.
const maxListLimit = 10000

// clampLimit bounds a caller-supplied row limit.
func clampLimit(limit int) int {
	if limit <= 0 || limit > maxListLimit {
		return maxListLimit
	}

	return limit
}

// likeEscaper escapes LIKE metacharacters so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// placeholder returns the positional parameter $n.
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// buildLogFilter builds the WHERE clause and args for a log search.
func buildLogFilter(f models.LogFilter) (where string, args []any, nextArg int) {
	var conditions []string
	argIdx := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, strings.ReplaceAll(cond, "?", placeholder(argIdx)))
		args = append(args, arg)
		argIdx++
	}

	if f.ActorID != "" {
		add("actor_id = ?", f.ActorID)
	}
	if f.Action != "" {
		add("action = ?", f.Action)
	}
	if f.Resource != "" {
		add("resource = ?", f.Resource)
	}
	if f.Status != "" {
		add("status = ?", string(f.Status))
	}
	if f.Severity != 0 {
		add("severity = ?", f.Severity)
	}
	if f.StartDate != nil {
		add("timestamp >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		add("timestamp <= ?", *f.EndDate)
	}
	if f.Search != "" {
		add("(actor_name ILIKE ? OR action ILIKE ? OR resource ILIKE ? OR details->>'errorMessage' ILIKE ?)",
			containsPattern(f.Search))
	}

	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	return where, args, argIdx
}

// buildEventFilter builds the WHERE clause and args for an aggregator event query.
func buildEventFilter(q models.EventQuery) (where string, args []any, nextArg int) {
	var conditions []string
	argIdx := 1

	add := func(cond string, arg any) {
		conditions = append(conditions, strings.ReplaceAll(cond, "?", placeholder(argIdx)))
		args = append(args, arg)
		argIdx++
	}

	if q.Since != nil {
		add("timestamp >= ?", *q.Since)
	}
	switch len(q.Actions) {
	case 0:
	case 1:
		add("action = ?", q.Actions[0])
	default:
		add("action = ANY(?)", q.Actions)
	}
	if q.Status != "" {
		add("status = ?", string(q.Status))
	}
	if q.MinSeverity > 0 {
		add("severity >= ?", q.MinSeverity)
	}

	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	return where, args, argIdx
}
