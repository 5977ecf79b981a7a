// Package sqlxrepos implements the business repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/CSE210-FA25-Team05/cse-210-conductor-app-sub000/core"
)

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint ...string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != pqUniqueViolation {
		return false
	}
	if len(constraint) == 0 {
		return true
	}
	return pqErr.Constraint == constraint[0]
}

// orderByClause renders an ORDER BY for white-listed struct fields.
// Returns "" when no ordering is requested.
func orderByClause(ordering []core.DBOrdering, allowed map[string]bool) string {
	var cols []string
	for _, ord := range ordering {
		if !allowed[ord.Field] {
			continue
		}
		dir := "DESC"
		if ord.Ascending {
			dir = "ASC"
		}
		cols = append(cols, pq.QuoteIdentifier(ord.Field)+" "+dir)
	}
	if len(cols) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(cols, ", ")
}

// inPlaceholders renders "$start, $start+1, ..." for n bind parameters.
func inPlaceholders(start, n int) string {
	ph := make([]string, n)
	for i := 0; i < n; i++ {
		ph[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(ph, ", ")
}
