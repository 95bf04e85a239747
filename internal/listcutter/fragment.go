// internal/listcutter/fragment.go
package listcutter

import (
	"strings"
	"time"

	"github.com/groundswell/listcutter/internal/types"
)

/*
 * Query fragments.
 *
 * A Fragment is a parameterized, composable unit of a larger segment query.
 * SQL uses ? placeholders throughout; the executing layer rebinds them for
 * the active driver (sqlx.Rebind), so fragments stay driver-agnostic.
 *
 * Fragments are never executed by the rule engine itself. Values are always
 * bound as parameters, never interpolated, which rules out injection through
 * user-supplied slugs and lets the database cache plans across segments.
 *
 * Timestamps cross the fragment boundary as RFC3339 UTC strings to match the
 * event log's storage encoding on both supported drivers.
 */

// Fragment is an opaque piece of a segment query: SQL with ? placeholders and
// the arguments bound to them, in order.
type Fragment struct {
	SQL  string
	Args []any
}

// placeholders renders n comma-separated ? markers for an IN list.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// membershipSQL builds the positive membership subquery shared by all
// external action rules: distinct users (via GROUP BY) holding at least one
// qualifying event. since == nil omits the lower time bound.
func membershipSQL(movement types.MovementID, activity types.Activity, slugs []string, since *time.Time) *Fragment {
	var sb strings.Builder
	sb.WriteString("SELECT user_id FROM external_activity_events")
	sb.WriteString(" WHERE movement_id = ?")
	sb.WriteString(" AND activity = ?")
	sb.WriteString(" AND action_slug IN (")
	sb.WriteString(placeholders(len(slugs)))
	sb.WriteString(")")

	args := make([]any, 0, len(slugs)+3)
	args = append(args, int64(movement), string(activity))
	for _, s := range slugs {
		args = append(args, s)
	}

	if since != nil {
		sb.WriteString(" AND created_at >= ?")
		args = append(args, since.UTC().Format(time.RFC3339))
	}

	sb.WriteString(" GROUP BY user_id")

	return &Fragment{SQL: sb.String(), Args: args}
}
