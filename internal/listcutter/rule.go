// internal/listcutter/rule.go
package listcutter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/groundswell/listcutter/internal/types"
)

/*
 * Rule contract and shared validation machinery.
 *
 * A Rule is a named, validated, negatable predicate over the external activity
 * event log. Rules are ephemeral value objects: constructed from user-supplied
 * parameters, validated, compiled into a query fragment, rendered for display,
 * then discarded.
 *
 * Lifecycle:
 *   1. Construct from an explicit, typed params struct
 *   2. Validate(now) - collects all field errors, never short-circuits
 *   3. IsActive() - callers skip inactive rules entirely
 *   4. Compile(movement) - positive membership fragment only
 *   5. Describe() - human-readable sentence, never fails
 *
 * Negation is NOT part of compilation. Compile always returns the positive
 * membership set; the composing layer (segment.go) decides IN vs NOT IN.
 * Keeping fragments positive keeps them composable under AND/OR.
 *
 * Compile on an invalid rule panics: it indicates a caller bug (skipped
 * validation), not bad user input, and a silent empty result would corrupt
 * segment membership.
 */

// FieldErrors collects validation failures keyed by field name.
// A rule with any entry is invalid. Accumulated, never thrown: every field is
// checked regardless of earlier failures.
type FieldErrors map[string][]string

// Add appends a message for the given field.
func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether at least one field failed validation.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

// String renders errors as "field: message" pairs in field order, for panic
// messages and logs.
func (e FieldErrors) String() string {
	if len(e) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e))
	for _, field := range sortedFields(e) {
		for _, msg := range e[field] {
			parts = append(parts, field+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

func sortedFields(e FieldErrors) []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	// Insertion sort; field counts are tiny.
	for i := 1; i < len(fields); i++ {
		for j := i; j > 0 && fields[j] < fields[j-1]; j-- {
			fields[j], fields[j-1] = fields[j-1], fields[j]
		}
	}
	return fields
}

// Validation messages surfaced verbatim to segment authors.
const (
	MsgMissingSlugs    = "Please specify the external action page slugs"
	MsgMissingSince    = "Please specify date"
	MsgFutureSince     = "can't be in the future"
	MsgUnparseableDate = "must be a valid MM/DD/YYYY date"
	MsgInvalidActivity = "is not included in the list"
)

// Rule is the contract every ListCutter rule implements.
type Rule interface {
	// Validate checks all fields against the given reference time and returns
	// the collected errors. Empty result means the rule is valid.
	Validate(now time.Time) FieldErrors

	// IsActive reports whether the rule targets anything at all. Inactive
	// rules are skipped by the composing layer rather than compiled.
	IsActive() bool

	// Compile produces the positive membership fragment for the given
	// movement: a grouped subquery of matching user IDs. Panics if the rule
	// is invalid.
	Compile(movement types.MovementID) *Fragment

	// Describe renders the rule as a human-readable sentence. Never fails;
	// degrades gracefully on oversized slug lists.
	Describe() string

	// Negated reports whether the composing layer should take the set
	// complement (NOT IN) of the compiled fragment.
	Negated() bool
}

// mustBeValid backs the fail-fast contract of Compile.
func mustBeValid(r Rule, now time.Time) {
	if errs := r.Validate(now); errs.Any() {
		panic(fmt.Sprintf("listcutter: compile called on invalid rule: %s", errs))
	}
}

// isClause renders the membership verb respecting negation.
func isClause(negate bool) string {
	if negate {
		return "is not"
	}
	return "is"
}

// describeSlugs renders an action slug list for rule descriptions.
// Above MaxDescribedSlugs the list collapses to a count; otherwise slugs
// appear quoted, in their original order.
func describeSlugs(slugs []string) string {
	if len(slugs) > types.MaxDescribedSlugs {
		return fmt.Sprintf("%d actions (too many to list)", len(slugs))
	}
	quoted := make([]string, len(slugs))
	for i, s := range slugs {
		quoted[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// parseSince parses a MM/DD/YYYY date bound. The zero time plus error covers
// the unparseable case; callers decide whether that is a validation failure.
func parseSince(since string) (time.Time, error) {
	return time.Parse(types.SinceLayout, since)
}
