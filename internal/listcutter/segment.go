// internal/listcutter/segment.go
package listcutter

import (
	"strings"
	"time"

	"github.com/groundswell/listcutter/internal/types"
)

/*
 * Segment composition.
 *
 * A Segment combines compiled rules into one query over the movement's user
 * base. This is where negation happens: each rule contributes its positive
 * membership fragment, and the segment wraps it as IN or NOT IN depending on
 * the rule's negate flag. The complement is therefore taken against the
 * movement's users, not against the event log, so a negated rule matches
 * every tenant user except those in the positive set.
 *
 * Inactive rules are skipped rather than compiled. A segment with no active
 * rules fails with ErrEmptySegment instead of silently matching everyone.
 */

// Combine selects the boolean connective between rule memberships.
type Combine int

const (
	// CombineAll requires users to satisfy every rule (AND).
	CombineAll Combine = iota
	// CombineAny requires users to satisfy at least one rule (OR).
	CombineAny
)

func (c Combine) connective() string {
	if c == CombineAny {
		return " OR "
	}
	return " AND "
}

// word is the connective in rule descriptions.
func (c Combine) word() string {
	if c == CombineAny {
		return " or "
	}
	return " and "
}

// Segment is a movement-scoped boolean combination of rules.
type Segment struct {
	Movement types.MovementID
	Combine  Combine
	Rules    []Rule
}

// Validate runs every rule's validation and returns results aligned by rule
// index. The segment is compilable when every entry is empty.
func (s *Segment) Validate(now time.Time) []FieldErrors {
	results := make([]FieldErrors, len(s.Rules))
	for i, r := range s.Rules {
		results[i] = r.Validate(now)
	}
	return results
}

// Compile builds the segment query: movement users filtered by each active
// rule's membership, connected per s.Combine. Returns ErrEmptySegment when no
// rule is active. Panics (via Rule.Compile) if an active rule is invalid.
func (s *Segment) Compile() (*Fragment, error) {
	var conds []string
	var args []any
	args = append(args, int64(s.Movement))

	for _, r := range s.Rules {
		if !r.IsActive() {
			continue
		}
		frag := r.Compile(s.Movement)
		op := "IN"
		if r.Negated() {
			op = "NOT IN"
		}
		conds = append(conds, "users.id "+op+" ("+frag.SQL+")")
		args = append(args, frag.Args...)
	}

	if len(conds) == 0 {
		return nil, types.ErrEmptySegment
	}

	sql := "SELECT users.id FROM users WHERE users.movement_id = ? AND (" +
		strings.Join(conds, s.Combine.connective()) + ") ORDER BY users.id"

	return &Fragment{SQL: sql, Args: args}, nil
}

// Describe renders every active rule's sentence joined by the segment
// connective. Never fails; an all-inactive segment renders empty.
func (s *Segment) Describe() string {
	var parts []string
	for _, r := range s.Rules {
		if !r.IsActive() {
			continue
		}
		parts = append(parts, r.Describe())
	}
	return strings.Join(parts, s.Combine.word())
}
