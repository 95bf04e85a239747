// internal/listcutter/external_action_rule.go
package listcutter

import (
	"fmt"
	"time"

	"github.com/groundswell/listcutter/internal/types"
)

// ExternalActionParams carries the user-supplied fields for an
// ExternalActionRule. Explicit and typed; the API boundary decides what to do
// with unrecognized input keys, this layer never sees them.
type ExternalActionParams struct {
	Negate      bool
	ActionSlugs []string
	Since       string // MM/DD/YYYY, required
	Activity    types.Activity
}

// ExternalActionRule matches users who did (or, negated, did not) perform one
// of a set of named external actions of a given activity kind since a date.
type ExternalActionRule struct {
	Negate      bool
	ActionSlugs []string
	Since       string
	Activity    types.Activity
}

// NewExternalActionRule constructs a rule from validated-later parameters.
func NewExternalActionRule(p ExternalActionParams) *ExternalActionRule {
	return &ExternalActionRule{
		Negate:      p.Negate,
		ActionSlugs: p.ActionSlugs,
		Since:       p.Since,
		Activity:    p.Activity,
	}
}

// Validate checks every field independently and collects all failures.
// A future-dated or unparseable since is a validation error, never a crash.
func (r *ExternalActionRule) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}

	if len(r.ActionSlugs) == 0 {
		errs.Add("action_slugs", MsgMissingSlugs)
	}

	if r.Since == "" {
		errs.Add("since", MsgMissingSince)
	} else if since, err := parseSince(r.Since); err != nil {
		errs.Add("since", MsgUnparseableDate)
	} else if since.After(now) {
		errs.Add("since", MsgFutureSince)
	}

	if !r.Activity.Valid() {
		errs.Add("activity", MsgInvalidActivity)
	}

	return errs
}

// IsActive reports whether the rule targets any action slugs.
func (r *ExternalActionRule) IsActive() bool {
	return len(r.ActionSlugs) > 0
}

// Negated reports whether the composing layer should complement the set.
func (r *ExternalActionRule) Negated() bool {
	return r.Negate
}

// Compile produces the positive membership fragment for the movement.
// Panics if the rule is invalid; validation is the caller's responsibility.
func (r *ExternalActionRule) Compile(movement types.MovementID) *Fragment {
	mustBeValid(r, time.Now())

	since, err := parseSince(r.Since)
	if err != nil {
		// Unreachable after mustBeValid; kept so a future validation change
		// cannot silently drop the time bound.
		panic(fmt.Sprintf("listcutter: unparseable since %q slipped past validation", r.Since))
	}

	return membershipSQL(movement, r.Activity, r.ActionSlugs, &since)
}

// Describe renders the rule condition in human-readable form, for example:
//
//	External action taken is any of the following since 08/27/2026: ["cuba", "ecuador"]
//
// The since value is echoed exactly as given.
func (r *ExternalActionRule) Describe() string {
	return fmt.Sprintf("External %s %s any of the following since %s: %s",
		r.Activity.DisplayWord(), isClause(r.Negate), r.Since, describeSlugs(r.ActionSlugs))
}
