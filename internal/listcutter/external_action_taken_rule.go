// internal/listcutter/external_action_taken_rule.go
package listcutter

import (
	"fmt"
	"time"

	"github.com/groundswell/listcutter/internal/types"
)

// ExternalActionTakenParams carries the user-supplied fields for an
// ExternalActionTakenRule. Activity is fixed internally and not settable.
type ExternalActionTakenParams struct {
	Negate      bool
	ActionSlugs []string
	Since       string // MM/DD/YYYY, optional; empty means all history
}

// ExternalActionTakenRule is the common-case specialization of
// ExternalActionRule: activity fixed to "taken", date bound optional.
// With no since it matches any qualifying event regardless of age.
type ExternalActionTakenRule struct {
	Negate      bool
	ActionSlugs []string
	Since       string
}

// NewExternalActionTakenRule constructs the specialized rule.
func NewExternalActionTakenRule(p ExternalActionTakenParams) *ExternalActionTakenRule {
	return &ExternalActionTakenRule{
		Negate:      p.Negate,
		ActionSlugs: p.ActionSlugs,
		Since:       p.Since,
	}
}

// Validate checks slug presence, the only required field here. A non-empty
// since must still parse, otherwise Compile could not honor it.
func (r *ExternalActionTakenRule) Validate(now time.Time) FieldErrors {
	errs := FieldErrors{}

	if len(r.ActionSlugs) == 0 {
		errs.Add("action_slugs", MsgMissingSlugs)
	}

	if r.Since != "" {
		if _, err := parseSince(r.Since); err != nil {
			errs.Add("since", MsgUnparseableDate)
		}
	}

	return errs
}

// IsActive reports whether the rule targets any action slugs.
func (r *ExternalActionTakenRule) IsActive() bool {
	return len(r.ActionSlugs) > 0
}

// Negated reports whether the composing layer should complement the set.
func (r *ExternalActionTakenRule) Negated() bool {
	return r.Negate
}

// Compile produces the positive membership fragment. An absent since compiles
// without a lower time bound. Panics if the rule is invalid.
func (r *ExternalActionTakenRule) Compile(movement types.MovementID) *Fragment {
	mustBeValid(r, time.Now())

	var since *time.Time
	if r.Since != "" {
		parsed, err := parseSince(r.Since)
		if err != nil {
			panic(fmt.Sprintf("listcutter: unparseable since %q slipped past validation", r.Since))
		}
		since = &parsed
	}

	return membershipSQL(movement, types.ActivityTaken, r.ActionSlugs, since)
}

// Describe renders the rule condition in human-readable form, for example:
//
//	External action taken is any of these: ["cuba", "ecuador"]
func (r *ExternalActionTakenRule) Describe() string {
	return fmt.Sprintf("External action taken %s any of these: %s",
		isClause(r.Negate), describeSlugs(r.ActionSlugs))
}
