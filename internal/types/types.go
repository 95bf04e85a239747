// Package types provides domain models shared across ListCutter components.
//
// Hand-written types only: identifiers, the activity enumeration, and the
// sentinel errors used across packages. Wire-format concerns (JSON request
// shapes) live at the API boundary, not here.
package types

// MovementID identifies a movement, the tenant isolation boundary.
// Every event, action, and rule is scoped to exactly one movement.
type MovementID int64

// UserID identifies a supporter within a movement.
type UserID int64

// ActionID identifies an upserted external action row.
type ActionID int64

// Activity classifies an external activity event.
// Stored verbatim in the event log, so values are part of the schema.
type Activity string

const (
	// ActivityCreated records that a user created an external action page.
	ActivityCreated Activity = "action_created"

	// ActivityTaken records that a user took action on an external page.
	ActivityTaken Activity = "action_taken"
)

// Activities lists every valid activity kind, in declaration order.
func Activities() []Activity {
	return []Activity{ActivityCreated, ActivityTaken}
}

// Valid reports whether a is one of the known activity kinds.
func (a Activity) Valid() bool {
	switch a {
	case ActivityCreated, ActivityTaken:
		return true
	}
	return false
}

// activityWords maps each activity kind to its display form. A lookup table
// rather than string surgery on the enum value keeps rendering independent of
// the storage encoding.
var activityWords = map[Activity]string{
	ActivityCreated: "action created",
	ActivityTaken:   "action taken",
}

// DisplayWord returns the human form of the activity ("action taken").
// Unknown values render as their raw string so callers never fail on display.
func (a Activity) DisplayWord() string {
	if w, ok := activityWords[a]; ok {
		return w
	}
	return string(a)
}

// SinceLayout is the accepted input format for rule date bounds (MM/DD/YYYY).
const SinceLayout = "01/02/2006"

// MaxDescribedSlugs caps how many action slugs a rule description lists
// verbatim. Longer lists collapse to a count to keep UI summaries bounded.
// No corresponding cap exists for compilation; the membership query accepts
// the full slug set.
const MaxDescribedSlugs = 20
