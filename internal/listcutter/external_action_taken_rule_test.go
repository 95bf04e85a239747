package listcutter

import (
	"testing"

	"github.com/groundswell/listcutter/internal/types"
)

func TestExternalActionTakenRule_Validate(t *testing.T) {
	t.Run("missing slugs is the only required field", func(t *testing.T) {
		errs := NewExternalActionTakenRule(ExternalActionTakenParams{}).Validate(testNow)
		if len(errs) != 1 {
			t.Fatalf("got %d error fields (%v), want 1", len(errs), errs)
		}
		if got := errs["action_slugs"]; len(got) != 1 || got[0] != MsgMissingSlugs {
			t.Errorf("action_slugs errors = %v, want [%q]", got, MsgMissingSlugs)
		}
	})

	t.Run("absent since is valid", func(t *testing.T) {
		errs := NewExternalActionTakenRule(ExternalActionTakenParams{
			ActionSlugs: []string{"cuba"},
		}).Validate(testNow)
		if errs.Any() {
			t.Errorf("Validate() = %v, want no errors", errs)
		}
	})

	t.Run("present since must parse", func(t *testing.T) {
		errs := NewExternalActionTakenRule(ExternalActionTakenParams{
			ActionSlugs: []string{"cuba"},
			Since:       "not-a-date",
		}).Validate(testNow)
		if got := errs["since"]; len(got) != 1 || got[0] != MsgUnparseableDate {
			t.Errorf("since errors = %v, want [%q]", got, MsgUnparseableDate)
		}
	})
}

func TestExternalActionTakenRule_CompileWithoutDateBound(t *testing.T) {
	rule := NewExternalActionTakenRule(ExternalActionTakenParams{
		ActionSlugs: []string{"cuba", "ecuador"},
	})

	frag := rule.Compile(types.MovementID(3))

	wantSQL := "SELECT user_id FROM external_activity_events" +
		" WHERE movement_id = ? AND activity = ? AND action_slug IN (?, ?)" +
		" GROUP BY user_id"
	if frag.SQL != wantSQL {
		t.Errorf("SQL = %q, want %q", frag.SQL, wantSQL)
	}

	wantArgs := []any{int64(3), "action_taken", "cuba", "ecuador"}
	if len(frag.Args) != len(wantArgs) {
		t.Fatalf("got %d args, want %d", len(frag.Args), len(wantArgs))
	}
	for i := range wantArgs {
		if frag.Args[i] != wantArgs[i] {
			t.Errorf("Args[%d] = %v, want %v", i, frag.Args[i], wantArgs[i])
		}
	}
}

func TestExternalActionTakenRule_Describe(t *testing.T) {
	slugs := []string{"cuba", "ecuador"}

	got := NewExternalActionTakenRule(ExternalActionTakenParams{ActionSlugs: slugs}).Describe()
	want := `External action taken is any of these: ["cuba", "ecuador"]`
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}

	got = NewExternalActionTakenRule(ExternalActionTakenParams{Negate: true, ActionSlugs: slugs}).Describe()
	want = `External action taken is not any of these: ["cuba", "ecuador"]`
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
