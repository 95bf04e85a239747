package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/groundswell/listcutter/internal/core/db"
	"github.com/groundswell/listcutter/internal/listcutter"
	"github.com/groundswell/listcutter/internal/types"
	"go.uber.org/zap"
)

const testMovement = types.MovementID(42)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "listcutter_test.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	queries, err := db.LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}

	return New(conn, queries, zap.NewNop())
}

// ingestEvent records one event and returns the result.
func ingestEvent(t *testing.T, s *Store, email, slug string, activity types.Activity, role string) IngestResult {
	t.Helper()

	res, err := s.Ingest(context.Background(), Ingestion{
		Movement:    testMovement,
		Source:      "controlshift",
		ActionSlug:  slug,
		Partner:     "partner-co",
		LanguageISO: "en",
		Role:        role,
		Activity:    activity,
		User:        UserParams{Email: email, IsMember: true},
	})
	if err != nil {
		t.Fatalf("Ingest(%s, %s) error = %v", email, slug, err)
	}
	return res
}

// backdate rewrites an event's timestamp; fixtures need history.
func backdate(t *testing.T, s *Store, userID types.UserID, to time.Time) {
	t.Helper()

	_, err := s.db.Exec(s.db.Rebind("UPDATE external_activity_events SET created_at = ? WHERE user_id = ?"),
		to.UTC().Format(time.RFC3339), int64(userID))
	if err != nil {
		t.Fatalf("backdate error = %v", err)
	}
}

func sinceYesterday() string {
	return time.Now().AddDate(0, 0, -1).Format(types.SinceLayout)
}

func wantUsers(t *testing.T, got []types.UserID, want ...types.UserID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got users %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got users %v, want %v", got, want)
		}
	}
}

func selectSegment(t *testing.T, s *Store, seg *listcutter.Segment) []types.UserID {
	t.Helper()

	frag, err := seg.Compile()
	if err != nil {
		t.Fatalf("segment Compile() error = %v", err)
	}
	ids, err := s.SelectSegment(context.Background(), frag)
	if err != nil {
		t.Fatalf("SelectSegment() error = %v", err)
	}
	return ids
}

func TestSegment_ExternalActionRule_MatchesTakenEvents(t *testing.T) {
	s := newTestStore(t)

	ingestEvent(t, s, "bob@example.org", "russia", types.ActivityTaken, "signer")
	john := ingestEvent(t, s, "john@example.org", "cuba", types.ActivityTaken, "signer")
	sally := ingestEvent(t, s, "sally@example.org", "ecuador", types.ActivityTaken, "signer")
	ingestEvent(t, s, "jenny@example.org", "china", types.ActivityCreated, "creator")

	seg := &listcutter.Segment{
		Movement: testMovement,
		Rules: []listcutter.Rule{
			listcutter.NewExternalActionRule(listcutter.ExternalActionParams{
				ActionSlugs: []string{"cuba", "ecuador", "china"},
				Since:       sinceYesterday(),
				Activity:    types.ActivityTaken,
			}),
		},
	}

	// jenny excluded: her china event is action_created, not action_taken
	wantUsers(t, selectSegment(t, s, seg), john.UserID, sally.UserID)
}

func TestSegment_ExternalActionRule_TemporalBound(t *testing.T) {
	s := newTestStore(t)

	bob := ingestEvent(t, s, "bob@example.org", "russia", types.ActivityCreated, "creator")
	john := ingestEvent(t, s, "john@example.org", "cuba", types.ActivityCreated, "creator")
	sally := ingestEvent(t, s, "sally@example.org", "ecuador", types.ActivityCreated, "creator")
	ingestEvent(t, s, "jenny@example.org", "china", types.ActivityTaken, "signer")

	seg := &listcutter.Segment{
		Movement: testMovement,
		Rules: []listcutter.Rule{
			listcutter.NewExternalActionRule(listcutter.ExternalActionParams{
				ActionSlugs: []string{"russia", "cuba", "ecuador", "china"},
				Since:       sinceYesterday(),
				Activity:    types.ActivityCreated,
			}),
		},
	}

	wantUsers(t, selectSegment(t, s, seg), bob.UserID, john.UserID, sally.UserID)

	// bob's event slides before the since bound and drops out
	backdate(t, s, bob.UserID, time.Now().AddDate(0, 0, -3))
	wantUsers(t, selectSegment(t, s, seg), john.UserID, sally.UserID)
}

func TestSegment_NegatedRuleReturnsComplement(t *testing.T) {
	s := newTestStore(t)

	bob := ingestEvent(t, s, "bob@example.org", "russia", types.ActivityTaken, "signer")
	ingestEvent(t, s, "john@example.org", "cuba", types.ActivityTaken, "signer")
	ingestEvent(t, s, "sally@example.org", "ecuador", types.ActivityTaken, "signer")
	jenny := ingestEvent(t, s, "jenny@example.org", "china", types.ActivityCreated, "creator")

	seg := &listcutter.Segment{
		Movement: testMovement,
		Rules: []listcutter.Rule{
			listcutter.NewExternalActionRule(listcutter.ExternalActionParams{
				Negate:      true,
				ActionSlugs: []string{"cuba", "ecuador", "china"},
				Since:       sinceYesterday(),
				Activity:    types.ActivityTaken,
			}),
		},
	}

	// every movement user except the positive matches {john, sally}
	wantUsers(t, selectSegment(t, s, seg), bob.UserID, jenny.UserID)
}

func TestSegment_TakenRuleIgnoresEventAge(t *testing.T) {
	s := newTestStore(t)

	john := ingestEvent(t, s, "john@example.org", "cuba", types.ActivityTaken, "signer")
	sally := ingestEvent(t, s, "sally@example.org", "ecuador", types.ActivityTaken, "signer")
	ingestEvent(t, s, "jenny@example.org", "china", types.ActivityCreated, "creator")

	// a year-old event still counts without a date bound
	backdate(t, s, john.UserID, time.Now().AddDate(-1, 0, 0))

	seg := &listcutter.Segment{
		Movement: testMovement,
		Rules: []listcutter.Rule{
			listcutter.NewExternalActionTakenRule(listcutter.ExternalActionTakenParams{
				ActionSlugs: []string{"cuba", "ecuador", "china"},
			}),
		},
	}

	wantUsers(t, selectSegment(t, s, seg), john.UserID, sally.UserID)
}

func TestSegment_TenantIsolation(t *testing.T) {
	s := newTestStore(t)

	john := ingestEvent(t, s, "john@example.org", "cuba", types.ActivityTaken, "signer")

	// same slug, different movement
	_, err := s.Ingest(context.Background(), Ingestion{
		Movement:   testMovement + 1,
		Source:     "controlshift",
		ActionSlug: "cuba",
		Activity:   types.ActivityTaken,
		User:       UserParams{Email: "other@example.org", IsMember: true},
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	seg := &listcutter.Segment{
		Movement: testMovement,
		Rules: []listcutter.Rule{
			listcutter.NewExternalActionTakenRule(listcutter.ExternalActionTakenParams{
				ActionSlugs: []string{"cuba"},
			}),
		},
	}

	wantUsers(t, selectSegment(t, s, seg), john.UserID)
}

func TestIngest_IdempotentUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := Ingestion{
		Movement:    testMovement,
		Source:      "controlshift",
		ActionSlug:  "cuba",
		Partner:     "partner-co",
		LanguageISO: "en",
		Role:        "signer",
		Activity:    types.ActivityTaken,
		Tags:        []string{"climate", "petition"},
		User:        UserParams{Email: "john@example.org", FirstName: "John", IsMember: true},
	}

	first, err := s.Ingest(ctx, in)
	if err != nil {
		t.Fatalf("first Ingest() error = %v", err)
	}

	in.User.FirstName = "Johnny"
	second, err := s.Ingest(ctx, in)
	if err != nil {
		t.Fatalf("second Ingest() error = %v", err)
	}

	if first.UserID != second.UserID {
		t.Errorf("user duplicated: %d vs %d", first.UserID, second.UserID)
	}
	if first.ActionID != second.ActionID {
		t.Errorf("external action duplicated: %d vs %d", first.ActionID, second.ActionID)
	}
	if first.EventID == second.EventID {
		t.Error("event IDs collided; each ingestion must append a fresh event")
	}

	var actionCount int
	if err := s.q.Get(ctx, "count-external-actions", &actionCount, int64(testMovement), "controlshift", "cuba"); err != nil {
		t.Fatalf("count-external-actions error = %v", err)
	}
	if actionCount != 1 {
		t.Errorf("external_actions rows = %d, want 1", actionCount)
	}

	var tagCount int
	if err := s.q.Get(ctx, "count-action-tags", &tagCount, int64(first.ActionID)); err != nil {
		t.Fatalf("count-action-tags error = %v", err)
	}
	if tagCount != 2 {
		t.Errorf("attached tags = %d, want 2", tagCount)
	}

	var userCount int
	if err := s.q.Get(ctx, "count-users", &userCount, int64(testMovement), "john@example.org"); err != nil {
		t.Fatalf("count-users error = %v", err)
	}
	if userCount != 1 {
		t.Errorf("users rows = %d, want 1", userCount)
	}
}

func TestIngest_RejectsUnknownActivity(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Ingest(context.Background(), Ingestion{
		Movement:   testMovement,
		Source:     "controlshift",
		ActionSlug: "cuba",
		Activity:   types.Activity("action_shared"),
		User:       UserParams{Email: "john@example.org"},
	})
	if !errors.Is(err, types.ErrUnknownActivity) {
		t.Errorf("Ingest() error = %v, want ErrUnknownActivity", err)
	}
}

func TestGetEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := ingestEvent(t, s, "john@example.org", "cuba", types.ActivityTaken, "signer")

	ev, err := s.GetEvent(ctx, res.EventID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if ev.UserID != res.UserID || ev.ActionSlug != "cuba" || ev.Activity != types.ActivityTaken {
		t.Errorf("GetEvent() = %+v, want user %d on cuba/action_taken", ev, res.UserID)
	}

	_, err = s.GetEvent(ctx, types.NewEventID())
	if !errors.Is(err, types.ErrEventNotFound) {
		t.Errorf("GetEvent(unknown) error = %v, want ErrEventNotFound", err)
	}
}
