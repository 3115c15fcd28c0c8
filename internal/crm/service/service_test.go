package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/transport"
	"salescrm_backend/internal/events"
	"salescrm_backend/internal/store"
	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/logger"

	"github.com/google/uuid"
)

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	out := make([]string, 0, len(b.published))
	for _, e := range b.published {
		out = append(out, e.EventName())
	}
	return out
}

type recordingReminders struct {
	scheduled []time.Time
}

func (r *recordingReminders) ScheduleFollowUp(_ context.Context, _ uuid.UUID, at time.Time) error {
	r.scheduled = append(r.scheduled, at)
	return nil
}

var testNow = time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *Service
	bus       *recordingBus
	reminders *recordingReminders

	brand domain.Brand
	admin domain.Actor
	alice domain.Representative
	bob   domain.Representative
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stores := Stores{
		Clients: store.New[domain.Client](func(a, b domain.Client) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}, nil),
		Reps: store.New[domain.Representative](func(a, b domain.Representative) bool {
			return a.Name < b.Name
		}, nil),
		Activities: store.New[domain.Activity](func(a, b domain.Activity) bool {
			return a.Timestamp.After(b.Timestamp)
		}, nil),
		Targets: store.New[domain.MonthlyTarget](nil, nil),
	}

	f := &fixture{
		bus:       &recordingBus{},
		reminders: &recordingReminders{},
		brand:     domain.Brand{ID: uuid.New(), Name: "Aurora Kitchens", Price: 2500},
		admin:     domain.Actor{ID: uuid.New(), Name: "Dina", Role: domain.RoleAdmin},
		alice: domain.Representative{
			ID: uuid.New(), Name: "Alice", Email: "alice@crm.local",
			Role: domain.RoleRep, Status: domain.RepStatusActive, CreatedAt: testNow,
		},
		bob: domain.Representative{
			ID: uuid.New(), Name: "Bob", Email: "bob@crm.local",
			Role: domain.RoleRep, Status: domain.RepStatusActive, CreatedAt: testNow,
		},
	}

	stores.Reps.Load([]domain.Representative{f.alice, f.bob})

	f.svc = New(stores, []domain.Brand{f.brand}, f.bus, f.reminders, logger.New("test"))
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) repActor(rep domain.Representative) domain.Actor {
	return domain.Actor{ID: rep.ID, Name: rep.Name, Role: domain.RoleRep}
}

func (f *fixture) createClient(t *testing.T, phone string, assignedTo *uuid.UUID) transport.ClientResponse {
	t.Helper()

	req := transport.CreateClientRequest{
		Name:     "Client " + phone,
		Phone:    phone,
		Province: "Baghdad",
		BrandID:  f.brand.ID,
	}
	if assignedTo != nil {
		req.AssignedTo = transport.OptionalUUID{Value: assignedTo, Set: true}
	}

	resp, err := f.svc.CreateClient(context.Background(), f.admin, req)
	if err != nil {
		t.Fatalf("CreateClient(%s): %v", phone, err)
	}
	return resp
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var domainErr *apperr.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected apperr.Error, got %v", err)
	}
	return domainErr.Kind
}

func TestCreateClientRejectsDuplicatePhone(t *testing.T) {
	f := newFixture(t)

	first := f.createClient(t, "07701234567", nil)
	if first.Status != string(domain.StatusNew) {
		t.Fatalf("new client status = %q, want new", first.Status)
	}
	if first.LastInteractionAt == nil {
		t.Fatal("creation must set last interaction")
	}

	_, err := f.svc.CreateClient(context.Background(), f.admin, transport.CreateClientRequest{
		Name:     "Other",
		Phone:    "07701234567",
		Province: "Baghdad",
		BrandID:  f.brand.ID,
	})
	if kindOf(t, err) != apperr.KindDuplicate {
		t.Fatalf("duplicate phone: kind = %v, want KindDuplicate", kindOf(t, err))
	}

	var domainErr *apperr.Error
	errors.As(err, &domainErr)
	details, ok := domainErr.Details.(map[string]string)
	if !ok || details["conflictingEntityName"] != first.Name {
		t.Fatalf("duplicate details = %v, want conflictingEntityName %q", domainErr.Details, first.Name)
	}
}

func TestCreateClientOutsideTerritoryIsForbidden(t *testing.T) {
	f := newFixture(t)

	actor := f.repActor(f.alice)
	actor.AllowedProvinces = []string{"Erbil"}

	_, err := f.svc.CreateClient(context.Background(), actor, transport.CreateClientRequest{
		Name:     "Out of territory",
		Phone:    "07709999999",
		Province: "Baghdad",
		BrandID:  f.brand.ID,
	})
	if kindOf(t, err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", kindOf(t, err))
	}
}

func TestTransitionToLostRequiresKnownReason(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07701111111", nil)

	_, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusLost),
	})
	if kindOf(t, err) != apperr.KindValidation {
		t.Fatalf("lost without reason: kind = %v, want KindValidation", kindOf(t, err))
	}

	unchanged, err := f.svc.GetClient(f.admin, c.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if unchanged.Status != string(domain.StatusNew) {
		t.Fatalf("rejected transition must not change status, got %q", unchanged.Status)
	}

	lost, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status:     string(domain.StatusLost),
		LossReason: string(domain.LossReasonPrice),
		LossNote:   "too expensive",
	})
	if err != nil {
		t.Fatalf("Transition to lost: %v", err)
	}
	if lost.Status != string(domain.StatusLost) || lost.LossReason != string(domain.LossReasonPrice) {
		t.Fatalf("lost = %q/%q, want lost/price", lost.Status, lost.LossReason)
	}
}

func TestTransitionWonSnapshotsBrandPrice(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07702222222", nil)

	won, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusWon),
	})
	if err != nil {
		t.Fatalf("Transition to won: %v", err)
	}
	if won.DealValue == nil || *won.DealValue != f.brand.Price {
		t.Fatalf("deal value = %v, want %v", won.DealValue, f.brand.Price)
	}
}

func TestLeavingLostClearsLossFields(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07703333333", nil)

	if _, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status:     string(domain.StatusLost),
		LossReason: string(domain.LossReasonTiming),
	}); err != nil {
		t.Fatalf("Transition to lost: %v", err)
	}

	reopened, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusNew),
	})
	if err != nil {
		t.Fatalf("Transition back to new: %v", err)
	}
	if reopened.LossReason != "" || reopened.LossNote != "" {
		t.Fatalf("loss fields survived reopening: %q/%q", reopened.LossReason, reopened.LossNote)
	}
}

func TestAssignRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07704444444", nil)

	_, err := f.svc.Assign(context.Background(), f.repActor(f.alice), c.ID, f.alice.ID)
	if kindOf(t, err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", kindOf(t, err))
	}

	assigned, err := f.svc.Assign(context.Background(), f.admin, c.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.AssignedTo == nil || *assigned.AssignedTo != f.alice.ID {
		t.Fatalf("assignedTo = %v, want %v", assigned.AssignedTo, f.alice.ID)
	}

	activities, err := f.svc.ListActivities(f.admin, c.ID)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(activities) != 1 || activities[0].Type != string(domain.ActivityAssignment) {
		t.Fatalf("expected one assignment activity, got %+v", activities)
	}
}

func TestBulkAssignSkipsFailingIDsIndependently(t *testing.T) {
	f := newFixture(t)
	a := f.createClient(t, "07705555551", nil)
	b := f.createClient(t, "07705555552", nil)

	result, err := f.svc.BulkAssign(context.Background(), f.admin, transport.BulkAssignRequest{
		ClientIDs: []uuid.UUID{a.ID, uuid.New(), b.ID},
		RepID:     f.bob.ID,
	})
	if err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}
	if len(result.Assigned) != 2 {
		t.Fatalf("assigned = %d, want 2", len(result.Assigned))
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("skipped = %d, want 1", len(result.Skipped))
	}
}

func TestAutoAssignBalancesAcrossActiveReps(t *testing.T) {
	f := newFixture(t)

	// Alice starts with one open lead; Bob with none.
	f.createClient(t, "07706666661", &f.alice.ID)
	first := f.createClient(t, "07706666662", nil)
	second := f.createClient(t, "07706666663", nil)

	result, err := f.svc.AutoAssign(context.Background(), f.admin, transport.AutoAssignRequest{
		ClientIDs: []uuid.UUID{first.ID, second.ID},
	})
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if len(result.Assigned) != 2 {
		t.Fatalf("assigned = %d, want 2", len(result.Assigned))
	}

	// Bob is least loaded so he takes the first; the resulting tie breaks to
	// Alice, the earliest active rep in listing order.
	if result.Assigned[0].RepID != f.bob.ID {
		t.Fatalf("first assignment to %v, want Bob", result.Assigned[0].RepID)
	}
	if result.Assigned[1].RepID != f.alice.ID {
		t.Fatalf("second assignment to %v, want Alice", result.Assigned[1].RepID)
	}
}

func TestAutoAssignSkipsClosedLeads(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07707777771", nil)

	if _, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusWon),
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	result, err := f.svc.AutoAssign(context.Background(), f.admin, transport.AutoAssignRequest{
		ClientIDs: []uuid.UUID{c.ID},
	})
	if err != nil {
		t.Fatalf("AutoAssign: %v", err)
	}
	if len(result.Assigned) != 0 || len(result.Skipped) != 1 {
		t.Fatalf("result = %+v, want one skipped", result)
	}
	if result.Skipped[0].Reason != "lead is closed" {
		t.Fatalf("skip reason = %q", result.Skipped[0].Reason)
	}
}

func TestScheduleFollowUpRejectsClosedLead(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07708888881", nil)

	due := testNow.AddDate(0, 0, 3)
	scheduled, err := f.svc.ScheduleFollowUp(context.Background(), f.admin, c.ID, transport.ScheduleFollowUpRequest{
		FollowUpAt: due,
		Note:       "call back",
	})
	if err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}
	if scheduled.FollowUpAt == nil || !scheduled.FollowUpAt.Equal(due) {
		t.Fatalf("followUpAt = %v, want %v", scheduled.FollowUpAt, due)
	}
	if len(f.reminders.scheduled) != 1 {
		t.Fatalf("reminders scheduled = %d, want 1", len(f.reminders.scheduled))
	}

	if _, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusWon),
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	_, err = f.svc.ScheduleFollowUp(context.Background(), f.admin, c.ID, transport.ScheduleFollowUpRequest{
		FollowUpAt: due,
	})
	if kindOf(t, err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want KindValidation", kindOf(t, err))
	}
}

func TestCompleteTaskNotInterestedMarksLost(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07709999991", nil)

	due := testNow.AddDate(0, 0, 1)
	if _, err := f.svc.ScheduleFollowUp(context.Background(), f.admin, c.ID, transport.ScheduleFollowUpRequest{
		FollowUpAt: due,
	}); err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}

	discarded := testNow.AddDate(0, 0, 7)
	done, err := f.svc.CompleteFollowUpTask(context.Background(), f.admin, c.ID, transport.CompleteTaskRequest{
		Outcome:  string(domain.OutcomeNotInterested),
		NextDate: &discarded,
	})
	if err != nil {
		t.Fatalf("CompleteFollowUpTask: %v", err)
	}

	if done.Status != string(domain.StatusLost) {
		t.Fatalf("status = %q, want lost", done.Status)
	}
	if done.LossReason != string(domain.LossReasonOther) {
		t.Fatalf("lossReason = %q, want other", done.LossReason)
	}
	if done.LossNote != "Not Interested (Task Completion)" {
		t.Fatalf("lossNote = %q", done.LossNote)
	}
	if done.FollowUpAt != nil {
		t.Fatal("next date must be discarded on not-interested")
	}
}

func TestCompleteTaskInterestedReschedulesInOneMutation(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07709999992", nil)

	if _, err := f.svc.ScheduleFollowUp(context.Background(), f.admin, c.ID, transport.ScheduleFollowUpRequest{
		FollowUpAt: testNow.AddDate(0, 0, 1),
	}); err != nil {
		t.Fatalf("ScheduleFollowUp: %v", err)
	}

	next := testNow.AddDate(0, 0, 5)
	done, err := f.svc.CompleteFollowUpTask(context.Background(), f.admin, c.ID, transport.CompleteTaskRequest{
		Outcome:  string(domain.OutcomeInterested),
		Note:     "wants a demo",
		NextDate: &next,
	})
	if err != nil {
		t.Fatalf("CompleteFollowUpTask: %v", err)
	}

	if done.FollowUpAt == nil || !done.FollowUpAt.Equal(next) {
		t.Fatalf("followUpAt = %v, want %v", done.FollowUpAt, next)
	}
	if done.FollowUpNote != "wants a demo" {
		t.Fatalf("followUpNote = %q", done.FollowUpNote)
	}
	if done.Status != string(domain.StatusNew) {
		t.Fatalf("status = %q, want unchanged", done.Status)
	}
	if len(f.reminders.scheduled) != 2 {
		t.Fatalf("reminders scheduled = %d, want 2", len(f.reminders.scheduled))
	}
}

func TestListClientsVisibilityAndBucketFilter(t *testing.T) {
	f := newFixture(t)

	mine := f.createClient(t, "07711111111", &f.alice.ID)
	f.createClient(t, "07711111112", &f.bob.ID)
	unassigned := f.createClient(t, "07711111113", nil)

	page, err := f.svc.ListClients(f.repActor(f.alice), transport.ListClientsQuery{})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != mine.ID {
		t.Fatalf("rep view total = %d, want only own lead", page.Total)
	}

	adminPage, err := f.svc.ListClients(f.admin, transport.ListClientsQuery{})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	if adminPage.Total != 3 {
		t.Fatalf("admin view total = %d, want 3", adminPage.Total)
	}

	// The status filter matches display buckets: an unassigned lead sits in
	// the new bucket regardless of stored status.
	newPage, err := f.svc.ListClients(f.admin, transport.ListClientsQuery{Status: string(domain.StatusNew)})
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	found := false
	for _, item := range newPage.Items {
		if item.ID == unassigned.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("unassigned lead missing from new bucket")
	}
}

func TestQuickCallIsTheOnlyContactRecencyWrite(t *testing.T) {
	f := newFixture(t)
	c := f.createClient(t, "07712222221", nil)

	if _, err := f.svc.LogActivity(context.Background(), f.admin, c.ID, transport.LogActivityRequest{
		Type:        string(domain.ActivityNote),
		Description: "left voicemail",
	}); err != nil {
		t.Fatalf("LogActivity: %v", err)
	}

	after, err := f.svc.GetClient(f.admin, c.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if !after.LastInteractionAt.Equal(*c.LastInteractionAt) {
		t.Fatal("LogActivity must not touch last interaction")
	}

	called, err := f.svc.QuickCall(context.Background(), f.admin, c.ID, "")
	if err != nil {
		t.Fatalf("QuickCall: %v", err)
	}
	if called.LastInteractionAt == nil || !called.LastInteractionAt.Equal(testNow) {
		t.Fatalf("quick call lastInteractionAt = %v, want %v", called.LastInteractionAt, testNow)
	}

	activities, err := f.svc.ListActivities(f.admin, c.ID)
	if err != nil {
		t.Fatalf("ListActivities: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(activities))
	}
}

func TestUpsertTargetReplacesSamePeriod(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.UpsertTarget(context.Background(), f.admin, transport.UpsertTargetRequest{
		MemberID: f.alice.ID, Month: 6, Year: 2024, DealsTarget: 5, VisitsTarget: 20,
	})
	if err != nil {
		t.Fatalf("UpsertTarget: %v", err)
	}
	if first.DealsTarget != 5 {
		t.Fatalf("dealsTarget = %d, want 5", first.DealsTarget)
	}

	second, err := f.svc.UpsertTarget(context.Background(), f.admin, transport.UpsertTargetRequest{
		MemberID: f.alice.ID, Month: 6, Year: 2024, DealsTarget: 8, VisitsTarget: 25,
	})
	if err != nil {
		t.Fatalf("UpsertTarget: %v", err)
	}
	if second.DealsTarget != 8 || second.VisitsTarget != 25 {
		t.Fatalf("replaced target = %+v", second)
	}

	got, err := f.svc.GetTarget(f.repActor(f.alice), f.alice.ID, 6, 2024)
	if err != nil {
		t.Fatalf("GetTarget: %v", err)
	}
	if got.DealsTarget != 8 {
		t.Fatalf("dealsTarget = %d, want 8", got.DealsTarget)
	}

	_, err = f.svc.GetTarget(f.repActor(f.bob), f.alice.ID, 6, 2024)
	if kindOf(t, err) != apperr.KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", kindOf(t, err))
	}
}

func TestPipelineSummaryCountsBuckets(t *testing.T) {
	f := newFixture(t)

	f.createClient(t, "07713333331", nil)
	won := f.createClient(t, "07713333332", &f.alice.ID)
	if _, err := f.svc.Transition(context.Background(), f.admin, won.ID, transport.TransitionRequest{
		Status: string(domain.StatusWon),
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	summary := f.svc.PipelineSummary(f.admin)
	if summary.Total != 2 {
		t.Fatalf("total = %d, want 2", summary.Total)
	}
	if summary.Buckets[string(domain.StatusNew)] != 1 {
		t.Fatalf("new bucket = %d, want 1", summary.Buckets[string(domain.StatusNew)])
	}
	if summary.Buckets[string(domain.StatusWon)] != 1 {
		t.Fatalf("won bucket = %d, want 1", summary.Buckets[string(domain.StatusWon)])
	}
}

func TestEventsArePublishedForLifecycleCommands(t *testing.T) {
	f := newFixture(t)

	c := f.createClient(t, "07714444441", nil)
	if _, err := f.svc.Assign(context.Background(), f.admin, c.ID, f.alice.ID); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), f.admin, c.ID, transport.TransitionRequest{
		Status: string(domain.StatusQualifying),
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	want := []string{"crm.lead.created", "crm.lead.assigned", "crm.lead.status_changed"}
	got := f.bus.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
