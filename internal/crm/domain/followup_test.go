package domain

import (
	"testing"
	"time"
)

func dayPtr(t time.Time) *time.Time { return &t }

func TestFollowUpDueBoundaries(t *testing.T) {
	today := time.Date(2024, 6, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		followUpAt  *time.Time
		wantOverdue bool
		wantToday   bool
		wantDue     bool
	}{
		{"yesterday", dayPtr(time.Date(2024, 6, 9, 23, 59, 0, 0, time.UTC)), true, false, true},
		{"today early", dayPtr(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)), false, true, true},
		{"today late", dayPtr(time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)), false, true, true},
		{"tomorrow", dayPtr(time.Date(2024, 6, 11, 0, 1, 0, 0, time.UTC)), false, false, false},
		{"none", nil, false, false, false},
	}

	for _, tc := range tests {
		c := Client{FollowUpAt: tc.followUpAt}
		if got := Overdue(c, today); got != tc.wantOverdue {
			t.Errorf("%s: Overdue = %v, want %v", tc.name, got, tc.wantOverdue)
		}
		if got := DueToday(c, today); got != tc.wantToday {
			t.Errorf("%s: DueToday = %v, want %v", tc.name, got, tc.wantToday)
		}
		if got := Due(c, today); got != tc.wantDue {
			t.Errorf("%s: Due = %v, want %v", tc.name, got, tc.wantDue)
		}
	}
}

func TestCompleteTaskClearsThenReschedules(t *testing.T) {
	current := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	next := time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)
	c := Client{Status: StatusQualifying, FollowUpAt: &current, FollowUpNote: "initial call"}

	for _, outcome := range []TaskOutcome{OutcomeInterested, OutcomeBusy} {
		got, err := CompleteTask(c, outcome, "call back next week", &next)
		if err != nil {
			t.Fatalf("%s: %v", outcome, err)
		}
		if got.FollowUpAt == nil || !got.FollowUpAt.Equal(next) {
			t.Errorf("%s: followUpAt = %v, want %v", outcome, got.FollowUpAt, next)
		}
		if got.FollowUpNote != "call back next week" {
			t.Errorf("%s: followUpNote = %q", outcome, got.FollowUpNote)
		}
		if got.Status != StatusQualifying {
			t.Errorf("%s: status changed to %q", outcome, got.Status)
		}
	}
}

func TestCompleteTaskWithoutNextDateJustClears(t *testing.T) {
	current := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	c := Client{Status: StatusProposal, FollowUpAt: &current, FollowUpNote: "demo"}

	got, err := CompleteTask(c, OutcomeInterested, "no date yet", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.FollowUpAt != nil || got.FollowUpNote != "" {
		t.Errorf("follow-up not cleared: %v %q", got.FollowUpAt, got.FollowUpNote)
	}
}

func TestCompleteTaskNotInterestedMarksLost(t *testing.T) {
	current := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	next := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)
	c := Client{Status: StatusQualifying, FollowUpAt: &current}

	// A supplied next date must be discarded: the lead is lost, full stop.
	got, err := CompleteTask(c, OutcomeNotInterested, "", &next)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusLost {
		t.Errorf("status = %q, want %q", got.Status, StatusLost)
	}
	if !IsKnownLossReason(got.LossReason) {
		t.Errorf("lossReason %q outside the known taxonomy", got.LossReason)
	}
	if got.LossNote != "Not Interested (Task Completion)" {
		t.Errorf("lossNote = %q", got.LossNote)
	}
	if got.FollowUpAt != nil {
		t.Errorf("next date should be discarded, got %v", got.FollowUpAt)
	}
}

func TestCompleteTaskDoneClearsOnly(t *testing.T) {
	current := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	c := Client{Status: StatusProposal, FollowUpAt: &current, FollowUpNote: "x"}

	got, err := CompleteTask(c, OutcomeDone, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got.FollowUpAt != nil || got.FollowUpNote != "" {
		t.Error("follow-up should be cleared")
	}
	if got.Status != StatusProposal {
		t.Errorf("status changed to %q", got.Status)
	}
}

func TestCompleteTaskUnknownOutcome(t *testing.T) {
	if _, err := CompleteTask(Client{}, TaskOutcome("maybe"), "", nil); err == nil {
		t.Error("unknown outcome should be rejected")
	}
}
