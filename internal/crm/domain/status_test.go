package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPipelineBucketPresentsUnassignedAsNew(t *testing.T) {
	repID := uuid.New()

	tests := []struct {
		name       string
		status     Status
		assignedTo *uuid.UUID
		want       Status
	}{
		{"unassigned new", StatusNew, nil, StatusNew},
		{"unassigned qualifying", StatusQualifying, nil, StatusNew},
		{"unassigned proposal", StatusProposal, nil, StatusNew},
		{"unassigned won stays won", StatusWon, nil, StatusWon},
		{"unassigned lost stays lost", StatusLost, nil, StatusLost},
		{"assigned qualifying", StatusQualifying, &repID, StatusQualifying},
		{"assigned proposal", StatusProposal, &repID, StatusProposal},
	}

	for _, tc := range tests {
		c := Client{Status: tc.status, AssignedTo: tc.assignedTo}
		if got := PipelineBucket(c); got != tc.want {
			t.Errorf("%s: bucket = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestBucketCounts(t *testing.T) {
	repID := uuid.New()
	clients := []Client{
		{Status: StatusQualifying, AssignedTo: nil},
		{Status: StatusNew, AssignedTo: nil},
		{Status: StatusProposal, AssignedTo: &repID},
		{Status: StatusWon, AssignedTo: &repID},
	}

	counts := BucketCounts(clients)
	if counts[StatusNew] != 2 {
		t.Errorf("new bucket = %d, want 2", counts[StatusNew])
	}
	if counts[StatusProposal] != 1 || counts[StatusWon] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestDaysSinceContact(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	if got := DaysSinceContact(Client{}, now); got != NeverContacted {
		t.Errorf("never contacted = %d, want %d", got, NeverContacted)
	}

	threeDays := now.Add(-72*time.Hour - 30*time.Minute)
	if got := DaysSinceContact(Client{LastInteractionAt: &threeDays}, now); got != 3 {
		t.Errorf("days = %d, want 3", got)
	}

	today := now.Add(-2 * time.Hour)
	if got := DaysSinceContact(Client{LastInteractionAt: &today}, now); got != 0 {
		t.Errorf("days = %d, want 0", got)
	}
}
