package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestVisibility(t *testing.T) {
	repID := uuid.New()
	otherID := uuid.New()

	admin := Actor{ID: uuid.New(), Role: RoleAdmin}
	rep := Actor{ID: repID, Role: RoleRep}

	mine := Client{AssignedTo: &repID}
	theirs := Client{AssignedTo: &otherID}
	unassigned := Client{}

	tests := []struct {
		name  string
		actor Actor
		c     Client
		want  bool
	}{
		{"admin sees mine", admin, mine, true},
		{"admin sees theirs", admin, theirs, true},
		{"admin sees unassigned", admin, unassigned, true},
		{"rep sees own", rep, mine, true},
		{"rep blind to others", rep, theirs, false},
		{"rep blind to unassigned", rep, unassigned, false},
	}

	for _, tc := range tests {
		if got := CanView(tc.actor, tc.c); got != tc.want {
			t.Errorf("%s: CanView = %v, want %v", tc.name, got, tc.want)
		}
		// Mutation rights mirror view rights.
		if got := CanMutate(tc.actor, tc.c); got != tc.want {
			t.Errorf("%s: CanMutate = %v, want %v", tc.name, got, tc.want)
		}
	}

	if !CanAssign(admin) || CanAssign(rep) {
		t.Error("only admins may reassign")
	}
}

func TestCanCreateIn(t *testing.T) {
	brandA, brandB := uuid.New(), uuid.New()

	rep := Actor{
		ID:               uuid.New(),
		Role:             RoleRep,
		AllowedProvinces: []string{"Baghdad", "Basra"},
		AllowedBrands:    []uuid.UUID{brandA},
	}
	admin := Actor{Role: RoleAdmin}
	unrestricted := Actor{Role: RoleRep}

	if !CanCreateIn(rep, "Baghdad", brandA) {
		t.Error("rep should create inside allow-lists")
	}
	if CanCreateIn(rep, "Erbil", brandA) {
		t.Error("province outside territory should be rejected")
	}
	if CanCreateIn(rep, "Basra", brandB) {
		t.Error("brand outside allow-list should be rejected")
	}
	if !CanCreateIn(admin, "Erbil", brandB) {
		t.Error("admin is unrestricted")
	}
	if !CanCreateIn(unrestricted, "Erbil", brandB) {
		t.Error("empty allow-lists mean no restriction")
	}
}
