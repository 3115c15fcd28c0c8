package domain

import "github.com/google/uuid"

// CanView reports whether the actor may see the client. Admins see
// everything; reps only see leads assigned to them. Territory allow-lists do
// not retroactively hide already-assigned records.
func CanView(actor Actor, c Client) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return c.AssignedTo != nil && *c.AssignedTo == actor.ID
}

// CanMutate mirrors CanView: mutation rights equal view rights.
func CanMutate(actor Actor, c Client) bool {
	return CanView(actor, c)
}

// CanAssign reports whether the actor may run assign, bulk-assign or
// auto-assign. Reassignment is admin-only.
func CanAssign(actor Actor) bool {
	return actor.Role == RoleAdmin
}

// CanCreateIn reports whether the actor may create a new lead in the given
// province for the given brand. Admins are unrestricted; reps are bound by
// their allow-lists. An empty allow-list means no restriction was configured.
func CanCreateIn(actor Actor, province string, brandID uuid.UUID) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	if len(actor.AllowedProvinces) > 0 && !containsString(actor.AllowedProvinces, province) {
		return false
	}
	if len(actor.AllowedBrands) > 0 && !containsUUID(actor.AllowedBrands, brandID) {
		return false
	}
	return true
}

// BrandAllowed reports whether the actor's brand allow-list admits the
// brand. Used to populate selection inputs.
func BrandAllowed(actor Actor, brandID uuid.UUID) bool {
	if actor.Role == RoleAdmin || len(actor.AllowedBrands) == 0 {
		return true
	}
	return containsUUID(actor.AllowedBrands, brandID)
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsUUID(list []uuid.UUID, v uuid.UUID) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
