package domain

import "time"

// NeverContacted is the sentinel DaysSinceContact returns for leads with no
// recorded interaction.
const NeverContacted = -1

var knownActivityTypes = map[ActivityType]struct{}{
	ActivityCall:       {},
	ActivityVisit:      {},
	ActivityNote:       {},
	ActivityEmail:      {},
	ActivityAssignment: {},
	ActivityReminder:   {},
}

// IsKnownActivityType reports whether the type is in the activity taxonomy.
func IsKnownActivityType(t ActivityType) bool {
	_, ok := knownActivityTypes[t]
	return ok
}

// DaysSinceContact returns the whole days elapsed since the lead's last
// interaction, or NeverContacted when none is recorded. This is a display
// health metric only; logging an activity does not refresh
// LastInteractionAt. Only lead creation and the quick-call action set it.
func DaysSinceContact(c Client, now time.Time) int {
	if c.LastInteractionAt == nil {
		return NeverContacted
	}
	elapsed := now.Sub(*c.LastInteractionAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}
