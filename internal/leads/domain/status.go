package domain

// Status is a lead's pipeline state.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusNegotiating Status = "negotiating"
	StatusConverted   Status = "converted"
	StatusLost        Status = "lost"
	StatusStale       Status = "stale"
)

var validStatuses = map[Status]bool{
	StatusNew:         true,
	StatusContacted:   true,
	StatusQualified:   true,
	StatusNegotiating: true,
	StatusConverted:   true,
	StatusLost:        true,
	StatusStale:       true,
}

// IsValidStatus reports whether the value is a known lead status.
func IsValidStatus(status Status) bool {
	return validStatuses[status]
}

// CanClientSet reports whether API callers may set the status directly.
// "stale" is reserved for the maintenance sweep; accepting it from clients
// would bypass the 30-day inactivity semantics.
func CanClientSet(status Status) bool {
	return IsValidStatus(status) && status != StatusStale
}

// sweepableStatuses are the early pipeline states the stale sweep may
// transition. Later states represent active human engagement and are never
// swept.
var sweepableStatuses = []Status{StatusNew, StatusContacted}

// SweepableStatuses returns the statuses eligible for the stale sweep.
func SweepableStatuses() []Status {
	return append([]Status(nil), sweepableStatuses...)
}

// StaleAfterDays is the inactivity window after which a sweepable lead is
// marked stale.
const StaleAfterDays = 30

// TransitionEffects are the side effects a status transition triggers on the
// lead's tracking fields.
type TransitionEffects struct {
	// IncrementFollowUp bumps follow_up_count and stamps last_follow_up.
	IncrementFollowUp bool
	// StampConverted sets converted_at if not already set.
	StampConverted bool
}

// EffectsOf returns the tracking side effects of moving from one status to
// another. Re-asserting the current status is not a transition and has no
// effects.
func EffectsOf(from, to Status) TransitionEffects {
	if from == to {
		return TransitionEffects{}
	}
	return TransitionEffects{
		IncrementFollowUp: to == StatusContacted,
		StampConverted:    to == StatusConverted,
	}
}
