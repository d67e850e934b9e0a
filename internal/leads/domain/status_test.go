package domain

import "testing"

func TestIsValidStatus(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusContacted, StatusQualified, StatusNegotiating, StatusConverted, StatusLost, StatusStale} {
		if !IsValidStatus(s) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	if IsValidStatus(Status("archived")) {
		t.Fatal("expected unknown status to be invalid")
	}
}

func TestStaleIsSystemOnly(t *testing.T) {
	if CanClientSet(StatusStale) {
		t.Fatal("stale must not be settable by API clients")
	}
	for _, s := range []Status{StatusNew, StatusContacted, StatusQualified, StatusNegotiating, StatusConverted, StatusLost} {
		if !CanClientSet(s) {
			t.Fatalf("expected %q to be client-settable", s)
		}
	}
}

func TestEffectsOfStatusTransitions(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want TransitionEffects
	}{
		{"new to contacted", StatusNew, StatusContacted, TransitionEffects{IncrementFollowUp: true}},
		{"negotiating to converted", StatusNegotiating, StatusConverted, TransitionEffects{StampConverted: true}},
		{"new to qualified", StatusNew, StatusQualified, TransitionEffects{}},
		{"contacted re-asserted", StatusContacted, StatusContacted, TransitionEffects{}},
		{"converted re-asserted", StatusConverted, StatusConverted, TransitionEffects{}},
		{"qualified to lost", StatusQualified, StatusLost, TransitionEffects{}},
	}

	for _, tc := range cases {
		if got := EffectsOf(tc.from, tc.to); got != tc.want {
			t.Fatalf("%s: EffectsOf(%q, %q) = %+v, want %+v", tc.name, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSweepableStatusesAreEarlyPipelineOnly(t *testing.T) {
	sweepable := SweepableStatuses()
	if len(sweepable) != 2 {
		t.Fatalf("expected 2 sweepable statuses, got %v", sweepable)
	}
	want := map[Status]bool{StatusNew: true, StatusContacted: true}
	for _, s := range sweepable {
		if !want[s] {
			t.Fatalf("unexpected sweepable status %q", s)
		}
	}
}
