package domain

import (
	"testing"
	"time"
)

var scoreNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fullProfile() ScoreSnapshot {
	return ScoreSnapshot{
		MessageCount: 1,
		Intent:       IntentInquiry,
		LastMessage:  scoreNow,
		Name:         "Jane Doe",
		Email:        "jane@example.com",
		Phone:        "+14155550123",
		Company:      "Acme",
	}
}

func TestCalculateScoreBoundsAndBreakdownSum(t *testing.T) {
	snapshots := []ScoreSnapshot{
		{},
		fullProfile(),
		{MessageCount: 50, Intent: IntentPurchaseIntent, LastMessage: scoreNow, Name: "a", Email: "b", Phone: "c", Company: "d"},
		{MessageCount: 3, Intent: IntentComplaint, LastMessage: scoreNow.Add(-40 * 24 * time.Hour), Email: "x@y.z"},
		{MessageCount: 7, Intent: Intent("bogus"), LastMessage: scoreNow.Add(-3 * 24 * time.Hour), Name: "n", Company: "c"},
	}

	for i, s := range snapshots {
		score, bd := CalculateScore(s, scoreNow)

		if score < 0 || score > 100 {
			t.Fatalf("case %d: score %d out of [0,100]", i, score)
		}
		if bd.Engagement < 0 || bd.Engagement > 30 {
			t.Fatalf("case %d: engagement %d out of [0,30]", i, bd.Engagement)
		}
		if bd.Intent < 0 || bd.Intent > 40 {
			t.Fatalf("case %d: intent %d out of [0,40]", i, bd.Intent)
		}
		if bd.Recency < 0 || bd.Recency > 20 {
			t.Fatalf("case %d: recency %d out of [0,20]", i, bd.Recency)
		}
		if bd.Completion < 0 || bd.Completion > 10 {
			t.Fatalf("case %d: completion %d out of [0,10]", i, bd.Completion)
		}

		sum := bd.Engagement + bd.Intent + bd.Recency + bd.Completion
		if sum > 100 {
			sum = 100
		}
		if sum != score {
			t.Fatalf("case %d: breakdown sum %d != score %d (%+v)", i, sum, score, bd)
		}
	}
}

func TestCalculateScoreIsDeterministic(t *testing.T) {
	s := fullProfile()
	s.MessageCount = 4
	s.Intent = IntentIntegration
	s.LastMessage = scoreNow.Add(-50 * time.Hour)

	firstScore, firstBD := CalculateScore(s, scoreNow)
	for i := 0; i < 10; i++ {
		score, bd := CalculateScore(s, scoreNow)
		if score != firstScore || bd != firstBD {
			t.Fatalf("run %d: got %d %+v, want %d %+v", i, score, bd, firstScore, firstBD)
		}
	}
}

func TestEngagementSaturatesAtTenMessages(t *testing.T) {
	base := fullProfile()

	base.MessageCount = 10
	_, atTen := CalculateScore(base, scoreNow)

	base.MessageCount = 50
	_, atFifty := CalculateScore(base, scoreNow)

	if atTen.Engagement != 30 || atFifty.Engagement != 30 {
		t.Fatalf("expected saturation at 30, got %d and %d", atTen.Engagement, atFifty.Engagement)
	}
}

func TestRecencyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		age  time.Duration
		want int
	}{
		{"just sent", 0, 20},
		{"23h59m", 23*time.Hour + 59*time.Minute, 20},
		{"24h01m", 24*time.Hour + time.Minute, 15},
		{"6d23h", 6*24*time.Hour + 23*time.Hour, 15},
		{"7d01m", 7*24*time.Hour + time.Minute, 10},
		{"29d", 29 * 24 * time.Hour, 10},
		{"30d01m", 30*24*time.Hour + time.Minute, 5},
		{"90d", 90 * 24 * time.Hour, 5},
	}

	for _, tc := range cases {
		s := fullProfile()
		s.LastMessage = scoreNow.Add(-tc.age)
		_, bd := CalculateScore(s, scoreNow)
		if bd.Recency != tc.want {
			t.Fatalf("%s: recency = %d, want %d", tc.name, bd.Recency, tc.want)
		}
	}
}

func TestIntentScoreTable(t *testing.T) {
	cases := []struct {
		intent Intent
		want   int
	}{
		{IntentPurchaseIntent, 40},
		{IntentDemoRequest, 35},
		{IntentIntegration, 30},
		{IntentPricingInquiry, 30},
		{IntentCustomization, 30},
		{IntentProductInfo, 25},
		{IntentComparison, 25},
		{IntentInquiry, 20},
		{IntentSupportRequest, 15},
		{IntentOther, 15},
		{IntentComplaint, 10},
		{Intent("unmapped"), 15},
	}

	for _, tc := range cases {
		s := fullProfile()
		s.Intent = tc.intent
		_, bd := CalculateScore(s, scoreNow)
		if bd.Intent != tc.want {
			t.Fatalf("intent %q: score = %d, want %d", tc.intent, bd.Intent, tc.want)
		}
	}
}

func TestCompletionCountsNonEmptyFields(t *testing.T) {
	cases := []struct {
		name string
		s    ScoreSnapshot
		want int
	}{
		{"none", ScoreSnapshot{LastMessage: scoreNow}, 0},
		{"two of four", ScoreSnapshot{LastMessage: scoreNow, Name: "n", Phone: "p"}, 5},
		{"three of four", ScoreSnapshot{LastMessage: scoreNow, Name: "n", Phone: "p", Email: "e"}, 8},
		{"all four", fullProfile(), 10},
	}

	for _, tc := range cases {
		_, bd := CalculateScore(tc.s, scoreNow)
		if bd.Completion != tc.want {
			t.Fatalf("%s: completion = %d, want %d", tc.name, bd.Completion, tc.want)
		}
	}
}

// Fresh pricing inquiry from a fully known contact: the canonical first
// capture scenario. 3 (engagement) + 30 (intent) + 20 (recency) + 10
// (completion) = 63.
func TestFreshPricingLeadScoresSixtyThree(t *testing.T) {
	s := fullProfile()
	s.Intent = IntentPricingInquiry
	s.MessageCount = 1
	s.LastMessage = scoreNow.Add(-time.Minute)

	score, bd := CalculateScore(s, scoreNow)
	if score != 63 {
		t.Fatalf("score = %d, want 63 (%+v)", score, bd)
	}
}
