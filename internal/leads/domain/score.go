package domain

import (
	"math"
	"time"
)

// Score component ceilings.
const (
	maxEngagementScore = 30
	maxIntentScore     = 40
	maxRecencyScore    = 20
	maxCompletionScore = 10
	maxTotalScore      = 100

	// engagementSaturation is the message count at which the engagement
	// component maxes out.
	engagementSaturation = 10
)

// intentScores maps each intent tag to its score weight. Unmapped tags
// default to fallbackIntentScore.
var intentScores = map[Intent]int{
	IntentPurchaseIntent: 40,
	IntentDemoRequest:    35,
	IntentIntegration:    30,
	IntentPricingInquiry: 30,
	IntentCustomization:  30,
	IntentProductInfo:    25,
	IntentComparison:     25,
	IntentInquiry:        20,
	IntentSupportRequest: 15,
	IntentOther:          15,
	IntentComplaint:      10,
}

const fallbackIntentScore = 15

// ScoreSnapshot carries the lead fields the score engine reads.
type ScoreSnapshot struct {
	MessageCount int
	Intent       Intent
	LastMessage  time.Time
	Name         string
	Email        string
	Phone        string
	Company      string
}

// ScoreBreakdown is the four-part decomposition of a lead score.
// Components are clamped to their documented ranges and sum to the total
// (subject to the 100 ceiling).
type ScoreBreakdown struct {
	Engagement int `json:"engagement"`
	Intent     int `json:"intent"`
	Recency    int `json:"recency"`
	Completion int `json:"completion"`
}

// CalculateScore computes a lead quality score (0-100) and its breakdown.
// Pure function: deterministic given the snapshot and the supplied clock.
func CalculateScore(s ScoreSnapshot, now time.Time) (int, ScoreBreakdown) {
	engagement := engagementScore(s.MessageCount)
	intent := intentScore(s.Intent)
	recency := recencyScore(s.LastMessage, now)
	completion := completionScore(s)

	total := int(math.Round(engagement + float64(intent) + float64(recency) + completion))
	if total > maxTotalScore {
		total = maxTotalScore
	}

	return total, ScoreBreakdown{
		Engagement: int(math.Round(engagement)),
		Intent:     intent,
		Recency:    recency,
		Completion: int(math.Round(completion)),
	}
}

// engagementScore scales linearly with message count and saturates at ten
// messages.
func engagementScore(messageCount int) float64 {
	if messageCount < 0 {
		messageCount = 0
	}
	score := float64(messageCount) / engagementSaturation * maxEngagementScore
	return math.Min(maxEngagementScore, score)
}

func intentScore(intent Intent) int {
	if score, ok := intentScores[intent]; ok {
		return score
	}
	return fallbackIntentScore
}

// recencyScore is stepped, not continuous: <24h, <7d, <30d, older.
func recencyScore(lastMessage, now time.Time) int {
	hours := now.Sub(lastMessage).Hours()
	switch {
	case hours < 24:
		return maxRecencyScore
	case hours < 24*7:
		return 15
	case hours < 24*30:
		return 10
	default:
		return 5
	}
}

// completionScore rewards each non-empty contact profile field equally.
func completionScore(s ScoreSnapshot) float64 {
	filled := 0
	for _, field := range []string{s.Name, s.Email, s.Phone, s.Company} {
		if field != "" {
			filled++
		}
	}
	return float64(filled) / 4 * maxCompletionScore
}
