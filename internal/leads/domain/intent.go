// Package domain provides core business rules for the leads bounded context.
package domain

import "strings"

// Intent is a closed-vocabulary classification of what a message's sender
// appears to want.
type Intent string

const (
	IntentInquiry        Intent = "inquiry"
	IntentDemoRequest    Intent = "demo_request"
	IntentPricingInquiry Intent = "pricing_inquiry"
	IntentProductInfo    Intent = "product_info"
	IntentPurchaseIntent Intent = "purchase_intent"
	IntentComparison     Intent = "comparison"
	IntentIntegration    Intent = "integration"
	IntentCustomization  Intent = "customization"
	IntentSupportRequest Intent = "support_request"
	IntentComplaint      Intent = "complaint"
	IntentOther          Intent = "other"
)

// DefaultIntent is the tag assigned when no keyword rule matches. A lead
// still carrying this tag is considered unclassified and may be overwritten
// by a later detection (see Lead.IntentLocked).
const DefaultIntent = IntentInquiry

// validIntents holds every accepted intent tag.
var validIntents = map[Intent]bool{
	IntentInquiry:        true,
	IntentDemoRequest:    true,
	IntentPricingInquiry: true,
	IntentProductInfo:    true,
	IntentPurchaseIntent: true,
	IntentComparison:     true,
	IntentIntegration:    true,
	IntentCustomization:  true,
	IntentSupportRequest: true,
	IntentComplaint:      true,
	IntentOther:          true,
}

// IsValidIntent reports whether the tag belongs to the intent vocabulary.
func IsValidIntent(tag Intent) bool {
	return validIntents[tag]
}

// IntentRule binds an intent tag to the trigger phrases that select it.
type IntentRule struct {
	Intent   Intent
	Keywords []string
}

// DefaultIntentRules is the ordered rule list used by classification.
// Order matters: earlier rules shadow later ones when a message matches
// keywords from multiple rules.
var DefaultIntentRules = []IntentRule{
	{IntentDemoRequest, []string{"demo", "demonstration", "free trial", "trial", "show me how", "walkthrough"}},
	{IntentPricingInquiry, []string{"price", "pricing", "cost", "how much", "quotation", "plans", "subscription", "discount"}},
	{IntentProductInfo, []string{"features", "product", "catalog", "catalogue", "specification", "how does it work", "more details", "tell me more"}},
	{IntentPurchaseIntent, []string{"buy", "purchase", "order now", "place an order", "sign me up", "ready to start", "payment link"}},
	{IntentComparison, []string{"compare", "comparison", "competitor", "alternative", " vs ", "difference between", "better than"}},
	{IntentIntegration, []string{"integrate", "integration", "api", "webhook", "connect with", "plugin", "sync with"}},
	{IntentSupportRequest, []string{"help", "support", "issue", "problem", "not working", "error", "stuck"}},
	{IntentComplaint, []string{"complaint", "refund", "disappointed", "terrible", "worst", "cancel my", "unhappy"}},
}

// Classifier matches free-text message content against an ordered rule list.
// The vocabulary is injected so ordering and keyword sets stay testable in
// isolation and swappable per deployment.
type Classifier struct {
	rules []IntentRule
}

// NewClassifier creates a classifier over the given ordered rules.
func NewClassifier(rules []IntentRule) *Classifier {
	return &Classifier{rules: rules}
}

// NewDefaultClassifier creates a classifier over DefaultIntentRules.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultIntentRules)
}

// DetectIntent returns the first rule whose keywords substring-match the
// message (case-insensitive), or DefaultIntent when nothing matches.
func (c *Classifier) DetectIntent(text string) Intent {
	lowered := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Intent
			}
		}
	}
	return DefaultIntent
}

// ExtractKeywords returns every trigger phrase found in the message across
// the whole vocabulary, not just the winning rule's. The result is
// deduplicated; ordering follows rule declaration and is not significant.
func (c *Classifier) ExtractKeywords(text string) []string {
	lowered := strings.ToLower(text)
	seen := make(map[string]bool)
	matched := make([]string, 0)

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if seen[keyword] {
				continue
			}
			if strings.Contains(lowered, keyword) {
				seen[keyword] = true
				matched = append(matched, keyword)
			}
		}
	}

	return matched
}

// MergeKeywords unions existing and newly extracted keywords, preserving the
// order of first appearance. Keyword sets only grow across capture events.
func MergeKeywords(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(incoming))

	for _, kw := range existing {
		if !seen[kw] {
			seen[kw] = true
			merged = append(merged, kw)
		}
	}
	for _, kw := range incoming {
		if !seen[kw] {
			seen[kw] = true
			merged = append(merged, kw)
		}
	}

	return merged
}
