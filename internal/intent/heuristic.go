// internal/intent/heuristic.go
package intent

import (
	"context"
	"strings"
)

var (
	holdingNameKeywords = []string{"holding"}
	holdingTaxKeywords  = []string{"participation exemption", "deelnemingsvrijstelling"}
	bvKeywords          = []string{"b.v", "bv", "b.v.", "besloten vennootschap"}

	urgencyHighKeywords = []string{"asap", "urgent", "fast", "short", "immediate", "1 month", "one month"}
	urgencyLowKeywords  = []string{"flexible", "long", "12 months"}

	techIndustryKeywords      = []string{"software", "technology", "biotech", "engineering"}
	techGoalKeywords          = []string{"r&d"}
	financialIndustryKeywords = []string{"financial", "banking", "insurance"}
)

// HeuristicClassifier is the deterministic keyword classifier. It never
// fails and needs no network, so it also serves as the offline strategy.
type HeuristicClassifier struct{}

func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{}
}

func (h *HeuristicClassifier) Classify(_ context.Context, req Request) (Record, error) {
	return h.Evaluate(req), nil
}

// Evaluate applies the keyword rules to the lower-cased request fields.
func (h *HeuristicClassifier) Evaluate(req Request) Record {
	name := strings.ToLower(req.CompanyName)
	companyType := strings.ToLower(req.CompanyType)
	industry := strings.ToLower(strings.TrimSpace(req.Industry))
	timeline := strings.ToLower(req.TimelinePreference)
	goals := strings.ToLower(strings.Join(req.EntryGoals, " "))
	taxText := strings.ToLower(strings.Join(req.TaxConsiderations, " ") + " " + req.AdditionalContext)

	rec := Record{Intent: KindSetup}

	rec.IsHolding = containsAny(companyType, holdingNameKeywords) ||
		containsAny(name, holdingNameKeywords) ||
		containsAny(taxText, holdingTaxKeywords)

	rec.MustBeBV = containsAny(name, bvKeywords) ||
		containsAny(companyType, bvKeywords) ||
		rec.IsHolding

	switch {
	case containsAny(timeline, urgencyHighKeywords):
		rec.Urgency = UrgencyHigh
	case containsAny(timeline, urgencyLowKeywords):
		rec.Urgency = UrgencyLow
	default:
		rec.Urgency = UrgencyMedium
	}

	switch {
	case containsAny(industry, techIndustryKeywords) || containsAny(goals, techGoalKeywords):
		rec.IndustryContext = IndustryTech
	case containsAny(industry, financialIndustryKeywords):
		rec.IndustryContext = IndustryFinancial
	case industry != "":
		rec.IndustryContext = IndustryGeneral
	}

	switch {
	case rec.MustBeBV:
		rec.EntityType = EntityBV
	case rec.IsHolding:
		rec.EntityType = EntityHolding
	case rec.Urgency == UrgencyHigh:
		rec.EntityType = EntityBranch
	}

	return rec
}

func containsAny(s string, keywords []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
