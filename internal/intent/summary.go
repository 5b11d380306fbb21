// internal/intent/summary.go
package intent

import "strings"

// Jurisdiction is the single market this classifier is tuned for.
const Jurisdiction = "Netherlands"

const emptySummary = "User request for " + Jurisdiction + " market entry."

// BuildSummary renders the present request fields as labeled lines. Absent
// fields are left out rather than filled with defaults.
func BuildSummary(req Request) string {
	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, label+": "+value)
		}
	}

	add("Company name", req.CompanyName)
	add("Company type", req.CompanyType)
	add("Industry", req.Industry)
	add("Entry goals", joinPresent(req.EntryGoals))
	add("Tax considerations", joinPresent(req.TaxConsiderations))
	add("Timeline preference", req.TimelinePreference)
	add("Urgency level", req.UrgencyLevel)
	add("Preferred structure", req.PreferredStructure)
	add("Additional context", req.AdditionalContext)

	if len(lines) == 0 {
		return emptySummary
	}
	return strings.Join(lines, "\n")
}

func joinPresent(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return strings.Join(values, ", ")
}

// SystemInstruction carries the classification rules to the remote model.
const SystemInstruction = `You classify tax and market-entry intent for companies entering the ` + Jurisdiction + `.
Read the request summary and answer with a single JSON object matching the intent schema.

Rules:
1. is_holding is true when the request describes a holding or subsidiary structure,
   mentions the participation exemption (deelnemingsvrijstelling), lists managing
   subsidiaries as a goal, or the company name signals a holding/group entity.
2. must_be_bv is true when the company name or type explicitly denotes a Dutch B.V.
   ("B.V.", "BV", "Besloten Vennootschap", "Dutch Limited Liability Company"), when the
   user explicitly asks for a Dutch BV, or when is_holding is true (holdings need an
   incorporated entity for treaty benefits). Generic "LLC", "Corporation" or "Limited"
   wording does NOT imply a BV without explicit Dutch context.
3. entity_type is "BV" when must_be_bv is true; otherwise "HOLDING" when is_holding is
   true; otherwise "BRANCH" when urgency is HIGH; otherwise null.
4. urgency is "HIGH" when the timeline signals immediacy (ASAP, urgent, fast,
   short-term, within one month, immediate); "LOW" when it is flexible or long-term;
   "MEDIUM" otherwise.
5. industry_context is "TECH" for software, technology, biotech, engineering or goals
   mentioning R&D or research; "FINANCIAL" for financial services, banking or
   insurance; "GENERAL" for any other stated industry; null when no industry is given.
6. intent is "SETUP" for establishing an entity. Use "ADVISORY" only when the user asks
   for tax advice or consultation and "COMPLIANCE" only when they ask for a compliance
   check.

Only set a flag to true when the request clearly supports it. Never return an
entity_type that contradicts must_be_bv or is_holding.`
