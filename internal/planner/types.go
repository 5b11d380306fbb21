// internal/planner/types.go
package planner

// Section is the report section a research task feeds.
type Section string

const (
	SectionExecutiveSummary       Section = "executive_summary"
	SectionTaxConsiderations      Section = "tax_considerations"
	SectionBusinessStructure      Section = "business_structure"
	SectionImplementationTimeline Section = "implementation_timeline"
	SectionMarketEntryOptions     Section = "market_entry_options"
	SectionLegalDeepDive          Section = "legal_deep_dive"
)

func (s Section) Valid() bool {
	switch s {
	case SectionExecutiveSummary, SectionTaxConsiderations, SectionBusinessStructure,
		SectionImplementationTimeline, SectionMarketEntryOptions, SectionLegalDeepDive:
		return true
	}
	return false
}

// Task is one research query for the retrieval step. Lower priority runs first.
type Task struct {
	TaskName    string  `json:"task_name"`
	SearchQuery string  `json:"search_query"`
	SectionName Section `json:"section_name"`
	Priority    int     `json:"priority"`
}

// Path is the top-level branch of the decision table.
type Path int

const (
	PathHolding Path = iota
	PathForceBV
	PathSpeedBranch
	PathDefaultComparison
)

func (p Path) String() string {
	switch p {
	case PathHolding:
		return "HOLDING"
	case PathForceBV:
		return "FORCE_BV"
	case PathSpeedBranch:
		return "SPEED_BRANCH"
	case PathDefaultComparison:
		return "DEFAULT_COMPARISON"
	default:
		return "UNKNOWN"
	}
}

// Operating reports whether add-on tasks may be appended on this path.
func (p Path) Operating() bool {
	return p != PathHolding
}

// SectionGroup is a report section with its tasks in plan order.
type SectionGroup struct {
	Section Section `json:"section"`
	Tasks   []Task  `json:"tasks"`
}

func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
