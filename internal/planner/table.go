// internal/planner/table.go
package planner

import (
	"strings"

	"market-entry-workers/internal/intent"
)

const jurisdiction = intent.Jurisdiction

func task(name, query string, section Section, priority int) Task {
	return Task{
		TaskName:    name,
		SearchQuery: jurisdiction + " " + query,
		SectionName: section,
		Priority:    priority,
	}
}

// pathTasks holds the base tasks of every path.
var pathTasks = map[Path][]Task{
	PathHolding: {
		task("Holding Company Executive Summary",
			"holding company benefits executive summary participation exemption dividend withholding 2025",
			SectionExecutiveSummary, 1),
		task("Participation Exemption Deep Dive",
			"participation exemption deelnemingsvrijstelling requirements 5% ownership motive test dividends capital gains 2025",
			SectionTaxConsiderations, 2),
		task("Holding Structure (BV)",
			"BV incorporation requirements for holding company notary deed timeline 2025",
			SectionBusinessStructure, 3),
		task("Corporate Tax for Holding Companies",
			"corporate income tax 2025 treaty network holding company tax benefits 2025",
			SectionTaxConsiderations, 4),
		task("Holding Company Compliance",
			"holding company substance requirements compliance filing obligations 2025",
			SectionImplementationTimeline, 5),
	},
	PathForceBV: {
		task("BV Executive Summary",
			"BV private limited company benefits liability protection executive summary 2025",
			SectionExecutiveSummary, 1),
		task("BV Incorporation Process",
			"BV incorporation timeline notary requirements bank account opening KvK registration 2025",
			SectionBusinessStructure, 2),
		task("BV Tax and Compliance",
			"BV corporate income tax VAT registration obligations 2025",
			SectionTaxConsiderations, 3),
		task("BV Implementation Timeline",
			"BV setup timeline notarization KvK registration bank account duration 2025",
			SectionImplementationTimeline, 4),
	},
	PathSpeedBranch: {
		task("Branch Office Executive Summary",
			"Branch Office market entry speed benefits vs BV quick setup 2025",
			SectionExecutiveSummary, 1),
		task("Branch Registration (No Notary)",
			"Branch Office registration Chamber of Commerce KvK no notary required timeline fast setup 2025",
			SectionBusinessStructure, 2),
		task("Branch Tax and Compliance",
			"Branch Office tax obligations VAT registration corporate income tax 2025",
			SectionTaxConsiderations, 3),
		task("Branch Implementation Timeline",
			"Branch Office setup timeline KvK registration no notary fast entry 2025",
			SectionImplementationTimeline, 4),
	},
	PathDefaultComparison: {
		task("Market Entry Comparison",
			"BV vs Branch Office comparison tax liability speed setup requirements 2025",
			SectionMarketEntryOptions, 1),
		task("Executive Summary Research",
			"market entry overview corporate tax business structure 2025",
			SectionExecutiveSummary, 2),
		task("Tax Overview Research",
			"corporate income tax rates VAT obligations tax overview 2025",
			SectionTaxConsiderations, 3),
		task("Implementation Timeline Research",
			"company registration timeline BV branch office setup duration 2025",
			SectionImplementationTimeline, 4),
	},
}

// addOn appends Task when Applies holds. Add-ons run on operating paths only,
// in table order.
type addOn struct {
	Name    string
	Applies func(path Path, rec intent.Record, req intent.Request) bool
	Task    Task
}

var addOns = []addOn{
	{
		Name: "tech_incentives",
		Applies: func(_ Path, rec intent.Record, _ intent.Request) bool {
			return rec.IndustryContext == intent.IndustryTech
		},
		Task: task("R&D Incentives (WBSO & Innovation Box)",
			"WBSO R&D tax credit requirements and Innovation Box 9% rate conditions software technology 2025",
			SectionTaxConsiderations, 5),
	},
	{
		Name: "general_corporate_tax",
		Applies: func(path Path, _ intent.Record, _ intent.Request) bool {
			return path == PathDefaultComparison
		},
		Task: task("General Corporate Tax",
			"corporate income tax rate 2025 VAT registration payroll tax obligations 2025",
			SectionTaxConsiderations, 5),
	},
	{
		Name: "hiring",
		Applies: func(_ Path, _ intent.Record, req intent.Request) bool {
			goals := strings.ToLower(strings.Join(req.EntryGoals, " "))
			return strings.Contains(goals, "hire") || strings.Contains(goals, "employees")
		},
		Task: task("30% Ruling & Payroll",
			"30% ruling for foreign employees payroll tax requirements employment contracts 2025",
			SectionLegalDeepDive, 6),
	},
}
