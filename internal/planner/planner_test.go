package planner

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-entry-workers/internal/intent"
)

func names(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.TaskName
	}
	return out
}

func allRecords() []intent.Record {
	var recs []intent.Record
	for _, holding := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			for _, u := range []intent.Urgency{intent.UrgencyHigh, intent.UrgencyMedium, intent.UrgencyLow} {
				for _, ind := range []intent.IndustryContext{intent.IndustryUnset, intent.IndustryTech, intent.IndustryFinancial, intent.IndustryGeneral} {
					recs = append(recs, intent.Record{
						IsHolding:       holding,
						MustBeBV:        bv,
						Intent:          intent.KindSetup,
						Urgency:         u,
						IndustryContext: ind,
					})
				}
			}
		}
	}
	return recs
}

var hiringRequest = intent.Request{EntryGoals: []string{"Hire Employees"}}

// ==========================
// Path selection
// ==========================

func TestSelectPath(t *testing.T) {
	tests := []struct {
		name string
		rec  intent.Record
		want Path
	}{
		{"holding dominates bv", intent.Record{IsHolding: true, MustBeBV: true, Urgency: intent.UrgencyHigh}, PathHolding},
		{"holding without bv", intent.Record{IsHolding: true, Urgency: intent.UrgencyLow}, PathHolding},
		{"bv dominates urgency", intent.Record{MustBeBV: true, Urgency: intent.UrgencyHigh}, PathForceBV},
		{"urgent operating company", intent.Record{Urgency: intent.UrgencyHigh}, PathSpeedBranch},
		{"medium urgency", intent.Record{Urgency: intent.UrgencyMedium}, PathDefaultComparison},
		{"low urgency", intent.Record{Urgency: intent.UrgencyLow}, PathDefaultComparison},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectPath(tt.rec))
		})
	}
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "HOLDING", PathHolding.String())
	assert.Equal(t, "FORCE_BV", PathForceBV.String())
	assert.Equal(t, "SPEED_BRANCH", PathSpeedBranch.String())
	assert.Equal(t, "DEFAULT_COMPARISON", PathDefaultComparison.String())
	assert.Equal(t, "UNKNOWN", Path(42).String())
}

// ==========================
// Plans per path
// ==========================

func TestPlan_Paths(t *testing.T) {
	tests := []struct {
		name      string
		rec       intent.Record
		req       intent.Request
		wantNames []string
	}{
		{
			name: "holding ignores every add-on",
			rec:  intent.Record{IsHolding: true, MustBeBV: true, Urgency: intent.UrgencyHigh, IndustryContext: intent.IndustryTech},
			req:  hiringRequest,
			wantNames: []string{
				"Holding Company Executive Summary",
				"Participation Exemption Deep Dive",
				"Holding Structure (BV)",
				"Corporate Tax for Holding Companies",
				"Holding Company Compliance",
			},
		},
		{
			name: "force bv",
			rec:  intent.Record{MustBeBV: true, Urgency: intent.UrgencyMedium},
			wantNames: []string{
				"BV Executive Summary",
				"BV Incorporation Process",
				"BV Tax and Compliance",
				"BV Implementation Timeline",
			},
		},
		{
			name: "speed branch",
			rec:  intent.Record{Urgency: intent.UrgencyHigh, IndustryContext: intent.IndustryGeneral},
			wantNames: []string{
				"Branch Office Executive Summary",
				"Branch Registration (No Notary)",
				"Branch Tax and Compliance",
				"Branch Implementation Timeline",
			},
		},
		{
			name: "default comparison gets general corporate tax",
			rec:  intent.Record{Urgency: intent.UrgencyLow},
			wantNames: []string{
				"Market Entry Comparison",
				"Executive Summary Research",
				"Tax Overview Research",
				"Implementation Timeline Research",
				"General Corporate Tax",
			},
		},
		{
			name: "default comparison tech keeps insertion order at equal priority",
			rec:  intent.Record{Urgency: intent.UrgencyMedium, IndustryContext: intent.IndustryTech},
			req:  hiringRequest,
			wantNames: []string{
				"Market Entry Comparison",
				"Executive Summary Research",
				"Tax Overview Research",
				"Implementation Timeline Research",
				"R&D Incentives (WBSO & Innovation Box)",
				"General Corporate Tax",
				"30% Ruling & Payroll",
			},
		},
		{
			name: "financial industry gets no r&d task",
			rec:  intent.Record{MustBeBV: true, Urgency: intent.UrgencyLow, IndustryContext: intent.IndustryFinancial},
			wantNames: []string{
				"BV Executive Summary",
				"BV Incorporation Process",
				"BV Tax and Compliance",
				"BV Implementation Timeline",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNames, names(Plan(tt.rec, tt.req)))
		})
	}
}

func TestPlan_ScenarioA(t *testing.T) {
	req := intent.Request{
		CompanyName:        "TechStart B.V.",
		TimelinePreference: "ASAP",
		Industry:           "Software",
		EntryGoals:         []string{"Hire employees"},
	}
	rec := intent.NewHeuristicClassifier().Evaluate(req)

	tasks, path := PlanWithPath(rec, req)

	assert.Equal(t, PathForceBV, path)
	require.Len(t, tasks, 6)
	assert.Equal(t, "R&D Incentives (WBSO & Innovation Box)", tasks[4].TaskName)
	assert.Equal(t, "30% Ruling & Payroll", tasks[5].TaskName)
	assert.Equal(t, SectionLegalDeepDive, tasks[5].SectionName)
	assert.Equal(t, 6, tasks[5].Priority)
}

func TestPlan_ScenarioB(t *testing.T) {
	req := intent.Request{
		CompanyName:       "Acme Holding NV",
		TaxConsiderations: []string{"Participation exemption"},
	}
	rec := intent.NewHeuristicClassifier().Evaluate(req)

	assert.Equal(t, pathTasks[PathHolding], Plan(rec, req))
}

func TestPlan_HiringGoalMatching(t *testing.T) {
	rec := intent.Record{MustBeBV: true, Urgency: intent.UrgencyLow}

	tests := []struct {
		goals []string
		want  bool
	}{
		{[]string{"HIRE local staff"}, true},
		{[]string{"Open office", "grow to 20 Employees"}, true},
		{[]string{"Open office"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.goals, "|"), func(t *testing.T) {
			tasks := Plan(rec, intent.Request{EntryGoals: tt.goals})
			assert.Equal(t, tt.want, containsTask(tasks, "30% Ruling & Payroll"))
		})
	}
}

// ==========================
// Properties over every record
// ==========================

func TestPlan_Properties(t *testing.T) {
	for _, rec := range allRecords() {
		for _, req := range []intent.Request{{}, hiringRequest} {
			tasks := Plan(rec, req)
			path := SelectPath(rec)

			for i := 1; i < len(tasks); i++ {
				assert.LessOrEqual(t, tasks[i-1].Priority, tasks[i].Priority, "priorities must be non-decreasing")
			}
			for _, task := range tasks {
				assert.True(t, task.SectionName.Valid())
				assert.Greater(t, task.Priority, 0)
				assert.True(t, strings.HasPrefix(task.SearchQuery, "Netherlands "))
			}

			assert.Equal(t, tasks, Plan(rec, req), "planner must be idempotent")

			switch path {
			case PathHolding:
				require.Len(t, tasks, 5)
				assert.ElementsMatch(t, []Section{
					SectionExecutiveSummary,
					SectionTaxConsiderations,
					SectionTaxConsiderations,
					SectionBusinessStructure,
					SectionImplementationTimeline,
				}, sections(tasks))
				for _, task := range tasks {
					text := strings.ToLower(task.TaskName + " " + task.SearchQuery)
					assert.NotContains(t, text, "branch")
					assert.NotContains(t, text, "innovation")
				}
			case PathForceBV:
				for _, task := range tasks {
					assert.NotContains(t, strings.ToLower(task.TaskName+" "+task.SearchQuery), "no notary")
				}
			case PathSpeedBranch:
				reg := findTask(tasks, "Branch Registration (No Notary)")
				require.NotNil(t, reg)
				assert.Contains(t, reg.SearchQuery, "no notary required")
			}
		}
	}
}

func TestPlan_ReturnsFreshSlice(t *testing.T) {
	rec := intent.Record{IsHolding: true, Urgency: intent.UrgencyLow}
	first := Plan(rec, intent.Request{})
	first[0].TaskName = "mutated"

	assert.Equal(t, "Holding Company Executive Summary", Plan(rec, intent.Request{})[0].TaskName)
}

// ==========================
// Section grouping
// ==========================

func TestGroupBySection(t *testing.T) {
	tasks := Plan(intent.Record{IsHolding: true, Urgency: intent.UrgencyLow}, intent.Request{})

	groups := GroupBySection(tasks)

	require.Len(t, groups, 4)
	assert.Equal(t, SectionExecutiveSummary, groups[0].Section)
	assert.Equal(t, SectionTaxConsiderations, groups[1].Section)
	assert.Equal(t, []string{"Participation Exemption Deep Dive", "Corporate Tax for Holding Companies"}, names(groups[1].Tasks))
	assert.Equal(t, SectionBusinessStructure, groups[2].Section)
	assert.Equal(t, SectionImplementationTimeline, groups[3].Section)

	assert.Empty(t, GroupBySection(nil))
}

func TestSection_Valid(t *testing.T) {
	assert.True(t, SectionMarketEntryOptions.Valid())
	assert.False(t, Section("appendix").Valid())
}

func sections(tasks []Task) []Section {
	out := make([]Section, len(tasks))
	for i, t := range tasks {
		out[i] = t.SectionName
	}
	return out
}

func findTask(tasks []Task, name string) *Task {
	for i := range tasks {
		if tasks[i].TaskName == name {
			return &tasks[i]
		}
	}
	return nil
}

func containsTask(tasks []Task, name string) bool {
	return findTask(tasks, name) != nil
}

func TestPath_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]Path{"planPath": PathSpeedBranch})
	require.NoError(t, err)
	assert.JSONEq(t, `{"planPath":"SPEED_BRANCH"}`, string(raw))
}
