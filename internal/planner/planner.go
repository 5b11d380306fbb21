// internal/planner/planner.go
package planner

import (
	"sort"

	"market-entry-workers/internal/intent"
)

// SelectPath picks the single top-level branch for rec. Holding wins over
// must_be_bv, which wins over urgency.
func SelectPath(rec intent.Record) Path {
	switch {
	case rec.IsHolding:
		return PathHolding
	case rec.MustBeBV:
		return PathForceBV
	case rec.Urgency == intent.UrgencyHigh:
		return PathSpeedBranch
	default:
		return PathDefaultComparison
	}
}

// Plan maps an intent record and the raw request to the ordered research
// tasks. It has no failure modes and returns a fresh slice on every call.
func Plan(rec intent.Record, req intent.Request) []Task {
	tasks, _ := PlanWithPath(rec, req)
	return tasks
}

// PlanWithPath is Plan that also reports the selected path.
func PlanWithPath(rec intent.Record, req intent.Request) ([]Task, Path) {
	path := SelectPath(rec)

	base := pathTasks[path]
	tasks := make([]Task, len(base), len(base)+len(addOns))
	copy(tasks, base)

	if path.Operating() {
		for _, a := range addOns {
			if a.Applies(path, rec, req) {
				tasks = append(tasks, a.Task)
			}
		}
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority < tasks[j].Priority
	})

	return tasks, path
}

// GroupBySection groups tasks by section. Sections appear in order of first
// occurrence and tasks keep their relative order.
func GroupBySection(tasks []Task) []SectionGroup {
	index := make(map[Section]int)
	var groups []SectionGroup

	for _, t := range tasks {
		i, ok := index[t.SectionName]
		if !ok {
			i = len(groups)
			index[t.SectionName] = i
			groups = append(groups, SectionGroup{Section: t.SectionName})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}

	return groups
}
