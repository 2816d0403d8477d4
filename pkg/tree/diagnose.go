package tree

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// Report describes structural problems in a term set. None of them stop
// Build; they explain where a term ended up (or why it is missing).
type Report struct {
	// Orphans declare a parent_uid that is not in the input. Build promotes
	// them to roots.
	Orphans []model.TermRecord `json:"orphans,omitempty"`
	// Duplicates are uids seen more than once. Build keeps the first.
	Duplicates []string `json:"duplicates,omitempty"`
	// Cycles are parent chains that loop back on themselves, as uids. Terms
	// on a cycle are unreachable from any root and are dropped by Build.
	Cycles [][]string `json:"cycles,omitempty"`
}

// OK reports whether the term set has no problems at all.
func (r Report) OK() bool {
	return len(r.Orphans) == 0 && len(r.Duplicates) == 0 && len(r.Cycles) == 0
}

// Diagnose inspects records for orphans, duplicate uids and parent cycles.
func Diagnose(records []model.TermRecord) Report {
	var rep Report

	ids := make(map[string]int64, len(records))
	firstSeen := make(map[string]bool, len(records))
	dupSeen := make(map[string]bool)
	unique := make([]model.TermRecord, 0, len(records))
	for _, rec := range records {
		if firstSeen[rec.UID] {
			if !dupSeen[rec.UID] {
				dupSeen[rec.UID] = true
				rep.Duplicates = append(rep.Duplicates, rec.UID)
			}
			continue
		}
		firstSeen[rec.UID] = true
		ids[rec.UID] = int64(len(unique))
		unique = append(unique, rec)
	}

	// Edges point child -> parent, so a cycle in the graph is a cycle in
	// the parent chain.
	g := simple.NewDirectedGraph()
	for _, rec := range unique {
		g.AddNode(simple.Node(ids[rec.UID]))
	}
	for _, rec := range unique {
		if !rec.HasParent() {
			continue
		}
		parentID, ok := ids[rec.ParentUID]
		if !ok {
			rep.Orphans = append(rep.Orphans, rec)
			continue
		}
		childID := ids[rec.UID]
		if parentID == childID {
			// simple graphs reject self edges
			rep.Cycles = append(rep.Cycles, []string{rec.UID})
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(childID), simple.Node(parentID)))
	}

	for _, cycle := range topo.DirectedCyclesIn(g) {
		rep.Cycles = append(rep.Cycles, cycleUIDs(cycle, unique))
	}
	sort.Slice(rep.Cycles, func(i, j int) bool {
		return rep.Cycles[i][0] < rep.Cycles[j][0]
	})

	return rep
}

// cycleUIDs maps a gonum cycle (first node repeated at the end) to uids,
// rotated so the smallest uid comes first.
func cycleUIDs(cycle []graph.Node, records []model.TermRecord) []string {
	if len(cycle) > 1 && cycle[0].ID() == cycle[len(cycle)-1].ID() {
		cycle = cycle[:len(cycle)-1]
	}
	uids := make([]string, len(cycle))
	start := 0
	for i, n := range cycle {
		uids[i] = records[n.ID()].UID
		if uids[i] < uids[start] {
			start = i
		}
	}
	return append(uids[start:], uids[:start]...)
}
