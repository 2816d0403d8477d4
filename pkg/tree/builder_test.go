package tree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"pgregory.net/rapid"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// TestBuildNestedExample checks the canonical example: roots sorted A,B and
// the child under B.
func TestBuildNestedExample(t *testing.T) {
	records := []model.TermRecord{
		{UID: "1", Name: "B"},
		{UID: "2", Name: "A", ParentUID: "1"},
		{UID: "3", Name: "A"},
	}

	got := Build(records)

	want := []*model.TermNode{
		{UID: "3", Name: "A", Terms: []*model.TermNode{}},
		{UID: "1", Name: "B", Terms: []*model.TermNode{
			{UID: "2", Name: "A", Terms: []*model.TermNode{}},
		}},
	}
	assert.Equal(t, want, got)
}

func TestBuildEmpty(t *testing.T) {
	got := Build(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

// TestBuildOrphanParent verifies a record naming a missing parent becomes a root
func TestBuildOrphanParent(t *testing.T) {
	records := []model.TermRecord{
		{UID: "root", Name: "Root"},
		{UID: "orphan", Name: "Orphan", ParentUID: "nonexistent"},
	}

	got := Build(records)

	require.Len(t, got, 2)
	assert.Equal(t, "orphan", got[0].UID)
	assert.Equal(t, "root", got[1].UID)
}

func TestBuildDeepNesting(t *testing.T) {
	records := []model.TermRecord{
		{UID: "leaf", Name: "Leaf", ParentUID: "mid"},
		{UID: "mid", Name: "Mid", ParentUID: "top"},
		{UID: "top", Name: "Top"},
	}

	got := Build(records)

	require.Len(t, got, 1)
	require.Len(t, got[0].Terms, 1)
	require.Len(t, got[0].Terms[0].Terms, 1)
	assert.Equal(t, "leaf", got[0].Terms[0].Terms[0].UID)
	assert.True(t, got[0].Terms[0].Terms[0].IsLeaf())
}

func TestBuildChildSorting(t *testing.T) {
	records := []model.TermRecord{
		{UID: "p", Name: "Parent"},
		{UID: "c", Name: "cherry", ParentUID: "p"},
		{UID: "a", Name: "apple", ParentUID: "p"},
		{UID: "b", Name: "Banana", ParentUID: "p"},
	}

	got := Build(records)

	require.Len(t, got, 1)
	var names []string
	for _, c := range got[0].Terms {
		names = append(names, c.Name)
	}
	// collation ignores case at the primary level
	assert.Equal(t, []string{"apple", "Banana", "cherry"}, names)
}

func TestBuildLocaleAwareOrder(t *testing.T) {
	records := []model.TermRecord{
		{UID: "z", Name: "Zed"},
		{UID: "e1", Name: "Émile"},
		{UID: "e2", Name: "Eve"},
	}

	got := Build(records)

	var names []string
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Émile", "Eve", "Zed"}, names)
}

func TestBuildWithLocale(t *testing.T) {
	// Swedish sorts ö after z.
	records := []model.TermRecord{
		{UID: "1", Name: "öl"},
		{UID: "2", Name: "zebra"},
	}

	sv := Build(records, WithLocale(language.Swedish))
	assert.Equal(t, "zebra", sv[0].Name)

	und := Build(records)
	assert.Equal(t, "öl", und[0].Name)
}

func TestBuildEqualNamesKeepInputOrder(t *testing.T) {
	records := []model.TermRecord{
		{UID: "first", Name: "Same"},
		{UID: "second", Name: "Same"},
	}

	got := Build(records)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].UID)
	assert.Equal(t, "second", got[1].UID)
}

func TestBuildDuplicateUIDFirstWins(t *testing.T) {
	records := []model.TermRecord{
		{UID: "x", Name: "Original"},
		{UID: "x", Name: "Duplicate", ParentUID: "y"},
		{UID: "y", Name: "Y"},
	}

	got := Build(records)

	require.Len(t, got, 2)
	assert.Equal(t, "Original", got[0].Name)
	assert.Empty(t, got[1].Terms)
	assert.Equal(t, 2, Count(got))
}

// TestBuildCycleTerminates verifies cyclic parents do not hang Build
func TestBuildCycleTerminates(t *testing.T) {
	records := []model.TermRecord{
		{UID: "a", Name: "A", ParentUID: "b"},
		{UID: "b", Name: "B", ParentUID: "a"},
		{UID: "self", Name: "Self", ParentUID: "self"},
		{UID: "ok", Name: "OK"},
	}

	got := Build(records)

	require.Len(t, got, 1)
	assert.Equal(t, "ok", got[0].UID)
	assert.Equal(t, 1, Count(got))
}

func TestNewTaxonomyNode(t *testing.T) {
	node := NewTaxonomyNode(model.Taxonomy{UID: "colors", Name: "Colors"}, []model.TermRecord{
		{UID: "r", Name: "Red"},
	})

	assert.Equal(t, "colors", node.UID)
	assert.Equal(t, model.NodeTypeTaxonomy, node.Type)
	require.Len(t, node.Terms, 1)
}

func TestFindAndWalk(t *testing.T) {
	roots := Build([]model.TermRecord{
		{UID: "1", Name: "B"},
		{UID: "2", Name: "A", ParentUID: "1"},
		{UID: "3", Name: "A"},
	})

	require.NotNil(t, Find(roots, "2"))
	assert.Equal(t, "A", Find(roots, "2").Name)
	assert.Nil(t, Find(roots, "missing"))

	var visited []string
	Walk(roots, func(n *model.TermNode, depth int) bool {
		visited = append(visited, fmt.Sprintf("%s@%d", n.UID, depth))
		return n.UID != "1"
	})
	assert.Equal(t, []string{"3@0", "1@0"}, visited)
}

// genRecords draws an acyclic record set with unique uids. Parents are always
// earlier records, absent, or a uid that is not in the set.
func genRecords(t *rapid.T) []model.TermRecord {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	records := make([]model.TermRecord, n)
	for i := 0; i < n; i++ {
		rec := model.TermRecord{
			UID:  fmt.Sprintf("t%d", i),
			Name: rapid.StringMatching(`[A-Za-zÀ-ÿ ]{1,6}`).Draw(t, "name"),
		}
		switch p := rapid.IntRange(-2, i-1).Draw(t, "parent"); {
		case p == -2:
			rec.ParentUID = fmt.Sprintf("ghost%d", i)
		case p >= 0:
			rec.ParentUID = fmt.Sprintf("t%d", p)
		}
		records[i] = rec
	}
	// input order is arbitrary
	return rapid.Permutation(records).Draw(t, "records")
}

func TestBuildProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		roots := Build(records)
		col := collate.New(language.Und)

		// every record appears exactly once
		seen := make(map[string]int)
		Walk(roots, func(n *model.TermNode, _ int) bool {
			seen[n.UID]++
			return true
		})
		if Count(roots) != len(records) {
			t.Fatalf("node count %d != record count %d", Count(roots), len(records))
		}
		for _, rec := range records {
			if seen[rec.UID] != 1 {
				t.Fatalf("record %s appears %d times", rec.UID, seen[rec.UID])
			}
		}

		// siblings ascending at every level
		checkSorted := func(nodes []*model.TermNode) {
			for i := 1; i < len(nodes); i++ {
				if col.CompareString(nodes[i-1].Name, nodes[i].Name) > 0 {
					t.Fatalf("siblings out of order: %q before %q", nodes[i-1].Name, nodes[i].Name)
				}
			}
		}
		checkSorted(roots)
		Walk(roots, func(n *model.TermNode, _ int) bool {
			checkSorted(n.Terms)
			return true
		})

		// records with missing parents are roots
		rootSet := make(map[string]bool)
		for _, r := range roots {
			rootSet[r.UID] = true
		}
		for _, rec := range records {
			if !rec.HasParent() || rec.ParentUID[0] == 'g' {
				if !rootSet[rec.UID] {
					t.Fatalf("record %s should be a root", rec.UID)
				}
			} else if rootSet[rec.UID] {
				t.Fatalf("record %s has parent %s but is a root", rec.UID, rec.ParentUID)
			}
		}
	})
}
