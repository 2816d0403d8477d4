// Package selection keeps the per-taxonomy list of checked terms and
// mirrors every change into host field storage.
package selection

import (
	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// Change is a single checkbox toggle.
type Change struct {
	TaxonomyUID string // taxonomy attribute carried by the checkbox
	TermUID     string
	TermName    string
	Checked     bool
}

// Skeleton returns one empty entry per taxonomy, in taxonomy order.
func Skeleton(taxonomies []*model.TaxonomyNode) []model.SelectionEntry {
	entries := make([]model.SelectionEntry, 0, len(taxonomies))
	for _, tax := range taxonomies {
		if tax == nil {
			continue
		}
		entries = append(entries, model.SelectionEntry{
			UID:   tax.UID,
			Name:  tax.Name,
			Terms: []model.SelectedTerm{},
		})
	}
	return entries
}

// Initial picks the starting selection: a non-empty stored snapshot is
// adopted verbatim, anything else yields the empty skeleton.
func Initial(stored []model.SelectionEntry, taxonomies []*model.TaxonomyNode) []model.SelectionEntry {
	if len(stored) > 0 {
		return model.CloneEntries(stored)
	}
	return Skeleton(taxonomies)
}

// Apply returns a new selection list with the change applied to the entry
// whose uid matches the change's taxonomy. Checking appends the term,
// unchecking removes every term with that uid. Other entries are copied
// unchanged; an unknown taxonomy leaves the list as it was.
func Apply(entries []model.SelectionEntry, c Change) []model.SelectionEntry {
	out := make([]model.SelectionEntry, len(entries))
	for i, entry := range entries {
		if entry.UID != c.TaxonomyUID {
			out[i] = entry.Clone()
			continue
		}
		if c.Checked {
			next := entry.Clone()
			next.Terms = append(next.Terms, model.SelectedTerm{UID: c.TermUID, Name: c.TermName})
			out[i] = next
			continue
		}
		next := entry
		next.Terms = make([]model.SelectedTerm, 0, len(entry.Terms))
		for _, t := range entry.Terms {
			if t.UID != c.TermUID {
				next.Terms = append(next.Terms, t)
			}
		}
		out[i] = next
	}
	return out
}

// IsSelected reports whether termUID is in the entry at taxonomyIndex.
// It scans the entry's flat term list.
func IsSelected(entries []model.SelectionEntry, taxonomyIndex int, termUID string) bool {
	if taxonomyIndex < 0 || taxonomyIndex >= len(entries) {
		return false
	}
	for _, t := range entries[taxonomyIndex].Terms {
		if t.UID == termUID {
			return true
		}
	}
	return false
}
