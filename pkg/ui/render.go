package ui

import (
	"fmt"
	"strings"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/selection"
)

// RowKind distinguishes the three kinds of rendered rows.
type RowKind int

const (
	RowTaxonomy RowKind = iota // section header, no checkbox
	RowSection                 // term with children: checkbox plus collapsible section
	RowLeaf                    // term without children: labelled checkbox
)

// Row describes one visible line of a taxonomy tree.
type Row struct {
	Kind          RowKind
	Key           string // expansion key, unique across taxonomies
	ParentKey     string // "" for taxonomy rows
	UID           string
	Name          string
	TaxonomyUID   string // taxonomy attribute carried by the checkbox
	TaxonomyIndex int
	Depth         int // 0 for the taxonomy row
	ChildCount    int
	Expanded      bool
	Checked       bool
}

// HasCheckbox reports whether the row can be toggled.
func (r Row) HasCheckbox() bool {
	return r.Kind != RowTaxonomy
}

// Change returns the selection change that toggling this row produces.
func (r Row) Change() selection.Change {
	return selection.Change{
		TaxonomyUID: r.TaxonomyUID,
		TermUID:     r.UID,
		TermName:    r.Name,
		Checked:     !r.Checked,
	}
}

// TaxonomyKey is the expansion key of a taxonomy section.
func TaxonomyKey(taxonomyUID string) string {
	return taxonomyUID
}

// TermKey is the expansion key of a term section.
func TermKey(taxonomyUID, termUID string) string {
	return taxonomyUID + "/" + termUID
}

// Expansion records which sections are open. Taxonomy sections are open
// and term sections closed unless set otherwise; only deviations from
// that default are stored.
type Expansion map[string]bool

// IsOpen reports whether the section with key is open.
func (e Expansion) IsOpen(key string, taxonomy bool) bool {
	if open, ok := e[key]; ok {
		return open
	}
	return taxonomy
}

// Set records the state of a section.
func (e Expansion) Set(key string, taxonomy, open bool) {
	if open == taxonomy {
		delete(e, key)
		return
	}
	e[key] = open
}

// Render returns the visible rows of one taxonomy: the taxonomy row, then
// its terms depth-first in tree order. Descendants of closed sections are
// omitted. A term's checked state comes from entries[taxonomyIndex].
func Render(node *model.TaxonomyNode, taxonomyIndex int, entries []model.SelectionEntry, exp Expansion) []Row {
	if node == nil {
		return nil
	}
	key := TaxonomyKey(node.UID)
	open := exp.IsOpen(key, true)
	rows := []Row{{
		Kind:          RowTaxonomy,
		Key:           key,
		UID:           node.UID,
		Name:          node.Name,
		TaxonomyUID:   node.UID,
		TaxonomyIndex: taxonomyIndex,
		ChildCount:    len(node.Terms),
		Expanded:      open,
	}}
	if !open {
		return rows
	}
	for _, term := range node.Terms {
		rows = renderTerm(rows, term, node.UID, key, taxonomyIndex, 1, entries, exp)
	}
	return rows
}

func renderTerm(rows []Row, term *model.TermNode, taxonomyUID, parentKey string, taxonomyIndex, depth int, entries []model.SelectionEntry, exp Expansion) []Row {
	if term == nil {
		return rows
	}
	row := Row{
		Kind:          RowLeaf,
		Key:           TermKey(taxonomyUID, term.UID),
		ParentKey:     parentKey,
		UID:           term.UID,
		Name:          term.Name,
		TaxonomyUID:   taxonomyUID,
		TaxonomyIndex: taxonomyIndex,
		Depth:         depth,
		ChildCount:    len(term.Terms),
		Checked:       selection.IsSelected(entries, taxonomyIndex, term.UID),
	}
	if term.IsLeaf() {
		return append(rows, row)
	}

	row.Kind = RowSection
	row.Expanded = exp.IsOpen(row.Key, false)
	rows = append(rows, row)
	if !row.Expanded {
		return rows
	}
	for _, child := range term.Terms {
		rows = renderTerm(rows, child, taxonomyUID, row.Key, taxonomyIndex, depth+1, entries, exp)
	}
	return rows
}

// RenderAll renders every taxonomy in order.
func RenderAll(taxonomies []*model.TaxonomyNode, entries []model.SelectionEntry, exp Expansion) []Row {
	var rows []Row
	for i, tax := range taxonomies {
		rows = append(rows, Render(tax, i, entries, exp)...)
	}
	return rows
}

// TagLine is the summary shown above a taxonomy with selections, or "" when
// entry has none.
func TagLine(taxonomyName string, entry model.SelectionEntry) string {
	if len(entry.Terms) == 0 {
		return ""
	}
	return fmt.Sprintf("%s selections: %s", taxonomyName, strings.Join(entry.Names(), ", "))
}
