// Package tree turns flat term records into ordered term forests.
package tree

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// Option configures Build.
type Option func(*options)

type options struct {
	locale language.Tag
}

// WithLocale sets the collation locale used to order sibling names.
// The default is the root collation (language.Und).
func WithLocale(tag language.Tag) Option {
	return func(o *options) {
		o.locale = tag
	}
}

// Build constructs the term forest from an unordered slice of records.
//
// A record whose parent_uid is empty, or names a uid that is not in the
// input, becomes a root. Siblings at every level and the root list are
// sorted by name ascending using locale-aware collation; equal names keep
// input order. If a uid appears more than once the first record wins.
//
// Records that form a parent cycle are never reachable from a root and are
// left out of the result. Cycles are not valid input; see Diagnose.
func Build(records []model.TermRecord, opts ...Option) []*model.TermNode {
	o := options{locale: language.Und}
	for _, opt := range opts {
		opt(&o)
	}

	if len(records) == 0 {
		return []*model.TermNode{}
	}

	// Step 1: lookup keyed by uid, first occurrence wins
	nodes := make(map[string]*model.TermNode, len(records))
	order := make([]model.TermRecord, 0, len(records))
	for _, rec := range records {
		if _, dup := nodes[rec.UID]; dup {
			continue
		}
		nodes[rec.UID] = &model.TermNode{UID: rec.UID, Name: rec.Name, Terms: []*model.TermNode{}}
		order = append(order, rec)
	}

	// Step 2: single pass attaching each node to its parent or the root list
	roots := []*model.TermNode{}
	for _, rec := range order {
		node := nodes[rec.UID]
		if rec.HasParent() {
			if parent, ok := nodes[rec.ParentUID]; ok {
				parent.Terms = append(parent.Terms, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	// Step 3: sort once, after the full pass
	s := newSorter(o.locale)
	s.sortNodes(roots)
	Walk(roots, func(n *model.TermNode, _ int) bool {
		s.sortNodes(n.Terms)
		return true
	})

	return roots
}

// NewTaxonomyNode builds the forest for one taxonomy and wraps it in the
// taxonomy container node.
func NewTaxonomyNode(tax model.Taxonomy, records []model.TermRecord, opts ...Option) *model.TaxonomyNode {
	return &model.TaxonomyNode{
		UID:   tax.UID,
		Name:  tax.Name,
		Type:  model.NodeTypeTaxonomy,
		Terms: Build(records, opts...),
	}
}

// sorter orders nodes by name with a collator. A collator is not safe for
// concurrent use, so each Build gets its own.
type sorter struct {
	col *collate.Collator
}

func newSorter(tag language.Tag) *sorter {
	return &sorter{col: collate.New(tag)}
}

func (s *sorter) sortNodes(nodes []*model.TermNode) {
	if len(nodes) <= 1 {
		return
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return s.col.CompareString(nodes[i].Name, nodes[j].Name) < 0
	})
}

// Walk visits every node reachable from roots depth-first, parents before
// children. Returning false from fn skips that node's children.
func Walk(roots []*model.TermNode, fn func(node *model.TermNode, depth int) bool) {
	var walk func(nodes []*model.TermNode, depth int)
	walk = func(nodes []*model.TermNode, depth int) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if fn(n, depth) {
				walk(n.Terms, depth+1)
			}
		}
	}
	walk(roots, 0)
}

// Count returns the number of nodes reachable from roots.
func Count(roots []*model.TermNode) int {
	count := 0
	Walk(roots, func(*model.TermNode, int) bool {
		count++
		return true
	})
	return count
}

// Find returns the node with the given uid, or nil.
func Find(roots []*model.TermNode, uid string) *model.TermNode {
	var found *model.TermNode
	Walk(roots, func(n *model.TermNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.UID == uid {
			found = n
			return false
		}
		return true
	})
	return found
}
