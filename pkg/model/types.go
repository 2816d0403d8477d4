package model

import (
	"fmt"
)

// NodeTypeTaxonomy marks the top-level container node of a taxonomy.
const NodeTypeTaxonomy = "taxonomy"

// Taxonomy is one entry of the remote taxonomy list.
type Taxonomy struct {
	UID         string `json:"uid" yaml:"uid"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// TermRecord is a flat, unordered term as returned by the remote API.
type TermRecord struct {
	UID         string `json:"uid" yaml:"uid"`
	Name        string `json:"name" yaml:"name"`
	ParentUID   string `json:"parent_uid,omitempty" yaml:"parent_uid,omitempty"`
	TaxonomyUID string `json:"taxonomy_uid,omitempty" yaml:"taxonomy_uid,omitempty"`
	Depth       int    `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// HasParent reports whether the record declares a parent term.
func (r TermRecord) HasParent() bool {
	return r.ParentUID != ""
}

// Validate checks if the record is usable by the tree builder
func (r *TermRecord) Validate() error {
	if r.UID == "" {
		return fmt.Errorf("term uid cannot be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("term %s: name cannot be empty", r.UID)
	}
	return nil
}

// TermNode is a term together with its ordered children.
type TermNode struct {
	UID   string      `json:"uid" yaml:"uid"`
	Name  string      `json:"name" yaml:"name"`
	Terms []*TermNode `json:"terms" yaml:"terms"`
}

// IsLeaf reports whether the node has no children.
func (n *TermNode) IsLeaf() bool {
	return len(n.Terms) == 0
}

// Clone creates a deep copy of the node and its descendants
func (n *TermNode) Clone() *TermNode {
	if n == nil {
		return nil
	}
	clone := &TermNode{UID: n.UID, Name: n.Name, Terms: make([]*TermNode, 0, len(n.Terms))}
	for _, child := range n.Terms {
		clone.Terms = append(clone.Terms, child.Clone())
	}
	return clone
}

// TaxonomyNode is the container node for one taxonomy. Its Terms are the
// taxonomy's root terms.
type TaxonomyNode struct {
	UID   string      `json:"uid" yaml:"uid"`
	Name  string      `json:"name" yaml:"name"`
	Type  string      `json:"type" yaml:"type"`
	Terms []*TermNode `json:"terms" yaml:"terms"`
}

// SelectedTerm is a checked term inside a SelectionEntry.
type SelectedTerm struct {
	UID  string `json:"uid" yaml:"uid"`
	Name string `json:"name" yaml:"name"`
}

// SelectionEntry holds the flat list of checked terms for one taxonomy,
// regardless of how deep each term sits in the tree.
type SelectionEntry struct {
	UID   string         `json:"uid" yaml:"uid"`
	Name  string         `json:"name" yaml:"name"`
	Terms []SelectedTerm `json:"terms" yaml:"terms"`
}

// Clone creates a deep copy of the entry
func (e SelectionEntry) Clone() SelectionEntry {
	clone := e
	clone.Terms = make([]SelectedTerm, len(e.Terms))
	copy(clone.Terms, e.Terms)
	return clone
}

// Names returns the display names of the selected terms in selection order.
func (e SelectionEntry) Names() []string {
	names := make([]string, 0, len(e.Terms))
	for _, t := range e.Terms {
		names = append(names, t.Name)
	}
	return names
}

// FieldData is the snapshot exchanged with the host field store.
type FieldData struct {
	Data []SelectionEntry `json:"data,omitempty" yaml:"data,omitempty"`
}

// CloneEntries deep-copies a selection list.
func CloneEntries(entries []SelectionEntry) []SelectionEntry {
	if entries == nil {
		return nil
	}
	out := make([]SelectionEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}
