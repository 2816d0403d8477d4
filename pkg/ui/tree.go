// tree.go - navigable taxonomy tree with persisted expand/collapse state
package ui

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// TreeState is the persisted expand/collapse state of the tree view.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "expanded": {
//	    "colors": false,      // taxonomy section closed
//	    "colors/red": true    // term section opened
//	  }
//	}
//
// Only deviations from the default are stored: taxonomy sections open, term
// sections closed. A missing or corrupted file means defaults.
type TreeState struct {
	Version  int             `json:"version"`
	Expanded map[string]bool `json:"expanded"`
}

// TreeStateVersion is the current schema version for tree persistence
const TreeStateVersion = 1

// DefaultTreeState returns an empty state at the current version.
func DefaultTreeState() *TreeState {
	return &TreeState{
		Version:  TreeStateVersion,
		Expanded: make(map[string]bool),
	}
}

const treeStateFileName = "tree-state.json"

// TreeStatePath returns the state file inside dir.
func TreeStatePath(dir string) string {
	return filepath.Join(dir, treeStateFileName)
}

// TreeModel holds the taxonomy forest, the visible rows and the cursor.
type TreeModel struct {
	taxonomies []*model.TaxonomyNode
	entries    []model.SelectionEntry
	rows       []Row
	expansion  Expansion
	cursor     int
	height     int
	built      bool

	stateDir string // empty disables persistence
	log      logrus.FieldLogger
}

// NewTreeModel creates an empty tree model.
func NewTreeModel(log logrus.FieldLogger) TreeModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return TreeModel{expansion: Expansion{}, log: log}
}

// SetStateDir enables expand/collapse persistence in dir.
func (t *TreeModel) SetStateDir(dir string) {
	t.stateDir = dir
}

// SetHeight sets the number of rows a page holds.
func (t *TreeModel) SetHeight(height int) {
	t.height = height
}

// Build replaces the forest and restores persisted expansion state.
func (t *TreeModel) Build(taxonomies []*model.TaxonomyNode) {
	t.taxonomies = taxonomies
	t.expansion = Expansion{}
	t.cursor = 0
	t.loadState()
	t.built = true
	t.rebuildRows()
}

// SetEntries updates the selection the checkboxes reflect.
func (t *TreeModel) SetEntries(entries []model.SelectionEntry) {
	t.entries = entries
	t.rebuildRows()
}

// Rows returns the visible rows.
func (t *TreeModel) Rows() []Row {
	return t.rows
}

// Taxonomies returns the forest.
func (t *TreeModel) Taxonomies() []*model.TaxonomyNode {
	return t.taxonomies
}

// Cursor returns the index of the selected row.
func (t *TreeModel) Cursor() int {
	return t.cursor
}

// IsBuilt returns whether the tree has been built.
func (t *TreeModel) IsBuilt() bool {
	return t.built
}

// RowCount returns the number of visible rows.
func (t *TreeModel) RowCount() int {
	return len(t.rows)
}

// SelectedRow returns the row under the cursor.
func (t *TreeModel) SelectedRow() (Row, bool) {
	if t.cursor >= 0 && t.cursor < len(t.rows) {
		return t.rows[t.cursor], true
	}
	return Row{}, false
}

// MoveDown moves the cursor down one row.
func (t *TreeModel) MoveDown() {
	if t.cursor < len(t.rows)-1 {
		t.cursor++
	}
}

// MoveUp moves the cursor up one row.
func (t *TreeModel) MoveUp() {
	if t.cursor > 0 {
		t.cursor--
	}
}

// PageDown moves cursor down by half a page.
func (t *TreeModel) PageDown() {
	t.cursor += t.pageSize()
	t.clampCursor()
}

// PageUp moves cursor up by half a page.
func (t *TreeModel) PageUp() {
	t.cursor -= t.pageSize()
	t.clampCursor()
}

func (t *TreeModel) pageSize() int {
	if size := t.height / 2; size >= 1 {
		return size
	}
	return 5
}

// JumpToTop moves cursor to the first row.
func (t *TreeModel) JumpToTop() {
	t.cursor = 0
}

// JumpToBottom moves cursor to the last row.
func (t *TreeModel) JumpToBottom() {
	if len(t.rows) > 0 {
		t.cursor = len(t.rows) - 1
	}
}

// SelectByKey moves the cursor to the row with key.
func (t *TreeModel) SelectByKey(key string) bool {
	for i, row := range t.rows {
		if row.Key == key {
			t.cursor = i
			return true
		}
	}
	return false
}

// JumpToParent moves cursor to the section containing the selected row.
func (t *TreeModel) JumpToParent() {
	row, ok := t.SelectedRow()
	if !ok || row.ParentKey == "" {
		return
	}
	t.SelectByKey(row.ParentKey)
}

// ToggleExpand opens or closes the selected section.
func (t *TreeModel) ToggleExpand() {
	row, ok := t.SelectedRow()
	if !ok || row.ChildCount == 0 {
		return
	}
	t.setOpen(row, !row.Expanded)
}

// ExpandOrMoveToChild opens a closed section, or moves into an open one.
// Leaves do nothing.
func (t *TreeModel) ExpandOrMoveToChild() {
	row, ok := t.SelectedRow()
	if !ok || row.ChildCount == 0 {
		return
	}
	if !row.Expanded {
		t.setOpen(row, true)
		return
	}
	// first child follows its parent directly
	t.MoveDown()
}

// CollapseOrJumpToParent closes an open section, otherwise jumps to the
// parent section.
func (t *TreeModel) CollapseOrJumpToParent() {
	row, ok := t.SelectedRow()
	if !ok {
		return
	}
	if row.ChildCount > 0 && row.Expanded {
		t.setOpen(row, false)
		return
	}
	t.JumpToParent()
}

// ExpandAll opens every section.
func (t *TreeModel) ExpandAll() {
	t.setAll(true)
}

// CollapseAll closes every section, taxonomies included.
func (t *TreeModel) CollapseAll() {
	t.setAll(false)
}

func (t *TreeModel) setOpen(row Row, open bool) {
	t.expansion.Set(row.Key, row.Kind == RowTaxonomy, open)
	t.rebuildRows()
	t.SelectByKey(row.Key)
	t.saveState()
}

func (t *TreeModel) setAll(open bool) {
	var selected string
	if row, ok := t.SelectedRow(); ok {
		selected = row.Key
	}

	for _, tax := range t.taxonomies {
		if tax == nil {
			continue
		}
		t.expansion.Set(TaxonomyKey(tax.UID), true, open)
		var walk func(nodes []*model.TermNode)
		walk = func(nodes []*model.TermNode) {
			for _, n := range nodes {
				if n == nil || n.IsLeaf() {
					continue
				}
				t.expansion.Set(TermKey(tax.UID, n.UID), false, open)
				walk(n.Terms)
			}
		}
		walk(tax.Terms)
	}
	t.rebuildRows()
	if !t.SelectByKey(selected) {
		t.clampCursor()
	}
	t.saveState()
}

// rebuildRows re-renders the visible rows and keeps the cursor in bounds.
func (t *TreeModel) rebuildRows() {
	t.rows = RenderAll(t.taxonomies, t.entries, t.expansion)
	t.clampCursor()
}

func (t *TreeModel) clampCursor() {
	if t.cursor >= len(t.rows) {
		t.cursor = len(t.rows) - 1
	}
	if t.cursor < 0 {
		t.cursor = 0
	}
}

// saveState persists the expansion map. Errors are logged but do not
// interrupt the user.
func (t *TreeModel) saveState() {
	if t.stateDir == "" {
		return
	}
	state := DefaultTreeState()
	for k, v := range t.expansion {
		state.Expanded[k] = v
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		t.log.WithError(err).Warn("marshal tree state")
		return
	}
	if err := os.MkdirAll(t.stateDir, 0o755); err != nil {
		t.log.WithError(err).WithField("dir", t.stateDir).Warn("create tree state directory")
		return
	}
	path := TreeStatePath(t.stateDir)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.log.WithError(err).WithField("path", path).Warn("write tree state")
	}
}

// loadState restores expansion state from disk. A missing file is a first
// run; a corrupted one is logged and ignored.
func (t *TreeModel) loadState() {
	if t.stateDir == "" {
		return
	}
	data, err := os.ReadFile(TreeStatePath(t.stateDir))
	if err != nil {
		return
	}

	var state TreeState
	if err := json.Unmarshal(data, &state); err != nil {
		t.log.WithError(err).Warn("invalid tree state file, using defaults")
		return
	}
	t.applyState(&state)
}

// applyState copies persisted keys into the expansion map. Keys of sections
// that no longer exist are harmless and kept.
func (t *TreeModel) applyState(state *TreeState) {
	if state == nil || state.Version != TreeStateVersion {
		return
	}
	for k, v := range state.Expanded {
		t.expansion[k] = v
	}
}
