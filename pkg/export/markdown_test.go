package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/tree"
)

func TestSelectionMarkdown(t *testing.T) {
	entries := []model.SelectionEntry{
		{UID: "colors", Name: "Colors", Terms: []model.SelectedTerm{{UID: "red", Name: "Red"}, {UID: "blue", Name: "Blue"}}},
		{UID: "sizes", Terms: []model.SelectedTerm{}},
	}

	md := SelectionMarkdown(entries, "Selected terms")

	assert.True(t, strings.HasPrefix(md, "# Selected terms\n"))
	assert.Contains(t, md, "- **Selected terms**: 2")
	assert.Contains(t, md, "## Colors\n\n- Red (`red`)\n- Blue (`blue`)\n")
	assert.Contains(t, md, "## sizes\n\n_No terms selected._", "falls back to the uid")
}

func TestForestMarkdown(t *testing.T) {
	node := tree.NewTaxonomyNode(model.Taxonomy{UID: "colors", Name: "Colors"}, []model.TermRecord{
		{UID: "1", Name: "B"},
		{UID: "2", Name: "A", ParentUID: "1"},
		{UID: "3", Name: "A"},
	})
	empty := &model.TaxonomyNode{UID: "e", Name: "Empty"}

	md := ForestMarkdown([]*model.TaxonomyNode{node, empty, nil}, "Terms")

	assert.Contains(t, md, "## Colors\n\n- A (`3`)\n- B (`1`)\n  - A (`2`)\n")
	assert.Contains(t, md, "## Empty\n\n_No terms._")
}

func TestRenderTerminal(t *testing.T) {
	out, err := RenderTerminal("# Title\n\n- item\n", 0)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "item")
}

func TestSaveMarkdownToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, SaveMarkdownToFile([]model.SelectionEntry{{UID: "c", Name: "C"}}, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "## C")
}
