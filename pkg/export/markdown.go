// Package export renders selections and term forests as Markdown reports.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/Dicklesworthstone/taxopick/pkg/model"
)

// SelectionMarkdown creates a report of the stored selection, one section
// per taxonomy in stored order.
func SelectionMarkdown(entries []model.SelectionEntry, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	total := 0
	for _, e := range entries {
		total += len(e.Terms)
	}
	sb.WriteString(fmt.Sprintf("- **Taxonomies**: %d\n", len(entries)))
	sb.WriteString(fmt.Sprintf("- **Selected terms**: %d\n\n", total))

	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = e.UID
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", name))
		if len(e.Terms) == 0 {
			sb.WriteString("_No terms selected._\n\n")
			continue
		}
		for _, t := range e.Terms {
			sb.WriteString(fmt.Sprintf("- %s (`%s`)\n", t.Name, t.UID))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ForestMarkdown creates a nested list of every taxonomy's terms.
func ForestMarkdown(taxonomies []*model.TaxonomyNode, title string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, tax := range taxonomies {
		if tax == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("## %s\n\n", tax.Name))
		if len(tax.Terms) == 0 {
			sb.WriteString("_No terms._\n\n")
			continue
		}
		writeTerms(&sb, tax.Terms, 0)
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeTerms(sb *strings.Builder, terms []*model.TermNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range terms {
		sb.WriteString(fmt.Sprintf("%s- %s (`%s`)\n", indent, t.Name, t.UID))
		writeTerms(sb, t.Terms, depth+1)
	}
}

// RenderTerminal styles Markdown for a terminal of the given width.
func RenderTerminal(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// SaveMarkdownToFile writes a selection report to filename.
func SaveMarkdownToFile(entries []model.SelectionEntry, filename string) error {
	return os.WriteFile(filename, []byte(SelectionMarkdown(entries, "Selected terms")), 0o644)
}
