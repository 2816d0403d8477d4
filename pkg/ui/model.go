package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/mattn/go-runewidth"
	"github.com/sirupsen/logrus"

	"github.com/Dicklesworthstone/taxopick/pkg/loader"
	"github.com/Dicklesworthstone/taxopick/pkg/model"
	"github.com/Dicklesworthstone/taxopick/pkg/selection"
	"github.com/Dicklesworthstone/taxopick/pkg/tree"
)

// TaxonomiesLoadedMsg carries the built forests once every fetch finished.
type TaxonomiesLoadedMsg struct {
	Taxonomies []*model.TaxonomyNode
}

// TaxonomiesFailedMsg reports a failed fetch batch.
type TaxonomiesFailedMsg struct {
	Err error
}

// LoadCmd fetches and builds every taxonomy.
func LoadCmd(ctx context.Context, src loader.Source, opts ...tree.Option) tea.Cmd {
	return func() tea.Msg {
		nodes, err := loader.Load(ctx, src, opts...)
		if err != nil {
			return TaxonomiesFailedMsg{Err: err}
		}
		return TaxonomiesLoadedMsg{Taxonomies: nodes}
	}
}

// Options configures NewModel.
type Options struct {
	// Load produces a TaxonomiesLoadedMsg or TaxonomiesFailedMsg.
	Load tea.Cmd
	// Store is the host field storage the selection is mirrored to.
	Store selection.FieldStore
	Log   logrus.FieldLogger
	Theme Theme
	// StateDir enables expand/collapse persistence.
	StateDir string
	// Copy writes text to the clipboard. Defaults to the system clipboard.
	Copy func(string) error
}

// Model is the selection view.
type Model struct {
	load    tea.Cmd
	sync    *selection.Synchronizer
	log     logrus.FieldLogger
	theme   Theme
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	body    viewport.Model
	tree    TreeModel
	copy    func(string) error

	loading bool
	status  string
	width   int
	height  int
}

// NewModel creates the selection view in its loading state.
func NewModel(opts Options) Model {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	theme := opts.Theme
	if theme.Renderer == nil {
		theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = theme.Renderer.NewStyle().Foreground(theme.Primary)

	tm := NewTreeModel(log)
	tm.SetStateDir(opts.StateDir)

	return Model{
		load:    opts.Load,
		sync:    selection.NewSynchronizer(opts.Store, log),
		log:     log,
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		body:    viewport.New(80, 20),
		tree:    tm,
		copy:    copyFn,
		loading: true,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// Loading reports whether the view still waits for taxonomies.
func (m Model) Loading() bool {
	return m.loading
}

// Rows returns the visible tree rows.
func (m Model) Rows() []Row {
	return m.tree.Rows()
}

// Cursor returns the index of the selected row.
func (m Model) Cursor() int {
	return m.tree.Cursor()
}

// Entries returns the current selection list.
func (m Model) Entries() []model.SelectionEntry {
	return m.sync.Entries()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.body.Width = msg.Width
		m.body.Height = m.bodyHeight()
		m.tree.SetHeight(m.body.Height)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TaxonomiesLoadedMsg:
		m.tree.Build(msg.Taxonomies)
		m.sync.Init(msg.Taxonomies)
		m.tree.SetEntries(m.sync.Entries())
		m.loading = false
		m.log.WithField("taxonomies", len(msg.Taxonomies)).Info("taxonomies loaded")
		m.refresh()
		return m, nil

	case TaxonomiesFailedMsg:
		// no retry and no error screen: the spinner keeps going
		m.log.WithError(msg.Err).Error("fetch taxonomies")
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Up):
		m.tree.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.tree.MoveDown()
	case key.Matches(msg, m.keys.PageUp):
		m.tree.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.tree.PageDown()
	case key.Matches(msg, m.keys.Home):
		m.tree.JumpToTop()
	case key.Matches(msg, m.keys.End):
		m.tree.JumpToBottom()
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Expand):
		m.tree.ExpandOrMoveToChild()
	case key.Matches(msg, m.keys.Collapse):
		m.tree.CollapseOrJumpToParent()
	case key.Matches(msg, m.keys.ExpandAll):
		m.tree.ExpandAll()
	case key.Matches(msg, m.keys.CollapseAll):
		m.tree.CollapseAll()
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
	}
	m.refresh()
	return m, nil
}

// toggle checks or unchecks the term under the cursor.
func (m *Model) toggle() {
	row, ok := m.tree.SelectedRow()
	if !ok || !row.HasCheckbox() {
		return
	}
	m.sync.Toggle(row.Change())
	m.tree.SetEntries(m.sync.Entries())
}

func (m *Model) copySelection() {
	raw, err := json.Marshal(model.FieldData{Data: m.sync.Entries()})
	if err != nil {
		m.log.WithError(err).Error("marshal selection")
		return
	}
	if err := m.copy(string(raw)); err != nil {
		m.log.WithError(err).Warn("copy selection to clipboard")
		m.status = "clipboard unavailable"
		return
	}
	m.status = "selection copied"
}

func (m Model) bodyHeight() int {
	// header, blank line, status line, help line
	if h := m.height - 4; h > 1 {
		return h
	}
	return 1
}

// refresh redraws the tree into the viewport and keeps the cursor visible.
func (m *Model) refresh() {
	lines, cursorLine := m.renderLines()
	m.body.SetContent(strings.Join(lines, "\n"))

	if cursorLine < m.body.YOffset {
		m.body.SetYOffset(cursorLine)
	} else if cursorLine >= m.body.YOffset+m.body.Height {
		m.body.SetYOffset(cursorLine - m.body.Height + 1)
	}
}

// renderLines renders every visible row plus the tag lines above taxonomy
// rows. It returns the line index of the cursor.
func (m Model) renderLines() ([]string, int) {
	rows := m.tree.Rows()
	taxonomies := m.tree.Taxonomies()
	entries := m.sync.Entries()
	tagStyle := m.theme.Renderer.NewStyle().Foreground(m.theme.Highlight).Italic(true)

	var lines []string
	cursorLine := 0
	for i, row := range rows {
		if row.Kind == RowTaxonomy && row.TaxonomyIndex < len(entries) && row.TaxonomyIndex < len(taxonomies) {
			if tag := TagLine(taxonomies[row.TaxonomyIndex].Name, entries[row.TaxonomyIndex]); tag != "" {
				lines = append(lines, tagStyle.Render(m.truncate(tag, 0)))
			}
		}
		line := m.renderRow(row)
		if i == m.tree.Cursor() {
			line = m.theme.Selected.Render(line)
			cursorLine = len(lines)
		}
		lines = append(lines, line)
	}
	return lines, cursorLine
}

// renderRow renders one row: indentation, checkbox, chevron, name, count.
func (m Model) renderRow(row Row) string {
	r := m.theme.Renderer
	var sb strings.Builder

	indent := strings.Repeat("  ", row.Depth)
	sb.WriteString(indent)

	if row.HasCheckbox() {
		box := "[ ] "
		if row.Checked {
			box = r.NewStyle().Foreground(m.theme.Primary).Render("[x]") + " "
		}
		sb.WriteString(box)
	}

	chevron := "  "
	if row.ChildCount > 0 || row.Kind == RowTaxonomy {
		chevron = "▸ "
		if row.Expanded {
			chevron = "▾ "
		}
	}
	sb.WriteString(r.NewStyle().Foreground(m.theme.Secondary).Render(chevron))

	count := ""
	if row.Kind != RowLeaf {
		count = fmt.Sprintf(" (%d)", row.ChildCount)
	}
	used := runewidth.StringWidth(indent) + 6 + runewidth.StringWidth(count)
	name := m.truncate(row.Name, used)

	nameStyle := m.theme.Base
	if row.Kind == RowTaxonomy {
		nameStyle = r.NewStyle().Foreground(m.theme.Primary).Bold(true)
	}
	sb.WriteString(nameStyle.Render(name))
	sb.WriteString(r.NewStyle().Foreground(m.theme.Muted).Render(count))
	return sb.String()
}

// truncate shortens s to the width left after used cells.
func (m Model) truncate(s string, used int) string {
	limit := m.width - used
	if limit < 10 {
		limit = 10
	}
	return runewidth.Truncate(s, limit, "…")
}

func (m Model) View() string {
	r := m.theme.Renderer
	title := r.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("Taxonomies")

	if m.loading {
		return fmt.Sprintf("%s\n\n%s Loading taxonomies…\n", title, m.spinner.View())
	}

	muted := r.NewStyle().Foreground(m.theme.Muted)
	body := m.body.View()
	if m.tree.RowCount() == 0 {
		body = muted.Render("No taxonomies found.")
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(muted.Render(m.status))
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}
