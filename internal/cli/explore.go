package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/visast/pkg/astgraph"
)

func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore <file|url>",
		Short: "Browse a syntax tree in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tree, _, err := c.newRunner().Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			g := astgraph.Build(tree)
			_, err = tea.NewProgram(newExploreModel(g, args[0]), tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}
}

var (
	exploreCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// =============================================================================
// exploreModel - collapsible tree view of a built graph
// =============================================================================

type exploreRow struct {
	id    string
	depth int
	leaf  bool
}

type exploreModel struct {
	g        *astgraph.Graph
	title    string
	expanded map[string]bool
	parent   map[string]string
	rows     []exploreRow
	cursor   int
	offset   int
	height   int
}

// newExploreModel starts with the root and its children visible.
func newExploreModel(g *astgraph.Graph, title string) exploreModel {
	m := exploreModel{
		g:        g,
		title:    title,
		expanded: map[string]bool{g.Root: true},
		parent:   make(map[string]string, g.NodeCount()),
		height:   20,
	}
	for _, e := range g.Edges {
		m.parent[e.To] = e.From
	}
	m.refresh()
	return m
}

// refresh rebuilds the visible rows in depth-first order.
func (m *exploreModel) refresh() {
	m.rows = nil
	var visit func(id string, depth int)
	visit = func(id string, depth int) {
		kids := m.g.Children(id)
		m.rows = append(m.rows, exploreRow{id: id, depth: depth, leaf: len(kids) == 0})
		if !m.expanded[id] {
			return
		}
		for _, k := range kids {
			visit(k, depth+1)
		}
	}
	visit(m.g.Root, 0)
	m.cursor = min(m.cursor, len(m.rows)-1)
	m.scroll()
}

func (m *exploreModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m *exploreModel) selectID(id string) {
	for i, r := range m.rows {
		if r.id == id {
			m.cursor = i
			m.scroll()
			return
		}
	}
}

func (m *exploreModel) setAll(open bool) {
	for _, id := range m.g.Nodes() {
		if len(m.g.Children(id)) > 0 {
			m.expanded[id] = open
		}
	}
	m.expanded[m.g.Root] = true
	cur := m.rows[m.cursor].id
	m.refresh()
	if !open {
		cur = m.g.Root
	}
	m.selectID(cur)
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		row := m.rows[m.cursor]
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.scroll()
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		case "enter", " ":
			if !row.leaf {
				m.expanded[row.id] = !m.expanded[row.id]
				m.refresh()
			}
		case "right", "l":
			if !row.leaf && !m.expanded[row.id] {
				m.expanded[row.id] = true
				m.refresh()
			}
		case "left", "h":
			if !row.leaf && m.expanded[row.id] && row.id != m.g.Root {
				m.expanded[row.id] = false
				m.refresh()
			} else if p, ok := m.parent[row.id]; ok {
				m.selectID(p)
			}
		case "e":
			m.setAll(true)
		case "c":
			m.setAll(false)
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-6, 5)
		m.scroll()
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Abstract Syntax Tree: " + m.title))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ toggle  ←/→ fold  e/c all  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if !r.leaf {
			marker = "▸ "
			if m.expanded[r.id] {
				marker = "▾ "
			}
		}
		label := m.g.Label(r.id)
		swatch := lipgloss.NewStyle().Background(lipgloss.Color(astgraph.ColorFor(label))).Render("  ")
		line := strings.Repeat("  ", r.depth) + marker + label

		style := exploreNormalStyle
		if i == m.cursor {
			style = exploreCursorStyle
		}
		b.WriteString(swatch + " " + style.Render(line) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d] %s · %d nodes", m.cursor+1, len(m.rows), m.rows[m.cursor].id, m.g.NodeCount())))
	return b.String()
}
