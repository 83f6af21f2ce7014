package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Pick a person from an interactive list",
		Long: `Open an interactive list of everyone in the tree. Move with ↑/↓ (or j/k),
jump to a selected person's first parent or child with p/c, and press enter
to print their details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			people := store.People()
			if len(people) == 0 {
				printInfo("No people yet")
				return nil
			}

			prog := tea.NewProgram(NewPersonListModel(people),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(os.Stderr),
			)
			final, err := prog.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(PersonListModel); ok && m.Selected != nil {
				printPerson(store, *m.Selected)
			}
			return nil
		},
	}
}

// =============================================================================
// PersonListModel - Interactive person selection
// =============================================================================

// PersonListModel is the bubbletea model for interactive person selection.
type PersonListModel struct {
	People   []family.Person
	Cursor   int
	Offset   int
	Height   int
	Selected *family.Person

	index map[int]int
}

// NewPersonListModel creates a new person list model.
func NewPersonListModel(people []family.Person) PersonListModel {
	index := make(map[int]int, len(people))
	for i, p := range people {
		index[p.ID] = i
	}
	return PersonListModel{People: people, Height: 15, index: index}
}

func (m PersonListModel) Init() tea.Cmd {
	return nil
}

func (m PersonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m = m.moveTo(m.Cursor - 1)
		case "down", "j":
			m = m.moveTo(m.Cursor + 1)
		case "p":
			if parents := m.People[m.Cursor].Parents; len(parents) > 0 {
				m = m.moveTo(m.index[parents[0]])
			}
		case "c":
			if children := m.People[m.Cursor].Children; len(children) > 0 {
				m = m.moveTo(m.index[children[0]])
			}
		case "enter":
			p := m.People[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m = m.moveTo(m.Cursor)
	}
	return m, nil
}

// moveTo places the cursor on row i, clamped, and scrolls it into view.
func (m PersonListModel) moveTo(i int) PersonListModel {
	m.Cursor = min(max(i, 0), len(m.People)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m PersonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Person"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  p parent  c child  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.People))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.People[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			strconv.Itoa(p.ID),
			p.Name,
			orDash(family.Deref(p.BirthDate)),
			strconv.Itoa(len(p.Parents)),
			strconv.Itoa(len(p.Children)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Born", "Parents", "Children").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col >= 4 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.People))))

	return b.String()
}
