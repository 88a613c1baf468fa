package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/matzehuels/klotskigraph/pkg/klotski"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PresetListModel - Interactive puzzle selection
// =============================================================================

// PresetListModel is the bubbletea model for interactive preset selection.
type PresetListModel struct {
	Presets  []klotski.Puzzle
	Cursor   int
	Selected *klotski.Puzzle
}

// NewPresetListModel creates a new preset list model.
func NewPresetListModel(presets []klotski.Puzzle) PresetListModel {
	return PresetListModel{Presets: presets}
}

func (m PresetListModel) Init() tea.Cmd {
	return nil
}

func (m PresetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Presets)-1 {
				m.Cursor++
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			if i := int(msg.String()[0] - '1'); i < len(m.Presets) {
				m.Cursor = i
				m.Selected = &m.Presets[i]
				return m, tea.Quit
			}
		case "enter":
			m.Selected = &m.Presets[m.Cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m PresetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Puzzle"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.Presets))
	for i, p := range m.Presets {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", i+1),
			p.Name,
			fmt.Sprintf("%dx%d", p.Board.Width, p.Board.Height),
			fmt.Sprintf("%d", len(p.Pieces)),
			p.Description,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Puzzle", "Board", "Pieces", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

// choosePreset shows the picker. It returns false if the user quit without
// choosing.
func choosePreset(presets []klotski.Puzzle) (klotski.Puzzle, bool, error) {
	final, err := tea.NewProgram(NewPresetListModel(presets)).Run()
	if err != nil {
		return klotski.Puzzle{}, false, fmt.Errorf("preset picker: %w", err)
	}
	m, ok := final.(PresetListModel)
	if !ok || m.Selected == nil {
		return klotski.Puzzle{}, false, nil
	}
	return *m.Selected, true, nil
}
