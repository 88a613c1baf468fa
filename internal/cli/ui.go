package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/klotskigraph/pkg/packed"
)

// Palette. Numbers are ANSI 256 colors.
var (
	colorTeal  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorAmber = lipgloss.Color("220")
	colorRed   = lipgloss.Color("167")
	colorBlue  = lipgloss.Color("75")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleTitle renders headings such as the preset picker title.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)

	// StyleDim renders secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleCached  = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh   = lipgloss.NewStyle().Foreground(colorGray)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorTeal)

	styleBoard = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorDim).
		Padding(0, 1)
)

// status is a one-character prefix for a line of output.
type status struct {
	icon  string
	style lipgloss.Style
}

var (
	statusSuccess = status{"✓", lipgloss.NewStyle().Foreground(colorGreen)}
	statusError   = status{"✗", lipgloss.NewStyle().Foreground(colorRed)}
	statusWarning = status{"!", lipgloss.NewStyle().Foreground(colorAmber)}
	statusInfo    = status{"›", lipgloss.NewStyle().Foreground(colorGray)}
)

func (s status) print(format string, args ...any) {
	fmt.Println(s.style.Render(s.icon) + " " + fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

func printWarning(format string, args ...any) {
	statusWarning.print("%s", statusWarning.style.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a file that was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleLabel.Render(key) + " " + styleValue.Render(value))
}

// printStats prints "N states · M moves · cached|fresh".
func printStats(nodes, edges int, cached bool) {
	var parts []string
	if nodes > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d states", nodes)))
	}
	if edges > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d moves", edges)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, styleFresh.Render("fresh"))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printPackStats prints the size report of one packed artifact.
func printPackStats(s packed.Stats) {
	printKeyValue("codec", s.Codec)
	printKeyValue("raw", formatBytes(s.RawSize))
	printKeyValue("compressed", fmt.Sprintf("%s (%.1fx)", formatBytes(s.CompressedSize), s.Ratio()))
	if s.InputSize > 0 {
		printKeyValue("savings", fmt.Sprintf("%.1f%% vs %s JSON", s.Savings()*100, formatBytes(int(s.InputSize))))
	}
	if s.MissingPositions > 0 {
		printWarning("%d of %d states have no position and were packed at the origin", s.MissingPositions, s.Nodes)
	}
}

func printBoard(board string) {
	fmt.Println(styleBoard.Render(board))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
