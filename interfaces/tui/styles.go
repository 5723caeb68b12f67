package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1e40af"))
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("#60a5fa")).Bold(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")).Background(lipgloss.Color("#1e40af")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Padding(0, 1)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Width(14)
	panelStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("237")).Padding(0, 1)
)

// densityStyle colors a country by its density level using the catalog
// palette.
func densityStyle(color string) lipgloss.Style {
	if color == "" {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
