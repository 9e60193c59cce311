package viz

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles derived from a theme.
type Styles struct {
	Panel       lipgloss.Style
	Canvas      lipgloss.Style
	Header      lipgloss.Style
	Caption     lipgloss.Style
	Running     lipgloss.Style
	Paused      lipgloss.Style
	MetricLabel lipgloss.Style
	MetricValue lipgloss.Style
	Active      lipgloss.Style
	Graph       lipgloss.Style
	KeyHint     lipgloss.Style
}

const panelWidth = 44

func NewStyles(t Theme) Styles {
	return Styles{
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1).
			Width(panelWidth),
		Canvas: lipgloss.NewStyle().Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		Caption:     lipgloss.NewStyle().Foreground(t.Text),
		Running:     lipgloss.NewStyle().Bold(true).Foreground(t.Success),
		Paused:      lipgloss.NewStyle().Bold(true).Foreground(t.Warning),
		MetricLabel: lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		MetricValue: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Active:      lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Graph:       lipgloss.NewStyle().Foreground(t.Accent),
		KeyHint:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
	}
}
