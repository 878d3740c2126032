package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RunStats holds pipeline run statistics
type RunStats struct {
	TotalPages    int
	Queued        int
	Active        int
	ReviewPending int
	Published     int
	Errors        int
	StartTime     time.Time
	LastCompleted []string
}

// StatsPanel displays pipeline run statistics
type StatsPanel struct {
	stats      RunStats
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel() *StatsPanel {
	return &StatsPanel{
		stats: RunStats{
			LastCompleted: make([]string, 0, 5),
		},
		style: borderStyle.Copy().
			BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *StatsPanel) Update(msg tea.Msg) tea.Cmd {
	return nil
}

func (s *StatsPanel) View() string {
	settled := s.stats.ReviewPending + s.stats.Published + s.stats.Errors

	progress := 0.0
	if s.stats.TotalPages > 0 {
		progress = float64(settled) / float64(s.stats.TotalPages) * 100
	}

	pagesPerMinute := 0.0
	if !s.stats.StartTime.IsZero() {
		elapsed := time.Since(s.stats.StartTime).Minutes()
		if elapsed > 0 {
			pagesPerMinute = float64(settled) / elapsed
		}
	}

	stats := []struct {
		label string
		value string
	}{
		{"Progress", fmt.Sprintf("%.1f%% (%d/%d)", progress, settled, s.stats.TotalPages)},
		{"Queued", fmt.Sprintf("%d pages", s.stats.Queued)},
		{"Active", fmt.Sprintf("%d", s.stats.Active)},
		{"Review Pending", fmt.Sprintf("%d", s.stats.ReviewPending)},
		{"Published", fmt.Sprintf("%d", s.stats.Published)},
		{"Errors", fmt.Sprintf("%d", s.stats.Errors)},
		{"Pages/Minute", fmt.Sprintf("%.2f", pagesPerMinute)},
		{"Elapsed Time", s.formatElapsedTime()},
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Run Statistics") + "\n\n")

	// Format statistics in columns
	columnWidth := (s.width - 8) / 2 // Account for borders and padding
	for _, stat := range stats {
		line := fmt.Sprintf("%-*s %s\n",
			columnWidth,
			s.labelStyle.Render(stat.label+":"),
			s.valueStyle.Render(stat.value),
		)
		content.WriteString(line)
	}

	if len(s.stats.LastCompleted) > 0 {
		content.WriteString("\nRecently completed:\n")
		for _, title := range s.stats.LastCompleted {
			content.WriteString(infoStyle.Render("• " + title + "\n"))
		}
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

// UpdateStats updates the statistics
func (s *StatsPanel) UpdateStats(stats RunStats) {
	s.stats = stats
}

// Helper methods
func (s *StatsPanel) formatElapsedTime() string {
	if s.stats.StartTime.IsZero() {
		return "00:00:00"
	}
	elapsed := time.Since(s.stats.StartTime)
	return fmt.Sprintf("%02d:%02d:%02d",
		int(elapsed.Hours()),
		int(elapsed.Minutes())%60,
		int(elapsed.Seconds())%60,
	)
}

func (s *StatsPanel) AddCompletedPage(title string) {
	s.stats.LastCompleted = append(s.stats.LastCompleted, title)
	if len(s.stats.LastCompleted) > 5 {
		s.stats.LastCompleted = s.stats.LastCompleted[1:]
	}
}
