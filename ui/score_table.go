package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ScoreRow is one scanned page in the decay table
type ScoreRow struct {
	PageID      int
	Title       string
	SEO         int
	AEO         int
	Opportunity int
	Status      string
	Error       string
}

// ScoreTable manages the decay score display
type ScoreTable struct {
	viewport    viewport.Model
	rows        []ScoreRow
	width       int
	height      int
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
	style       lipgloss.Style
}

// NewScoreTable creates a new score table
func NewScoreTable() *ScoreTable {
	t := &ScoreTable{
		rows: make([]ScoreRow, 0),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		cellStyle: lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1),
		style: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("35")),
	}
	t.viewport = viewport.New(0, 0)
	return t
}

// SetSize updates the table dimensions
func (t *ScoreTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width - 4
	t.viewport.Height = height - 4
}

// Update handles UI updates
func (t *ScoreTable) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			t.viewport.LineUp(1)
		case "down", "j":
			t.viewport.LineDown(1)
		case "pgup":
			t.viewport.HalfViewUp()
		case "pgdown":
			t.viewport.HalfViewDown()
		}
	}

	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

// View renders the table
func (t *ScoreTable) View() string {
	if len(t.rows) == 0 {
		return t.style.Render(infoStyle.Render("No pages scanned yet"))
	}

	titleWidth := minInt(40, t.width/2)

	header := t.headerStyle.Render(fmt.Sprintf(
		"%-*s %5s %5s %5s %-14s",
		titleWidth, "Page",
		"SEO",
		"AEO",
		"Opp",
		"Status",
	))

	var rows []string
	for _, r := range t.rows {
		row := t.cellStyle.Render(fmt.Sprintf(
			"%-*s %5d %5d %5d %-14s",
			titleWidth, truncate(r.Title, titleWidth),
			r.SEO,
			r.AEO,
			r.Opportunity,
			r.Status,
		))

		if r.Error != "" {
			row = errorStyle.Render(row)
		} else if r.Opportunity >= 60 {
			row = warningStyle.Render(row)
		}

		rows = append(rows, row)
	}

	content := header + "\n" + strings.Join(rows, "\n")
	t.viewport.SetContent(content)

	stats := fmt.Sprintf(
		"\nScanned: %d | High opportunity: %d | Errors: %d",
		len(t.rows),
		t.highOpportunityCount(),
		t.errorCount(),
	)

	return t.style.Width(t.width).Render(
		t.viewport.View() + "\n" + infoStyle.Render(stats),
	)
}

// AddRow adds a scanned page's scores
func (t *ScoreTable) AddRow(row ScoreRow) {
	t.rows = append(t.rows, row)
	if t.viewport.AtBottom() {
		t.viewport.GotoBottom()
	}
}

// Helper functions
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	return s[:w-3] + "..."
}

func (t *ScoreTable) highOpportunityCount() int {
	count := 0
	for _, r := range t.rows {
		if r.Error == "" && r.Opportunity >= 60 {
			count++
		}
	}
	return count
}

func (t *ScoreTable) errorCount() int {
	count := 0
	for _, r := range t.rows {
		if r.Error != "" {
			count++
		}
	}
	return count
}
