package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Base component interface
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Define common styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))
)

// WorkerPanel shows the regeneration slot grid plus recent assignments.
type WorkerPanel struct {
	viewport viewport.Model
	style    lipgloss.Style
	title    string
	width    int
	height   int
	grid     *WorkerGrid
	recent   []string
}

func NewWorkerPanel(slots int) *WorkerPanel {
	w := &WorkerPanel{
		title:  "Regeneration Workers",
		style:  borderStyle.Copy().BorderForeground(lipgloss.Color("63")),
		grid:   NewWorkerGrid(slots),
		recent: make([]string, 0),
	}
	w.viewport = viewport.New(0, 0)
	return w
}

func (w *WorkerPanel) Init() tea.Cmd {
	return nil
}

func (w *WorkerPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)
	gridCmd := w.grid.Update(msg)
	return w, tea.Batch(cmd, gridCmd)
}

func (w *WorkerPanel) View() string {
	content := titleStyle.Render(w.title) + "\n\n"
	content += w.grid.View()

	if len(w.recent) > 0 {
		content += "\n\nRecent assignments:\n"
		start := len(w.recent)
		if start > 3 {
			start = len(w.recent) - 3
		}
		for _, page := range w.recent[start:] {
			content += infoStyle.Render("• " + page + "\n")
		}
	}

	w.viewport.SetContent(content)
	return w.style.Width(w.width).Height(w.height).Render(w.viewport.View())
}

func (w *WorkerPanel) SetSize(width, height int) {
	w.width = width
	w.height = height
	w.viewport.Width = width - 4 // Account for borders
	w.viewport.Height = height - 4
	w.grid.SetSize(width-4, height-6)
}

// AssignWorker lights a slot and records the page it picked up.
func (w *WorkerPanel) AssignWorker(pageTitle string) {
	w.recent = append(w.recent, pageTitle)
	activeCount := w.grid.ActiveCount()
	if activeCount < w.grid.maxSlots {
		w.grid.ActivateSlot(activeCount, pageTitle)
	}
}

// ReleaseWorker dims a slot by ID.
func (w *WorkerPanel) ReleaseWorker(slotID int) {
	w.grid.DeactivateSlot(slotID)
}

// JobsPanel wraps the job list with cursor navigation.
type JobsPanel struct {
	style  lipgloss.Style
	width  int
	height int
	jobs   *JobList
}

func NewJobsPanel() *JobsPanel {
	return &JobsPanel{
		style: borderStyle.Copy().BorderForeground(lipgloss.Color("99")),
		jobs:  NewJobList(),
	}
}

func (j *JobsPanel) Init() tea.Cmd {
	return nil
}

func (j *JobsPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			j.jobs.list.CursorUp()
			return j, nil
		case "down", "j":
			j.jobs.list.CursorDown()
			return j, nil
		}
	}

	return j, j.jobs.Update(msg)
}

func (j *JobsPanel) View() string {
	return j.style.Width(j.width).Height(j.height).Render(j.jobs.View())
}

func (j *JobsPanel) SetSize(width, height int) {
	j.width = width
	j.height = height
	j.jobs.SetSize(width-4, height-4)
}

// ScoresPanel wraps the decay score table.
type ScoresPanel struct {
	style  lipgloss.Style
	width  int
	height int
	table  *ScoreTable
}

func NewScoresPanel() *ScoresPanel {
	return &ScoresPanel{
		style: borderStyle.Copy().BorderForeground(lipgloss.Color("35")),
		table: NewScoreTable(),
	}
}

func (s *ScoresPanel) Init() tea.Cmd {
	return nil
}

func (s *ScoresPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	return s, s.table.Update(msg)
}

func (s *ScoresPanel) View() string {
	return s.style.Width(s.width).Height(s.height).Render(s.table.View())
}

func (s *ScoresPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.table.SetSize(width-4, height-4)
}

// LogPanel wraps the run log console.
type LogPanel struct {
	style   lipgloss.Style
	width   int
	height  int
	console *LogConsole
}

func NewLogPanel() *LogPanel {
	return &LogPanel{
		style:   borderStyle.Copy().BorderForeground(lipgloss.Color("196")),
		console: NewLogConsole(),
	}
}

func (l *LogPanel) Init() tea.Cmd {
	return nil
}

func (l *LogPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	return l, l.console.Update(msg)
}

func (l *LogPanel) View() string {
	return l.style.Width(l.width).Height(l.height).Render(l.console.View())
}

func (l *LogPanel) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.console.SetSize(width-4, height-4)
}

// Layout manager
type Layout struct {
	workers Component
	jobs    Component
	scores  Component
	logs    Component
	stats   *StatsPanel // Use concrete type for direct access
	width   int
	height  int
}

// NewLayout creates and initializes a new layout with all panels. slots
// is the pipeline worker bound, used to size the worker grid.
func NewLayout(slots int) *Layout {
	return &Layout{
		workers: NewWorkerPanel(slots),
		jobs:    NewJobsPanel(),
		scores:  NewScoresPanel(),
		logs:    NewLogPanel(),
		stats:   NewStatsPanel(),
	}
}

// SetSize adjusts the layout and all components to the given dimensions
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height

	halfWidth := width / 2
	halfHeight := height / 2

	// Workers and Stats share the left side
	workerHeight := int(float64(halfHeight) * 0.6)
	statsHeight := halfHeight - workerHeight

	l.workers.SetSize(halfWidth, workerHeight)
	l.stats.SetSize(halfWidth, statsHeight)
	l.jobs.SetSize(halfWidth, halfHeight)
	l.scores.SetSize(halfWidth, halfHeight)
	l.logs.SetSize(width, height-halfHeight)
}

// Init initializes all panels
func (l *Layout) Init() tea.Cmd {
	return tea.Batch(
		l.workers.Init(),
		l.jobs.Init(),
		l.scores.Init(),
		l.logs.Init(),
	)
}

// Update processes messages and updates components
func (l *Layout) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	l.workers, cmd = l.workers.Update(msg)
	cmds = append(cmds, cmd)

	l.jobs, cmd = l.jobs.Update(msg)
	cmds = append(cmds, cmd)

	l.scores, cmd = l.scores.Update(msg)
	cmds = append(cmds, cmd)

	l.logs, cmd = l.logs.Update(msg)
	cmds = append(cmds, cmd)

	statsCmd := l.stats.Update(msg)
	cmds = append(cmds, statsCmd)

	return l, tea.Batch(cmds...)
}

// View renders the complete layout
func (l *Layout) View() string {
	// Top left: workers and stats stacked
	leftSide := lipgloss.JoinVertical(
		lipgloss.Left,
		l.workers.View(),
		l.stats.View(),
	)

	topRow := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftSide,
		l.jobs.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topRow,
		l.scores.View(),
		l.logs.View(),
	)
}

// AssignWorker marks a slot busy with the given page.
func (l *Layout) AssignWorker(pageTitle string) {
	if wp, ok := l.workers.(*WorkerPanel); ok {
		wp.AssignWorker(pageTitle)
	}
}

// ReleaseWorker marks a slot free.
func (l *Layout) ReleaseWorker(slotID int) {
	if wp, ok := l.workers.(*WorkerPanel); ok {
		wp.ReleaseWorker(slotID)
	}
}

// AddJob adds a page to the job list panel.
func (l *Layout) AddJob(pageID int, title string) {
	if jp, ok := l.jobs.(*JobsPanel); ok {
		jp.jobs.AddJob(pageID, title)
	}
}

// SetJobStatus updates a job's displayed run state.
func (l *Layout) SetJobStatus(pageID int, status string) {
	if jp, ok := l.jobs.(*JobsPanel); ok {
		jp.jobs.SetStatus(pageID, status)
	}
}

// ClearJobs empties the job list panel.
func (l *Layout) ClearJobs() {
	if jp, ok := l.jobs.(*JobsPanel); ok {
		jp.jobs.Clear()
	}
}

// AddScore adds a scored page to the decay table.
func (l *Layout) AddScore(row ScoreRow) {
	if sp, ok := l.scores.(*ScoresPanel); ok {
		sp.table.AddRow(row)
	}
}

// AddError adds an error message to the run log
func (l *Layout) AddError(msg string) {
	if lp, ok := l.logs.(*LogPanel); ok {
		lp.console.AddEntry(LevelError, msg)
	}
}

// AddWarning adds a warning message to the run log
func (l *Layout) AddWarning(msg string) {
	if lp, ok := l.logs.(*LogPanel); ok {
		lp.console.AddEntry(LevelWarning, msg)
	}
}

// AddInfo adds an info message to the run log
func (l *Layout) AddInfo(msg string) {
	if lp, ok := l.logs.(*LogPanel); ok {
		lp.console.AddEntry(LevelInfo, msg)
	}
}

// Add methods to update statistics
func (l *Layout) UpdateStats(stats RunStats) {
	l.stats.UpdateStats(stats)
}

func (l *Layout) AddCompletedPage(title string) {
	l.stats.AddCompletedPage(title)
}
