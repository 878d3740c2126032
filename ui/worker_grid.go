package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SlotSpinner represents a single regeneration slot's spinner
type SlotSpinner struct {
	spinner spinner.Model
	active  bool
	page    string
}

// WorkerGrid visualizes the bounded regeneration slots
type WorkerGrid struct {
	slots    []SlotSpinner
	maxSlots int
	columns  int
	style    lipgloss.Style
	width    int
	height   int
}

// NewWorkerGrid creates a grid sized to the pipeline worker bound
func NewWorkerGrid(maxSlots int) *WorkerGrid {
	grid := &WorkerGrid{
		maxSlots: maxSlots,
		columns:  4, // Default to 4 columns
		style:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
		slots:    make([]SlotSpinner, maxSlots),
	}

	for i := range grid.slots {
		s := spinner.New()
		s.Spinner = spinner.Dot
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
		grid.slots[i] = SlotSpinner{spinner: s}
	}

	return grid
}

// ActivateSlot marks a slot busy with the given page
func (g *WorkerGrid) ActivateSlot(id int, page string) {
	if id < 0 || id >= g.maxSlots {
		return
	}
	g.slots[id].active = true
	g.slots[id].page = page
	g.slots[id].spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
}

// DeactivateSlot marks a slot free
func (g *WorkerGrid) DeactivateSlot(id int) {
	if id < 0 || id >= g.maxSlots {
		return
	}
	g.slots[id].active = false
	g.slots[id].page = ""
	g.slots[id].spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
}

// Update handles the spinner animations
func (g *WorkerGrid) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		g.width = msg.Width
		g.height = msg.Height
	}

	for i := range g.slots {
		if g.slots[i].active {
			cmds = append(cmds, g.slots[i].spinner.Tick)
		}
	}

	return tea.Batch(cmds...)
}

// View renders the slot grid
func (g *WorkerGrid) View() string {
	slotWidth := 10 // Width for each slot cell
	rows := (g.maxSlots + g.columns - 1) / g.columns

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Slots (%d/%d busy)\n\n", g.ActiveCount(), g.maxSlots))

	for row := 0; row < rows; row++ {
		var cells []string
		for col := 0; col < g.columns; col++ {
			idx := row*g.columns + col
			if idx >= g.maxSlots {
				break
			}

			slot := g.slots[idx]
			var cell string
			if slot.active {
				cell = fmt.Sprintf("%d:%s", idx+1, slot.spinner.View())
			} else {
				cell = fmt.Sprintf("%d:○", idx+1)
			}
			cells = append(cells, lipgloss.NewStyle().Width(slotWidth).Align(lipgloss.Center).Render(cell))
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, cells...))
		sb.WriteString("\n")
	}

	return g.style.Width(g.width).Render(sb.String())
}

// ActiveCount returns the number of busy slots
func (g *WorkerGrid) ActiveCount() int {
	count := 0
	for _, s := range g.slots {
		if s.active {
			count++
		}
	}
	return count
}

// SetSize updates the grid dimensions
func (g *WorkerGrid) SetSize(width, height int) {
	g.width = width
	g.height = height
	cols := (width - 4) / 12 // Account for borders and spacing
	if cols >= 2 {
		g.columns = cols
	}
}
