package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// JobItem represents one page in the regeneration queue
type JobItem struct {
	pageID int
	title  string
	status string
}

// FilterValue implements list.Item interface
func (i JobItem) FilterValue() string { return i.title }

// Title returns the item's title
func (i JobItem) Title() string { return i.title }

// Description returns the item's description
func (i JobItem) Description() string {
	return fmt.Sprintf("Page %d | %s", i.pageID, i.status)
}

// JobList manages the regeneration queue display with virtualization
type JobList struct {
	list    list.Model
	width   int
	height  int
	settled int
	total   int
}

// NewJobList creates a new job list
func NewJobList() *JobList {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(lipgloss.Color("170"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(lipgloss.Color("244"))

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Regeneration Queue"
	l.Styles.Title = l.Styles.Title.Foreground(lipgloss.Color("240"))

	return &JobList{list: l}
}

// SetSize updates the list dimensions
func (q *JobList) SetSize(width, height int) {
	q.width = width
	q.height = height
	q.list.SetSize(width, height)
}

// Update handles UI updates
func (q *JobList) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	q.list, cmd = q.list.Update(msg)
	return cmd
}

// View renders the component
func (q *JobList) View() string {
	q.list.SetFilteringEnabled(false)
	return q.list.View()
}

// AddJob adds a page to the queue display
func (q *JobList) AddJob(pageID int, title string) {
	item := JobItem{
		pageID: pageID,
		title:  title,
		status: "queued",
	}
	q.list.InsertItem(len(q.list.Items()), item)
	q.total++
	q.updateTitle()
}

// SetStatus updates the displayed state of a page's job. review_pending,
// published and error all count as settled for the pending tally.
func (q *JobList) SetStatus(pageID int, status string) {
	items := q.list.Items()
	for i, item := range items {
		jItem, ok := item.(JobItem)
		if !ok || jItem.pageID != pageID {
			continue
		}

		wasActive := jItem.status != "review_pending" && jItem.status != "published" && jItem.status != "error"
		jItem.status = status
		q.list.SetItem(i, jItem)

		if wasActive && (status == "review_pending" || status == "published" || status == "error") {
			q.settled++
		}
		q.updateTitle()
		break
	}
}

// updateTitle updates the component title with stats
func (q *JobList) updateTitle() {
	q.list.Title = fmt.Sprintf("Regeneration Queue (%d pending)", q.total-q.settled)
}

// Clear empties the queue display
func (q *JobList) Clear() {
	q.list.SetItems([]list.Item{})
	q.settled = 0
	q.total = 0
	q.updateTitle()
}
