package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/briandowns/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Papalexios/amz-neuralmesh/internal/amazon"
	"github.com/Papalexios/amz-neuralmesh/internal/cache"
	"github.com/Papalexios/amz-neuralmesh/internal/config"
	"github.com/Papalexios/amz-neuralmesh/internal/export"
	"github.com/Papalexios/amz-neuralmesh/internal/llm"
	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
	"github.com/Papalexios/amz-neuralmesh/internal/pipeline"
	"github.com/Papalexios/amz-neuralmesh/internal/renderfetch"
	"github.com/Papalexios/amz-neuralmesh/internal/serper"
	"github.com/Papalexios/amz-neuralmesh/internal/wordpress"
	"github.com/Papalexios/amz-neuralmesh/ui"
)

// CLI flags structure
type CLIFlags struct {
	ConfigFile string `help:"Path to configuration file" default:"config.yaml"`
	Pages      string `help:"Comma-separated page IDs to regenerate (default: all)" short:"p"`
	Workers    int    `help:"Concurrent regeneration workers (overrides config)" short:"w"`
	Headless   bool   `help:"Run without the TUI and export results" default:"false"`
	Publish    bool   `help:"Auto-publish finished pages (headless mode only)" default:"false"`
	Simulate   bool   `help:"Use the deterministic marketplace simulator" default:"false"`
	Debug      bool   `help:"Enable debug logging" default:"false"`
}

// app bundles the wired collaborators for either run mode.
type app struct {
	cfg     *config.Config
	store   *wordpress.Client
	orch    *pipeline.Orchestrator
	fetcher *renderfetch.Fetcher
	pages   []mesh.Page
}

// Message types
type pipelineEventMsg pipeline.Event
type fatalErrMsg struct{ err error }

// Stats ticker message
type statsTickMsg struct{}

func tickStats() tea.Msg {
	time.Sleep(time.Second)
	return statsTickMsg{}
}

// Base model structure
type Model struct {
	app    *app
	layout *ui.Layout
	ready  bool
	err    error

	slotByJob map[string]int
	slotBusy  []bool
	startTime time.Time
}

func newModel(a *app) Model {
	return Model{
		app:       a,
		layout:    ui.NewLayout(a.cfg.Pipeline.Workers),
		ready:     true,
		slotByJob: make(map[string]int),
		slotBusy:  make([]bool, a.cfg.Pipeline.Workers),
		startTime: time.Now(),
	}
}

// waitForEvent bridges the orchestrator's notification stream into the
// bubbletea message loop.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.app.orch.Events()
		if !ok {
			return nil
		}
		return pipelineEventMsg(ev)
	}
}

// Init is the first function called. It returns an optional initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.layout.Init(),
		m.waitForEvent(),
		tickStats,
	)
}

// updateStats recomputes the counters from job snapshots on every tick.
// Event delivery is lossy under backpressure, so nothing the stats panel
// shows may depend on having seen every notification.
func (m *Model) updateStats() {
	queued, active, review, published, failed := tallyJobs(m.app.orch.Jobs())
	m.layout.UpdateStats(ui.RunStats{
		TotalPages:    len(m.app.pages),
		Queued:        queued,
		Active:        active,
		ReviewPending: review,
		Published:     published,
		Errors:        failed,
		StartTime:     m.startTime,
	})
}

// tallyJobs folds job snapshots into the panel counters.
func tallyJobs(jobs []pipeline.Job) (queued, active, review, published, failed int) {
	for _, j := range jobs {
		switch j.Status {
		case pipeline.StatusQueued:
			queued++
		case pipeline.StatusScanning, pipeline.StatusOptimizing:
			active++
		case pipeline.StatusReviewPending:
			review++
		case pipeline.StatusPublished:
			published++
		case pipeline.StatusError:
			failed++
		}
	}
	return queued, active, review, published, failed
}

// takeSlot reserves the lowest free slot for a job.
func (m *Model) takeSlot(jobID string) {
	for i, busy := range m.slotBusy {
		if !busy {
			m.slotBusy[i] = true
			m.slotByJob[jobID] = i
			return
		}
	}
}

func (m *Model) freeSlot(jobID string) {
	if slot, ok := m.slotByJob[jobID]; ok {
		m.slotBusy[slot] = false
		delete(m.slotByJob, jobID)
		m.layout.ReleaseWorker(slot)
	}
}

// handleEvent folds one orchestrator notification into the panels.
func (m *Model) handleEvent(ev pipeline.Event) {
	job, ok := m.app.orch.Job(ev.JobID)
	title := job.Title
	if !ok {
		title = fmt.Sprintf("page %d", ev.PageID)
	}

	switch ev.Type {
	case pipeline.EventQueueDrained:
		m.layout.AddInfo("Queue drained; review the pending pages")
		return
	case pipeline.EventLog:
		m.layout.AddInfo(ev.Message)
		return
	}

	m.layout.SetJobStatus(ev.PageID, string(ev.Status))

	switch ev.Status {
	case pipeline.StatusQueued:
		m.layout.AddJob(ev.PageID, title)

	case pipeline.StatusScanning:
		m.takeSlot(ev.JobID)
		m.layout.AssignWorker(title)
		m.layout.AddInfo(fmt.Sprintf("Scanning %s", title))

	case pipeline.StatusOptimizing:
		m.layout.AddScore(ui.ScoreRow{
			PageID:      ev.PageID,
			Title:       title,
			SEO:         ev.Scores.SEO,
			AEO:         ev.Scores.AEO,
			Opportunity: ev.Scores.Opportunity,
			Status:      string(ev.Status),
		})
		m.layout.AddInfo(fmt.Sprintf("Optimizing %s (SEO %d, AEO %d)", title, ev.Scores.SEO, ev.Scores.AEO))

	case pipeline.StatusReviewPending:
		m.freeSlot(ev.JobID)
		m.layout.AddCompletedPage(title)
		m.layout.AddInfo(fmt.Sprintf("%s ready for review", title))

	case pipeline.StatusPublished:
		m.layout.AddInfo(fmt.Sprintf("Published %s", title))

	case pipeline.StatusError:
		m.freeSlot(ev.JobID)
		m.layout.AddError(fmt.Sprintf("%s failed: %s", title, ev.Message))
	}

	m.updateStats()
}

// Update handles all the updates and state transitions
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case statsTickMsg:
		m.updateStats()
		cmds = append(cmds, tickStats)

	case tea.WindowSizeMsg:
		m.layout.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.layout.AddInfo("Stopping pipeline...")
			m.app.orch.Stop()
			return m, tea.Quit
		}

	case pipelineEventMsg:
		m.handleEvent(pipeline.Event(msg))
		cmds = append(cmds, m.waitForEvent())

	case fatalErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	layoutModel, layoutCmd := m.layout.Update(msg)
	if updatedLayout, ok := layoutModel.(*ui.Layout); ok {
		m.layout = updatedLayout
	}
	cmds = append(cmds, layoutCmd)

	return m, tea.Batch(cmds...)
}

// View returns a string representation of the UI
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress any key to quit.", m.err)
	}

	if !m.ready {
		return "Initializing...\n"
	}

	return m.layout.View()
}

// buildApp wires the collaborators from config and flags.
func buildApp(ctx context.Context, cfg *config.Config, flags CLIFlags) (*app, error) {
	store := wordpress.NewClient(cfg.WordPress.SiteURL, cfg.WordPress.Username, cfg.WordPress.AppPassword, cfg.WordPress.PerPage)

	var provider llm.Provider
	switch cfg.LLM.Provider {
	case "gemini":
		provider = llm.NewGemini(cfg.LLM.APIKey, "")
	default:
		provider = llm.NewOpenAICompatible(cfg.LLM.Endpoint, cfg.LLM.APIKey)
	}

	var cacheStore cache.Cache
	if cfg.Cache.RedisAddr != "" {
		cacheStore = cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	} else {
		cacheStore = cache.NewMemory()
	}

	var lookup amazon.Lookup
	if flags.Simulate || cfg.Amazon.Simulate || cfg.Amazon.Endpoint == "" {
		lookup = amazon.NewSimulator()
	} else {
		lookup = amazon.NewClient(cfg.Amazon.Endpoint, cfg.Amazon.APIKey)
	}
	lookup = amazon.NewCached(lookup, cacheStore, cfg.Amazon.CacheTTL)

	searcher := serper.NewClient(cfg.Serper.Endpoint, cfg.Serper.APIKey)

	var fetcher *renderfetch.Fetcher
	if cfg.WordPress.RenderJS {
		fetcher = renderfetch.New(60 * time.Second)
	}

	exporter, err := export.New(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare export dir: %w", err)
	}

	a := &app{cfg: cfg, store: store, fetcher: fetcher}

	var pf pipeline.PageFetcher
	if fetcher != nil {
		pf = fetcher
	}
	a.orch = pipeline.New(cfg, store, provider, lookup, searcher, pf, exporter)

	// Inventory and mesh load up front; both modes need them before any
	// job can run.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Loading page inventory..."
	s.Start()

	records, err := store.ListPages(ctx, func(loaded, total int) {
		s.Suffix = fmt.Sprintf(" Loading page inventory... %d", loaded)
	})
	s.Stop()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	pages := make([]mesh.Page, 0, len(records))
	for _, r := range records {
		pages = append(pages, mesh.Page{ID: r.ID, Title: r.Title, URL: r.Link})
	}
	a.pages = pages

	meshWorker := mesh.NewWorker(ctx)
	nodes, err := meshWorker.BuildAsync(ctx, pages)
	if err != nil {
		return nil, fmt.Errorf("failed to build link mesh: %w", err)
	}
	a.orch.SetMesh(nodes)

	log.Info("inventory ready", "pages", len(pages), "mesh_nodes", len(nodes))
	return a, nil
}

// selectPages filters the inventory down to the requested IDs.
func selectPages(pages []mesh.Page, spec string) ([]mesh.Page, error) {
	if spec == "" {
		return pages, nil
	}

	wanted := make(map[int]bool)
	for _, part := range strings.Split(spec, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid page id %q", part)
		}
		wanted[id] = true
	}

	var out []mesh.Page
	for _, p := range pages {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no inventory pages match %q", spec)
	}
	return out, nil
}

// runHeadless drives the whole batch without the TUI, logging progress
// and exporting (or publishing) everything that finishes.
func runHeadless(ctx context.Context, a *app, publish bool) error {
	go func() {
		for ev := range a.orch.Events() {
			if ev.Type == pipeline.EventStatusChange && ev.Status == pipeline.StatusOptimizing {
				log.Info("scored", "page_id", ev.PageID, "seo", ev.Scores.SEO, "aeo", ev.Scores.AEO, "opportunity", ev.Scores.Opportunity)
			}
		}
	}()

	a.orch.Run(ctx)

	var failed int
	for _, job := range a.orch.Jobs() {
		switch job.Status {
		case pipeline.StatusReviewPending:
			if publish {
				if err := a.orch.Publish(ctx, job.ID); err != nil {
					log.Error("publish failed", "page_id", job.PageID, "error", err)
					failed++
				}
			}
		case pipeline.StatusError:
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d pages failed", failed, len(a.orch.Jobs()))
	}
	return nil
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags)

	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if flags.Workers > 0 {
		cfg.Pipeline.Workers = flags.Workers
	}
	if flags.Debug {
		cfg.Debug = true
		log.SetLevel(log.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if a.fetcher != nil {
		defer a.fetcher.Close()
	}

	selected, err := selectPages(a.pages, flags.Pages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.orch.Enqueue(selected)

	if flags.Headless {
		if err := runHeadless(ctx, a, flags.Publish); err != nil {
			log.Error("run finished with failures", "error", err)
			os.Exit(1)
		}
		return
	}

	go a.orch.Run(ctx)

	p := tea.NewProgram(newModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
