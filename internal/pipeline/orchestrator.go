package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Papalexios/amz-neuralmesh/internal/amazon"
	"github.com/Papalexios/amz-neuralmesh/internal/config"
	"github.com/Papalexios/amz-neuralmesh/internal/export"
	"github.com/Papalexios/amz-neuralmesh/internal/health"
	"github.com/Papalexios/amz-neuralmesh/internal/llm"
	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
	"github.com/Papalexios/amz-neuralmesh/internal/render"
	"github.com/Papalexios/amz-neuralmesh/internal/rescue"
	"github.com/Papalexios/amz-neuralmesh/internal/sanitize"
	"github.com/Papalexios/amz-neuralmesh/internal/schema"
	"github.com/Papalexios/amz-neuralmesh/internal/serper"
	"github.com/Papalexios/amz-neuralmesh/internal/wordpress"
)

// ContentStore is the slice of the content store client the pipeline uses.
type ContentStore interface {
	FetchFullContent(ctx context.Context, id int) (*wordpress.PageContent, error)
	Publish(ctx context.Context, id int, html string) error
}

// Searcher is the competitor-snippet capability.
type Searcher interface {
	Enabled() bool
	Search(ctx context.Context, query string) (*serper.Results, error)
}

// PageFetcher optionally supplies the live rendered DOM for health scans.
type PageFetcher interface {
	Fetch(ctx context.Context, targetURL string) (string, error)
}

// Orchestrator owns the job queue and drives each page through the run.
// The mesh is built once per session and treated as read-only by every
// worker; each Job is owned by exactly one worker until review_pending.
type Orchestrator struct {
	cfg      *config.Config
	store    ContentStore
	provider llm.Provider
	lookup   amazon.Lookup
	searcher Searcher
	fetcher  PageFetcher
	exporter *export.Writer
	scorer   *health.Scorer

	meshNodes []mesh.Node
	siteHost  string

	mu      sync.Mutex
	jobs    map[string]*Job
	order   []string
	queue   []string
	stopped bool

	slots  chan struct{}
	events chan Event
	wg     sync.WaitGroup
}

// New creates an Orchestrator. exporter and fetcher may be nil.
func New(cfg *config.Config, store ContentStore, provider llm.Provider, lookup amazon.Lookup, searcher Searcher, fetcher PageFetcher, exporter *export.Writer) *Orchestrator {
	siteHost := ""
	if u, err := url.Parse(cfg.WordPress.SiteURL); err == nil {
		siteHost = strings.TrimPrefix(u.Host, "www.")
	}

	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		provider: provider,
		lookup:   lookup,
		searcher: searcher,
		fetcher:  fetcher,
		exporter: exporter,
		scorer:   health.NewScorer(cfg.Scoring),
		siteHost: siteHost,
		jobs:     make(map[string]*Job),
		slots:    make(chan struct{}, cfg.Pipeline.Workers),
		events:   make(chan Event, 256),
	}
}

// Events exposes the notification stream consumed by the UI.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// SetMesh installs the session's read-only link inventory.
func (o *Orchestrator) SetMesh(nodes []mesh.Node) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.meshNodes = nodes
}

// Enqueue creates queued jobs for the selected pages and returns their IDs.
func (o *Orchestrator) Enqueue(pages []mesh.Page) []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		job := &Job{
			ID:     uuid.NewString(),
			PageID: p.ID,
			Title:  p.Title,
			URL:    p.URL,
			Status: StatusQueued,
		}
		o.jobs[job.ID] = job
		o.order = append(o.order, job.ID)
		o.queue = append(o.queue, job.ID)
		ids = append(ids, job.ID)
		o.emit(Event{Type: EventStatusChange, JobID: job.ID, PageID: p.ID, Status: StatusQueued})
	}
	return ids
}

// Run dispatches queued jobs into the bounded worker pool until the queue
// drains or ctx is cancelled. Results are keyed by page id, so
// out-of-order completion across workers is safe.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		jobID, ok := o.dequeue()
		if !ok {
			break
		}

		select {
		case o.slots <- struct{}{}:
		case <-ctx.Done():
			o.failJob(jobID, ctx.Err())
			continue
		}

		o.wg.Add(1)
		go func(jobID string) {
			defer o.wg.Done()
			defer func() { <-o.slots }()
			o.runJob(ctx, jobID)
		}(jobID)
	}

	o.wg.Wait()
	o.emit(Event{Type: EventQueueDrained})
}

// Stop drains the queue: queued jobs return to idle and no new work is
// admitted. In-flight jobs finish under their own contexts.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopped = true
	for _, id := range o.queue {
		if job, ok := o.jobs[id]; ok && job.Status == StatusQueued {
			job.Status = StatusIdle
			o.emit(Event{Type: EventStatusChange, JobID: id, PageID: job.PageID, Status: StatusIdle})
		}
	}
	o.queue = nil
}

func (o *Orchestrator) dequeue() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopped || len(o.queue) == 0 {
		return "", false
	}
	id := o.queue[0]
	o.queue = o.queue[1:]
	return id, true
}

// runJob drives one page through the state machine under the wall-clock
// budget. Any unrecoverable error lands the job in StatusError with a
// human-readable message; the pool keeps going.
func (o *Orchestrator) runJob(ctx context.Context, jobID string) {
	jobCtx, cancel := context.WithTimeout(ctx, o.cfg.Pipeline.JobTimeout)
	defer cancel()

	job := o.getJob(jobID)
	if job == nil {
		return
	}

	o.commit(job, func(j *Job) { j.Started = time.Now() })
	o.transition(job, StatusScanning)

	content, err := o.store.FetchFullContent(jobCtx, job.PageID)
	if err != nil {
		o.failJob(jobID, fmt.Errorf("fetch failed: %w", err))
		return
	}

	pageHTML := content.HTML
	if o.fetcher != nil && o.cfg.WordPress.RenderJS {
		if rendered, fetchErr := o.fetcher.Fetch(jobCtx, content.Link); fetchErr == nil {
			pageHTML = rendered
		} else {
			log.Warn("rendered fetch failed, scoring REST content", "page_id", job.PageID, "error", fetchErr)
		}
	}

	metrics := health.Extract(pageHTML, o.siteHost, content.Modified, time.Now())
	scores := o.scorer.Score(metrics)
	o.commit(job, func(j *Job) {
		j.Metrics = metrics
		j.Scores = scores
	})
	neighbors := mesh.Neighbors(o.snapshotMesh(), job.PageID, job.Title, o.cfg.Pipeline.MeshSize)

	o.transition(job, StatusOptimizing)

	strategy, err := o.generateStrategy(jobCtx, job, pageHTML, neighbors)
	if err != nil {
		o.failJob(jobID, err)
		return
	}
	o.commit(job, func(j *Job) { j.Strategy = strategy })

	// Content generation and product enrichment are independent of each
	// other; run them concurrently and join before assembly.
	var (
		draft      *rescue.ContentDraft
		contentErr error
		detections []render.Detection
		wg         sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		draft, contentErr = o.generateContent(jobCtx, job)
	}()
	go func() {
		defer wg.Done()
		detections = o.enrichProducts(jobCtx, strategy)
	}()
	wg.Wait()

	if contentErr != nil {
		o.failJob(jobID, contentErr)
		return
	}
	if jobCtx.Err() != nil {
		o.failJob(jobID, fmt.Errorf("run exceeded %s budget: %w", o.cfg.Pipeline.JobTimeout, jobCtx.Err()))
		return
	}

	o.commit(job, func(j *Job) {
		j.Draft = draft
		j.Products = detections
		j.Overrides = render.Overrides{}
	})

	template, err := o.assembleTemplate(job, neighbors)
	if err != nil {
		o.failJob(jobID, err)
		return
	}
	o.commit(job, func(j *Job) { j.Template = template })
	finalHTML := o.renderFinal(job)
	o.commit(job, func(j *Job) {
		j.FinalHTML = finalHTML
		j.Ended = time.Now()
	})
	o.transition(job, StatusReviewPending)
	log.Info("page ready for review", "page_id", job.PageID, "seo", job.Scores.SEO, "aeo", job.Scores.AEO, "products", len(job.Products))
}

// assembleTemplate builds the persisted placeholder-bearing template:
// summary block, sanitized body (link placeholders resolved, anchors
// firewalled), comparison table, FAQ section. [[PRODUCT_BOX:n]] markers
// survive untouched; only Render consumes them, at render time.
func (o *Orchestrator) assembleTemplate(job *Job, neighbors []mesh.Node) (string, error) {
	body := render.ResolveLinkPlaceholders(job.Draft.BodyHTML, neighbors)

	sanitized, err := sanitize.New(o.siteHost, neighbors).Apply(body)
	if err != nil {
		return "", fmt.Errorf("sanitization failed: %w", err)
	}

	var b strings.Builder
	if job.Draft.SGESummary != "" {
		b.WriteString(`<div class="nm-direct-answer"><p>`)
		b.WriteString(job.Draft.SGESummary)
		b.WriteString("</p></div>\n")
	}
	b.WriteString(sanitized)
	if job.Draft.ComparisonTableHTML != "" {
		b.WriteString("\n")
		b.WriteString(job.Draft.ComparisonTableHTML)
	}
	if len(job.Draft.FAQs) > 0 {
		b.WriteString("\n<h2>Frequently Asked Questions</h2>")
		for _, f := range job.Draft.FAQs {
			b.WriteString(fmt.Sprintf("\n<h3>%s</h3>\n<p>%s</p>", f.Question, f.Answer))
		}
	}
	return b.String(), nil
}

// renderFinal is the one place preview and publish HTML comes from.
func (o *Orchestrator) renderFinal(job *Job) string {
	html := render.Render(job.Template, job.Products, job.Overrides, o.cfg.Amazon.AffiliateTag)

	imageURL := ""
	rating := 0.0
	reviews := 0
	if len(job.Products) > 0 && job.Products[0].Data != nil {
		imageURL = job.Products[0].Data.ImageURL
		rating = job.Products[0].Data.Rating
		reviews = job.Products[0].Data.ReviewCount
	}
	html += schema.Build(job.Strategy, job.Draft.FAQs, o.siteHost, imageURL, rating, reviews)

	return html
}

// ApplyOverride merges a reviewer correction and re-renders the final
// HTML from the stored template. The detections themselves are never
// mutated, so clearing an override restores the previous output exactly.
func (o *Orchestrator) ApplyOverride(jobID, productKey string, ov render.Override) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return fmt.Errorf("unknown job %s", jobID)
	}
	if job.Status != StatusReviewPending {
		return fmt.Errorf("job %s is %s, not reviewable", jobID, job.Status)
	}

	if (ov == render.Override{}) {
		delete(job.Overrides, productKey)
	} else {
		job.Overrides[productKey] = ov
	}
	job.FinalHTML = o.renderFinal(job)
	return nil
}

// Publish writes the final HTML back to the content store and exports a
// copy when an export writer is configured.
func (o *Orchestrator) Publish(ctx context.Context, jobID string) error {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("unknown job %s", jobID)
	}
	if job.Status != StatusReviewPending {
		status := job.Status
		o.mu.Unlock()
		return fmt.Errorf("job %s is %s, not publishable", jobID, status)
	}
	finalHTML := job.FinalHTML
	o.mu.Unlock()

	if err := o.store.Publish(ctx, job.PageID, finalHTML); err != nil {
		if errors.Is(err, wordpress.ErrUnauthorized) {
			o.failJob(jobID, err)
		}
		return err
	}

	if o.exporter != nil {
		if path, err := o.exporter.WritePage(job.URL, finalHTML); err != nil {
			log.Warn("export failed", "page_id", job.PageID, "error", err)
		} else {
			log.Debug("exported", "page_id", job.PageID, "path", path)
		}
	}

	o.mu.Lock()
	job.Status = StatusPublished
	o.mu.Unlock()
	o.emit(Event{Type: EventStatusChange, JobID: job.ID, PageID: job.PageID, Status: StatusPublished, Scores: job.Scores})
	return nil
}

// Jobs returns a snapshot of all jobs in enqueue order.
func (o *Orchestrator) Jobs() []Job {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Job, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, *o.jobs[id])
	}
	return out
}

// Job returns a snapshot of one job.
func (o *Orchestrator) Job(jobID string) (Job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (o *Orchestrator) getJob(jobID string) *Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.jobs[jobID]
}

// commit applies worker-side field updates under the same lock the
// snapshot accessors take, so a Jobs or Job copy never observes a torn
// write. The worker still owns the job; only the writes are fenced.
func (o *Orchestrator) commit(job *Job, fn func(*Job)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(job)
}

func (o *Orchestrator) snapshotMesh() []mesh.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.meshNodes
}

func (o *Orchestrator) transition(job *Job, status Status) {
	o.mu.Lock()
	job.Status = status
	scores := job.Scores
	o.mu.Unlock()
	o.emit(Event{Type: EventStatusChange, JobID: job.ID, PageID: job.PageID, Status: status, Scores: scores})
}

func (o *Orchestrator) failJob(jobID string, err error) {
	o.mu.Lock()
	job, ok := o.jobs[jobID]
	if !ok {
		o.mu.Unlock()
		return
	}
	job.Status = StatusError
	job.Error = err.Error()
	job.Ended = time.Now()
	pageID := job.PageID
	o.mu.Unlock()

	log.Error("job failed", "page_id", pageID, "error", err)
	o.emit(Event{Type: EventStatusChange, JobID: jobID, PageID: pageID, Status: StatusError, Message: err.Error()})
}

// emit never blocks a worker: if the UI falls behind, notifications drop
// rather than stall the pipeline. Consumers must treat the stream as
// lossy and reconcile counters from Jobs snapshots.
func (o *Orchestrator) emit(ev Event) {
	select {
	case o.events <- ev:
	default:
	}
}
