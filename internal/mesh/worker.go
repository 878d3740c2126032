package mesh

import (
	"context"

	"github.com/charmbracelet/log"
)

// BuildRequest asks the worker to index a full page inventory. The payload
// is copied in; the worker shares no memory with the caller.
type BuildRequest struct {
	Pages []Page
	Reply chan BuildResult
}

// BuildResult carries the finished index back to the requester.
type BuildResult struct {
	Nodes []Node
}

// Worker builds mesh indexes off the interactive path. Index construction
// over hundreds of pages is CPU work that must not stall the UI loop or
// the job queue.
type Worker struct {
	requests chan BuildRequest
}

// NewWorker starts the background build loop.
func NewWorker(ctx context.Context) *Worker {
	w := &Worker{requests: make(chan BuildRequest)}
	go w.run(ctx)
	return w
}

func (w *Worker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.requests:
			nodes := Build(req.Pages)
			log.Debug("mesh built", "pages", len(req.Pages), "nodes", len(nodes))
			select {
			case req.Reply <- BuildResult{Nodes: nodes}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// BuildAsync submits a build request and waits for the result or context
// cancellation.
func (w *Worker) BuildAsync(ctx context.Context, pages []Page) ([]Node, error) {
	reply := make(chan BuildResult, 1)
	select {
	case w.requests <- BuildRequest{Pages: pages, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.Nodes, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
