package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/Papalexios/amz-neuralmesh/internal/llm"
	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
	"github.com/Papalexios/amz-neuralmesh/internal/render"
	"github.com/Papalexios/amz-neuralmesh/internal/rescue"
	"github.com/Papalexios/amz-neuralmesh/internal/serper"
)

// generateStrategy runs phase 1 and parses the result. The inventory the
// model may link to is exactly the neighbor list passed in.
func (o *Orchestrator) generateStrategy(ctx context.Context, job *Job, pageHTML string, neighbors []mesh.Node) (*rescue.Strategy, error) {
	var snippets *serper.Results
	if o.searcher != nil && o.searcher.Enabled() {
		results, err := o.searcher.Search(ctx, job.Title)
		if err != nil {
			// Competitor snippets improve the strategy but are not worth
			// failing the run over.
			log.Warn("competitor search failed", "page_id", job.PageID, "error", err)
		} else {
			snippets = results
		}
	}

	userPrompt := buildStrategyUserPrompt(job.Title, stripText(pageHTML), neighbors, snippets, o.cfg.Pipeline.MaxPageText)

	raw, err := o.provider.Generate(ctx, strategySystemPrompt, userPrompt, o.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("strategy generation failed: %w", err)
	}

	strategy, err := rescue.ParseStrategy(raw)
	if err != nil {
		return nil, fmt.Errorf("strategy unparseable: %w", err)
	}
	return strategy, nil
}

// generateContent runs phase 2 and parses the result.
func (o *Orchestrator) generateContent(ctx context.Context, job *Job) (*rescue.ContentDraft, error) {
	raw, err := o.provider.Generate(ctx, contentSystemPrompt, buildContentUserPrompt(job), o.generateConfig())
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}

	draft, err := rescue.ParseContent(raw)
	if err != nil {
		return nil, fmt.Errorf("content unparseable: %w", err)
	}
	return draft, nil
}

// enrichProducts fans lookups out across all strategy products. A failed
// or empty lookup leaves that product on its strategy-derived fallback
// fields; it never fails the siblings or the run.
func (o *Orchestrator) enrichProducts(ctx context.Context, strategy *rescue.Strategy) []render.Detection {
	detections := make([]render.Detection, len(strategy.Products))

	var wg sync.WaitGroup
	for i, p := range strategy.Products {
		detections[i] = render.Detection{
			Name:          p.Name,
			Context:       p.Context,
			Recommended:   p.Recommended,
			FallbackPrice: strategy.Specs.Price,
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()

			product, err := o.lookup.Lookup(ctx, name)
			if err != nil {
				log.Warn("product lookup failed", "product", name, "error", err)
				return
			}
			detections[i].Data = product
		}(i, p.Name)
	}
	wg.Wait()

	return detections
}

func (o *Orchestrator) generateConfig() llm.GenerateConfig {
	return llm.GenerateConfig{
		Model:       o.cfg.LLM.Model,
		Temperature: o.cfg.LLM.Temperature,
		MaxTokens:   o.cfg.LLM.MaxTokens,
	}
}

// stripText flattens page HTML to text for the prompt.
func stripText(pageHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageHTML))
	if err != nil {
		return pageHTML
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
