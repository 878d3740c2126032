// meshscan is the scan-only companion binary: it walks the page
// inventory, scores every page's decay, and prints the regeneration
// candidates ranked by opportunity. No content is generated or written.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Papalexios/amz-neuralmesh/internal/config"
	"github.com/Papalexios/amz-neuralmesh/internal/health"
	"github.com/Papalexios/amz-neuralmesh/internal/wordpress"
)

type scanRow struct {
	record wordpress.PageRecord
	scores health.Scores
	err    error
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	top := flag.Int("top", 20, "Number of candidates to print")
	concurrency := flag.Int("concurrency", 4, "Concurrent page fetches")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}
	if cfg.WordPress.SiteURL == "" {
		log.Fatal("wordpress.site_url is required")
	}

	ctx := context.Background()
	store := wordpress.NewClient(cfg.WordPress.SiteURL, cfg.WordPress.Username, cfg.WordPress.AppPassword, cfg.WordPress.PerPage)
	scorer := health.NewScorer(cfg.Scoring)

	records, err := store.ListPages(ctx, nil)
	if err != nil {
		log.Fatal("failed to list pages", "error", err)
	}
	log.Info("scanning", "pages", len(records), "concurrency", *concurrency)

	siteHost := hostOf(cfg.WordPress.SiteURL)
	rows := make([]scanRow, len(records))
	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	for i, rec := range records {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec wordpress.PageRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			rows[i] = scanRow{record: rec}
			content, err := store.FetchFullContent(ctx, rec.ID)
			if err != nil {
				rows[i].err = err
				return
			}
			metrics := health.Extract(content.HTML, siteHost, content.Modified, time.Now())
			rows[i].scores = scorer.Score(metrics)
		}(i, rec)
	}
	wg.Wait()

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].scores.Opportunity > rows[b].scores.Opportunity
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEO\tAEO\tOPPORTUNITY\tTITLE")
	printed := 0
	for _, row := range rows {
		if printed >= *top {
			break
		}
		if row.err != nil {
			log.Warn("scan failed", "page_id", row.record.ID, "error", row.err)
			continue
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%s\n",
			row.record.ID, row.scores.SEO, row.scores.AEO, row.scores.Opportunity, row.record.Title)
		printed++
	}
	w.Flush()
}

func hostOf(siteURL string) string {
	u, err := url.Parse(siteURL)
	if err != nil {
		return siteURL
	}
	return strings.TrimPrefix(u.Host, "www.")
}
