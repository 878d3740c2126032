package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Papalexios/amz-neuralmesh/internal/mesh"
	"github.com/Papalexios/amz-neuralmesh/internal/serper"
)

// Prompts are data, not code: the orchestration below never inspects
// model output beyond handing it to the rescue parser, so prompt changes
// are content changes.

const strategySystemPrompt = `You are a senior affiliate content strategist. You analyze an aging product page and plan its regeneration.

Respond with a single JSON object and nothing else, using exactly this schema:
{
  "oldProduct": string,
  "newProduct": string,
  "primaryKeywords": string[],
  "secondaryKeywords": string[],
  "targetAudience": string,
  "verdict": {"score": number (0-10), "pros": string[], "cons": string[], "summary": string, "targetAudience": string},
  "specs": {"price": string, "rating": number, "reviewCount": number},
  "internalLinkIds": number[],
  "outline": string[],
  "bluf": string,
  "commercialIntent": boolean,
  "products": [{"name": string, "context": string, "recommended": boolean}]
}

Hard constraints:
- internalLinkIds MUST contain between 6 and 10 IDs, chosen ONLY from the provided inventory.
- If the page reviews several products (a roundup), list each one in products in page order; otherwise list the single successor product.
- newProduct is the current-generation successor of the product the page covers.
- bluf is one sentence a reader could act on without reading further.`

const contentSystemPrompt = `You are an expert product reviewer writing conversion-optimized HTML.

Respond with a single JSON object and nothing else, using exactly this schema:
{
  "sgeSummary": string,
  "bodyHtml": string,
  "faqs": [{"question": string, "answer": string}],
  "comparisonTableHtml": string
}

Hard constraints:
- sgeSummary is a direct answer under 200 words.
- bodyHtml uses [[LINK:id]] placeholders for internal links, only with IDs from the strategy, and [[PRODUCT_BOX:n]] placeholders where n is the zero-based index into the strategy's products, in the same order.
- Every product in the strategy gets exactly one [[PRODUCT_BOX:n]] placeholder.
- faqs contains 3 to 6 entries. comparisonTableHtml may be an empty string for single-product pages.
- No <html>, <head>, or <body> tags; bodyHtml is a fragment.`

// buildStrategyUserPrompt formats the page text, mesh inventory, and
// competitor snippets for phase 1.
func buildStrategyUserPrompt(pageTitle, pageText string, neighbors []mesh.Node, results *serper.Results, maxText int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PAGE TITLE: %s\n\nPAGE TEXT:\n%s\n", pageTitle, truncateText(pageText, maxText))

	b.WriteString("\nINTERNAL LINK INVENTORY (ID | Title):\n")
	for _, n := range neighbors {
		fmt.Fprintf(&b, "%d | %s\n", n.ID, n.Title)
	}

	if results != nil && len(results.Organic) > 0 {
		b.WriteString("\nCOMPETITOR SNIPPETS:\n")
		for i, r := range results.Organic {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Snippet)
		}
		for i, q := range results.PeopleAlsoAsk {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "Q: %s\n", q.Question)
		}
	}

	return b.String()
}

// buildContentUserPrompt serializes the strategy for phase 2.
func buildContentUserPrompt(job *Job) string {
	s := job.Strategy
	var b strings.Builder

	fmt.Fprintf(&b, "PAGE TITLE: %s\n", job.Title)
	fmt.Fprintf(&b, "SUCCESSOR PRODUCT: %s (replacing %s)\n", s.NewProduct, s.OldProduct)
	fmt.Fprintf(&b, "TARGET AUDIENCE: %s\n", s.TargetAudience)
	fmt.Fprintf(&b, "PRIMARY KEYWORDS: %s\n", strings.Join(s.PrimaryKeywords, ", "))
	fmt.Fprintf(&b, "BLUF: %s\n", s.BLUF)
	fmt.Fprintf(&b, "VERDICT: %.1f/10 - %s\n", s.Verdict.Score, s.Verdict.Summary)
	fmt.Fprintf(&b, "PROS: %s\nCONS: %s\n", strings.Join(s.Verdict.Pros, "; "), strings.Join(s.Verdict.Cons, "; "))

	b.WriteString("OUTLINE:\n")
	for _, o := range s.Outline {
		fmt.Fprintf(&b, "- %s\n", o)
	}

	b.WriteString("PRODUCTS (use [[PRODUCT_BOX:n]] in this order):\n")
	for i, p := range s.Products {
		fmt.Fprintf(&b, "%d. %s - %s\n", i, p.Name, p.Context)
	}

	fmt.Fprintf(&b, "INTERNAL LINK IDS TO USE: %s\n", joinInts(s.InternalLinkIDs))
	return b.String()
}

// truncateText cuts on a rune boundary so the prompt stays valid UTF-8.
func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ", ")
}
