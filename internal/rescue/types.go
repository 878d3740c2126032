// Package rescue extracts structured results from unreliable LLM output.
// Stage 1 is a strict JSON parse after cleanup; stage 2 is per-field regex
// recovery. It never hands back a silently half-empty result: an unusable
// content body is an error, not a default.
package rescue

// Verdict is the reviewer-style judgement embedded in a strategy.
type Verdict struct {
	Score          float64  `json:"score"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Summary        string   `json:"summary"`
	TargetAudience string   `json:"targetAudience"`
}

// Specs carries display-level product facts the model proposes.
type Specs struct {
	Price       string  `json:"price"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
}

// StrategyProduct is one monetizable product the strategy identified. A
// roundup page carries several.
type StrategyProduct struct {
	Name        string `json:"name"`
	Context     string `json:"context"`
	Recommended bool   `json:"recommended"`
}

// Strategy is the phase-1 plan for rewriting one page.
type Strategy struct {
	OldProduct        string            `json:"oldProduct"`
	NewProduct        string            `json:"newProduct"`
	PrimaryKeywords   []string          `json:"primaryKeywords"`
	SecondaryKeywords []string          `json:"secondaryKeywords"`
	TargetAudience    string            `json:"targetAudience"`
	Verdict           Verdict           `json:"verdict"`
	Specs             Specs             `json:"specs"`
	InternalLinkIDs   []int             `json:"internalLinkIds"`
	Outline           []string          `json:"outline"`
	BLUF              string            `json:"bluf"`
	CommercialIntent  bool              `json:"commercialIntent"`
	Products          []StrategyProduct `json:"products"`
}

// FAQ is one question/answer pair for the FAQ block and FAQPage schema.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ContentDraft is the phase-2 output: placeholder-bearing HTML blocks.
type ContentDraft struct {
	SGESummary          string `json:"sgeSummary"`
	BodyHTML            string `json:"bodyHtml"`
	FAQs                []FAQ  `json:"faqs"`
	ComparisonTableHTML string `json:"comparisonTableHtml"`
}
