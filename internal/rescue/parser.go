package rescue

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ErrUnusableResponse marks model output the rescue path could not recover
// a usable content body from. Callers treat it as fatal for that page's run.
var ErrUnusableResponse = errors.New("model output unusable after rescue")

// minBodyLen is the floor below which a recovered content body is treated
// as unusable rather than defaulted.
const minBodyLen = 50

// Stage-2 fallback defaults. Policy constants, not incidental values: a
// change here changes what ships on a recovered page.
const (
	defaultVerdictScore     = 7.5
	defaultCommercialIntent = true
)

var (
	fenceRe   = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	controlRe = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
)

// Clean normalizes raw model text toward parseable JSON: strips Markdown
// fences, slices from the first '{' to the last '}', and removes raw
// control characters that break strict parsing when the model emits
// literal newlines or tabs inside string values.
func Clean(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		raw = m[1]
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	// Literal newlines and tabs inside string values are the most common
	// strict-parse killer; escape rather than delete them.
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = escapeControlInStrings(raw)
	return controlRe.ReplaceAllString(raw, "")
}

// escapeControlInStrings rewrites raw newlines/tabs that occur inside JSON
// string literals to their escaped forms, leaving structural whitespace
// alone.
func escapeControlInStrings(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			case r == '\n':
				b.WriteString(`\n`)
				continue
			case r == '\r':
				b.WriteString(`\r`)
				continue
			case r == '\t':
				b.WriteString(`\t`)
				continue
			}
		} else if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseStrategy recovers a Strategy from raw model text.
func ParseStrategy(raw string) (*Strategy, error) {
	cleaned := Clean(raw)

	var s Strategy
	if err := json.Unmarshal([]byte(cleaned), &s); err == nil {
		return &s, nil
	}

	log.Warn("strict strategy parse failed, attempting field rescue", "len", len(raw))

	s = Strategy{
		OldProduct:        stringField(cleaned, "oldProduct"),
		NewProduct:        stringField(cleaned, "newProduct"),
		PrimaryKeywords:   stringListField(cleaned, "primaryKeywords"),
		SecondaryKeywords: stringListField(cleaned, "secondaryKeywords"),
		TargetAudience:    stringField(cleaned, "targetAudience"),
		InternalLinkIDs:   intListField(cleaned, "internalLinkIds"),
		Outline:           stringListField(cleaned, "outline"),
		BLUF:              stringField(cleaned, "bluf"),
		CommercialIntent:  defaultCommercialIntent,
		Verdict: Verdict{
			Score:   floatField(cleaned, "score", defaultVerdictScore),
			Pros:    stringListField(cleaned, "pros"),
			Cons:    stringListField(cleaned, "cons"),
			Summary: stringField(cleaned, "summary"),
		},
	}
	s.Products = productsField(cleaned)
	if len(s.Products) == 0 && s.NewProduct != "" {
		s.Products = append(s.Products, StrategyProduct{Name: s.NewProduct, Recommended: true})
	}

	if s.NewProduct == "" && len(s.Products) == 0 {
		return nil, fmt.Errorf("no product recoverable from strategy output: %w", ErrUnusableResponse)
	}
	return &s, nil
}

// ParseContent recovers a ContentDraft from raw model text. An empty or
// implausibly short body is fatal for the page's run.
func ParseContent(raw string) (*ContentDraft, error) {
	cleaned := Clean(raw)

	var d ContentDraft
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		log.Warn("strict content parse failed, attempting field rescue", "len", len(raw))
		d = ContentDraft{
			SGESummary:          stringField(cleaned, "sgeSummary"),
			BodyHTML:            stringField(cleaned, "bodyHtml"),
			ComparisonTableHTML: stringField(cleaned, "comparisonTableHtml"),
			FAQs:                faqField(cleaned),
		}
	}

	if len(strings.TrimSpace(d.BodyHTML)) < minBodyLen {
		return nil, fmt.Errorf("content body too short (%d chars): %w",
			len(strings.TrimSpace(d.BodyHTML)), ErrUnusableResponse)
	}
	return &d, nil
}

// stringField extracts a single quoted field value, tolerating escaped
// quotes inside it.
func stringField(s, name string) string {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	var out string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &out); err != nil {
		return m[1]
	}
	return out
}

func floatField(s, name string, fallback float64) float64 {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(name) + `"\s*:\s*([0-9.]+)`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return fallback
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return fallback
	}
	return f
}

func stringListField(s, name string) []string {
	re := regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(name) + `"\s*:\s*\[(.*?)\]`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	itemRe := regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
	var out []string
	for _, im := range itemRe.FindAllStringSubmatch(m[1], -1) {
		var v string
		if err := json.Unmarshal([]byte(`"`+im[1]+`"`), &v); err != nil {
			v = im[1]
		}
		out = append(out, v)
	}
	return out
}

func intListField(s, name string) []int {
	re := regexp.MustCompile(`(?s)"` + regexp.QuoteMeta(name) + `"\s*:\s*\[(.*?)\]`)
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	var out []int
	for _, im := range regexp.MustCompile(`\d+`).FindAllString(m[1], -1) {
		if n, err := strconv.Atoi(im); err == nil {
			out = append(out, n)
		}
	}
	return out
}

// productsField pulls product names out of the products array slice only,
// so name values elsewhere in the document are not mistaken for products.
func productsField(s string) []StrategyProduct {
	arrRe := regexp.MustCompile(`(?s)"products"\s*:\s*\[(.*?)\]`)
	m := arrRe.FindStringSubmatch(s)
	if m == nil {
		return nil
	}

	nameRe := regexp.MustCompile(`"name"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	var out []StrategyProduct
	for _, nm := range nameRe.FindAllStringSubmatch(m[1], -1) {
		out = append(out, StrategyProduct{Name: unescape(nm[1])})
	}
	return out
}

func faqField(s string) []FAQ {
	pairRe := regexp.MustCompile(`"question"\s*:\s*"((?:[^"\\]|\\.)*)"\s*,\s*"answer"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	var out []FAQ
	for _, m := range pairRe.FindAllStringSubmatch(s, -1) {
		out = append(out, FAQ{Question: unescape(m[1]), Answer: unescape(m[2])})
	}
	return out
}

func unescape(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err != nil {
		return s
	}
	return out
}
