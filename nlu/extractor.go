package nlu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/voicecart/voicecart/catalog"
)

// Intent is the high-level action a user's utterance requests.
type Intent string

const (
	IntentAddToCart      Intent = "add_to_cart"
	IntentRemoveFromCart Intent = "remove_from_cart"
	IntentShowCart       Intent = "show_cart"
	IntentUnknown        Intent = "unknown"
)

// PlaceholderProduct is returned when no catalog product is recognized in
// the utterance.
const PlaceholderProduct = "item"

// IntentResult is the structured interpretation of a single utterance.
// Quantity is always >= 1; Metric is the captured unit token, if any,
// kept verbatim.
type IntentResult struct {
	Intent   Intent `json:"intent"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Metric   string `json:"metric,omitempty"`
}

// Intent keyword classes, checked in fixed priority order. First match wins;
// the classifier never returns more than one intent.
var (
	addKeywords    = []string{"add", "buy", "purchase", "i want", "need"}
	removeKeywords = []string{"remove", "delete", "take out"}
	showPhrases    = []string{"what's in", "show cart", "view cart", "my cart"}
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "a": 1, "an": 1,
}

var metricTokens = []string{
	"kg", "kilogram", "litre", "liter", "dozen", "dozens",
	"packet", "packets", "bottle", "bottles", "piece", "pieces",
}

type productPattern struct {
	display string
	re      *regexp.Regexp
}

// Extractor turns free text into an IntentResult. It is pure and total:
// extraction never fails, it degrades to unknown/"item"/quantity 1.
type Extractor struct {
	catalog  *catalog.Catalog
	patterns []productPattern
}

// NewExtractor compiles one quantity/metric capture pattern per catalog
// product. The catalog is immutable after load, so compilation happens once.
func NewExtractor(c *catalog.Catalog) *Extractor {
	e := &Extractor{catalog: c}
	metricAlt := strings.Join(metricTokens, "|")
	for _, name := range c.Names() {
		expr := fmt.Sprintf(`(\d+|one|two|three|four|five|a|an)?\s*(%s)?\s*%s`,
			metricAlt, regexp.QuoteMeta(strings.ToLower(name)))
		e.patterns = append(e.patterns, productPattern{
			display: name,
			re:      regexp.MustCompile(expr),
		})
	}
	return e
}

// Extract classifies the intent and pulls product, quantity and metric
// entities out of the text.
func (e *Extractor) Extract(text string) IntentResult {
	text = strings.ToLower(strings.TrimSpace(text))

	result := IntentResult{
		Intent:   classifyIntent(text),
		Product:  PlaceholderProduct,
		Quantity: 1,
	}

	// Phase 1: pattern match with quantity/metric capture. Among all matching
	// products the lexically longest name wins, so "brown rice" is preferred
	// over "rice" when both appear.
	bestLen := 0
	for _, p := range e.patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(p.display) <= bestLen {
			continue
		}
		bestLen = len(p.display)
		result.Product = p.display
		result.Quantity = parseQuantity(m[1])
		result.Metric = m[2]
	}
	if bestLen > 0 {
		return result
	}

	// Phase 2: fall back to substring containment on catalog names and their
	// naive singular/plural variants. First catalog entry that matches wins.
	for _, name := range e.catalog.Names() {
		lower := strings.ToLower(name)
		if strings.Contains(text, lower) ||
			strings.Contains(text, strings.TrimSuffix(lower, "s")) ||
			strings.Contains(text, lower+"s") {
			result.Product = name
			break
		}
	}
	return result
}

func classifyIntent(text string) Intent {
	if containsAny(text, addKeywords) {
		return IntentAddToCart
	}
	if containsAny(text, removeKeywords) {
		return IntentRemoveFromCart
	}
	if containsAny(text, showPhrases) {
		return IntentShowCart
	}
	return IntentUnknown
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// parseQuantity maps a captured quantity token to an integer. Digit strings
// parse as integers, word numbers go through a fixed table, and anything
// unrecognized (including absence) defaults to 1. Quantity is always >= 1:
// "0" clamps to 1 rather than producing a zero-quantity result.
func parseQuantity(token string) int {
	if token == "" {
		return 1
	}
	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 {
			return 1
		}
		return n
	}
	if n, ok := wordNumbers[token]; ok {
		return n
	}
	return 1
}
