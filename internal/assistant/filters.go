package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperjump/tenin/internal/models"
	"github.com/hyperjump/tenin/pkg/utils"
)

// Filters holds constraints extracted heuristically from the raw user
// message. They act as defaults for tool-call arguments the model leaves
// unset; they never override what the model filled in.
type Filters struct {
	Category string
	Brand    string
	PriceMin *float64
	PriceMax *float64
	Sizes    []string
	Features []string
}

var knownBrands = []string{
	"shoei", "ls2", "agv", "scorpion", "hjc", "nolan",
	"shark", "icon", "airoh", "mt", "bell", "x-lite",
}

var knownFeatures = []string{
	"waterproof", "lightweight", "aerodynamic", "shock absorbing",
	"wide view", "neck support", "back protector", "with visor",
	"bluetooth", "ventilated",
}

// categoryKeywords maps trigger words to canonical categories.
var categoryKeywords = []struct {
	trigger  string
	category string
}{
	{"helmet", "helmets"},
	{"kask", "helmets"},
	{"jacket", "riding apparel"},
	{"apparel", "riding apparel"},
	{"glove", "riding apparel"},
	{"tire", "motorcycle tires"},
	{"tyre", "motorcycle tires"},
	{"protection", "protection gear"},
	{"protector", "protection gear"},
	{"box", "top boxes"},
	{"accessor", "accessories"},
}

var sizePattern = regexp.MustCompile(`\b(xs|s|m|l|xl|xxl|xxxl)\b`)

// Price phrases like "under 3 million", "up to 2.5m", "from 1 million",
// "between 2 and 5 million". Bare amounts are kept as written; the price
// normalizer resolves shorthand later.
var (
	maxPricePattern   = regexp.MustCompile(`(?:under|below|up to|max(?:imum)?|at most)\s*(\d+(?:\.\d+)?)\s*(m\b|million|toman)?`)
	minPricePattern   = regexp.MustCompile(`(?:over|above|from|at least|min(?:imum)?)\s*(\d+(?:\.\d+)?)\s*(m\b|million|toman)?`)
	rangePricePattern = regexp.MustCompile(`between\s*(\d+(?:\.\d+)?)\s*(?:m\b|million)?\s*(?:and|-|to)\s*(\d+(?:\.\d+)?)\s*(m\b|million|toman)?`)
)

// ExtractFilters scans the user message for brand, category, size, feature
// and budget hints. A nil field means nothing was detected.
func ExtractFilters(message string) *Filters {
	text := utils.FoldForMatch(message)
	f := &Filters{}

	for _, b := range knownBrands {
		if containsWord(text, b) {
			f.Brand = b
			break
		}
	}
	for _, feat := range knownFeatures {
		if strings.Contains(text, feat) {
			f.Features = append(f.Features, feat)
		}
	}
	for _, m := range sizePattern.FindAllString(text, -1) {
		f.Sizes = appendUnique(f.Sizes, strings.ToUpper(m))
	}
	for _, ck := range categoryKeywords {
		if strings.Contains(text, ck.trigger) {
			f.Category = models.NormalizeCategory(ck.category)
			break
		}
	}

	if m := rangePricePattern.FindStringSubmatch(text); m != nil {
		f.PriceMin = parseAmount(m[1], m[3])
		f.PriceMax = parseAmount(m[2], m[3])
	} else {
		if m := maxPricePattern.FindStringSubmatch(text); m != nil {
			f.PriceMax = parseAmount(m[1], m[2])
		}
		if m := minPricePattern.FindStringSubmatch(text); m != nil {
			f.PriceMin = parseAmount(m[1], m[2])
		}
	}
	return f
}

// parseAmount converts a matched number to currency units. An explicit
// million suffix multiplies here; bare numbers are left for the price
// normalizer.
func parseAmount(number, unit string) *float64 {
	v, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return nil
	}
	unit = strings.TrimSpace(unit)
	if unit == "m" || unit == "million" {
		v *= 1_000_000
	}
	return &v
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(text[start-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
