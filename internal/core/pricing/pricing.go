package pricing

import "strings"

// ModelPricing defines token pricing for a model, in USD per million tokens.
type ModelPricing struct {
	Input  float64
	Output float64
}

// Entry is one row of the pricing table.
type Entry struct {
	Key     string
	Pricing ModelPricing
}

// DefaultKey is the key reported when no table entry matches.
const DefaultKey = "default"

// pricingTable lists pricing in declaration order. Lookup falls back to the
// first key that is a substring of the normalized model name, so more
// specific keys must precede their prefixes (gpt-5.1-codex before gpt-5.1
// before gpt-5). The ordering is covered by tests; do not reorder.
var pricingTable = []Entry{
	{"gpt-5.1-codex", ModelPricing{Input: 1.25, Output: 10.00}},
	{"gpt-5.1", ModelPricing{Input: 1.25, Output: 10.00}},
	{"gpt-5-codex", ModelPricing{Input: 1.25, Output: 10.00}},
	{"gpt-5-mini", ModelPricing{Input: 0.25, Output: 2.00}},
	{"gpt-5", ModelPricing{Input: 1.25, Output: 10.00}},
	{"gpt-4.1-mini", ModelPricing{Input: 0.40, Output: 1.60}},
	{"gpt-4.1", ModelPricing{Input: 2.00, Output: 8.00}},
	{"gpt-4o", ModelPricing{Input: 2.50, Output: 10.00}},
	{"o4-mini", ModelPricing{Input: 1.10, Output: 4.40}},
	{"o3", ModelPricing{Input: 2.00, Output: 8.00}},
}

// defaultPricing applies when the model is unknown or the default sentinel.
var defaultPricing = ModelPricing{Input: 1.25, Output: 10.00}

// NormalizeModelName lowercases the name, collapses whitespace and
// underscores to hyphens, strips anything outside [a-z0-9.-], and collapses
// repeated hyphens.
func NormalizeModelName(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	lastHyphen := false
	for _, r := range lower {
		switch {
		case r == ' ' || r == '\t' || r == '_' || r == '-':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.':
			b.WriteRune(r)
			lastHyphen = false
		}
	}

	return strings.Trim(b.String(), "-")
}

// Resolve returns the matching table key and pricing for a model name.
// Resolution order: exact match on the normalized name, then the first
// declaration-order key that is a substring of it, then the default entry.
func Resolve(modelName string) (string, ModelPricing) {
	normalized := NormalizeModelName(modelName)
	if normalized == "" || normalized == "default" {
		return DefaultKey, defaultPricing
	}

	for _, entry := range pricingTable {
		if entry.Key == normalized {
			return entry.Key, entry.Pricing
		}
	}

	for _, entry := range pricingTable {
		if strings.Contains(normalized, entry.Key) {
			return entry.Key, entry.Pricing
		}
	}

	return DefaultKey, defaultPricing
}

// GetPricing returns the pricing for a model name.
func GetPricing(modelName string) ModelPricing {
	_, p := Resolve(modelName)
	return p
}

// Entries returns a copy of the pricing table in declaration order, with the
// default entry appended last.
func Entries() []Entry {
	result := make([]Entry, 0, len(pricingTable)+1)
	result = append(result, pricingTable...)
	result = append(result, Entry{Key: DefaultKey, Pricing: defaultPricing})
	return result
}
