// Package normalize repairs and unwraps LLM completion text into candidate
// product maps. The completion instruction forbids prose and fences, but
// models ignore that often enough that every rule here exists because some
// reply needed it.
package normalize

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/shelfgrab/shelfgrab/models"
)

// rupee is the currency marker scanned for when a candidate lacks a price key.
const rupee = "₹"

// fencedJSONRe matches a ```json fenced code block and captures its body.
var fencedJSONRe = regexp.MustCompile("(?s)```(?:json|JSON)\\s*(.*?)\\s*```")

// envelopeKind classifies the shape of a parsed completion payload.
type envelopeKind int

const (
	kindArray envelopeKind = iota
	kindObjectWithProducts
	kindObjectWithBlocks
	kindUnrecognized
)

// Candidates transforms raw completion text into loosely-typed candidate
// maps. Rules are applied in order, first applicable wins:
//
//  1. unwrap one level of quote-wrapped JSON (escaped inner quotes),
//  2. direct JSON parse,
//  3. extract and parse a ```json fenced block,
//  4. unwrap a {"products": [...]} or non-empty {"blocks": [...]} envelope,
//  5. keep only map elements that carry a title key,
//  6. promote a ₹-bearing key or value into a missing price field; drop the
//     element when none is found,
//  7. coerce price to string.
//
// When no rule yields parseable JSON, a DECODE_FAILURE error is returned; the
// caller logs it and continues with the next chunk.
func Candidates(raw string) ([]map[string]any, error) {
	value, err := parsePayload(raw)
	if err != nil {
		return nil, err
	}

	list := unwrapEnvelope(value)

	var candidates []map[string]any
	for _, elem := range list {
		item, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		if _, hasTitle := item["title"]; !hasTitle {
			continue
		}
		if !ensurePrice(item) {
			continue
		}
		candidates = append(candidates, item)
	}
	return candidates, nil
}

// parsePayload applies the repair rules until one produces valid JSON.
func parsePayload(raw string) (any, error) {
	text := strings.TrimSpace(raw)

	// Rule 1: a single pair of wrapping quotes with escaped inner quotes.
	if unwrapped, ok := unquote(text); ok {
		text = unwrapped
	}

	// Rule 2: direct parse.
	var value any
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value, nil
	}

	// Rule 3: fenced ```json block.
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &value); err == nil {
			return value, nil
		}
	}

	return nil, models.NewScrapeError(models.ErrCodeDecodeFailure,
		"completion text is not parseable JSON", nil)
}

// unquote removes one level of string-wrapping: `"[{\"a\":1}]"` → `[{"a":1}]`.
// Only applies when the whole text is a single JSON string literal.
func unquote(text string) (string, bool) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", false
	}
	unquoted, err := strconv.Unquote(text)
	if err != nil {
		return "", false
	}
	return unquoted, true
}

// unwrapEnvelope reduces the parsed payload to a candidate list according to
// its classified shape. Unrecognized shapes yield an empty list.
func unwrapEnvelope(value any) []any {
	switch classify(value) {
	case kindArray:
		return value.([]any)
	case kindObjectWithProducts:
		inner, _ := value.(map[string]any)["products"].([]any)
		return inner
	case kindObjectWithBlocks:
		inner, _ := value.(map[string]any)["blocks"].([]any)
		return inner
	default:
		return nil
	}
}

func classify(value any) envelopeKind {
	switch v := value.(type) {
	case []any:
		return kindArray
	case map[string]any:
		if _, ok := v["products"]; ok {
			return kindObjectWithProducts
		}
		if blocks, ok := v["blocks"].([]any); ok && len(blocks) > 0 {
			return kindObjectWithBlocks
		}
		return kindUnrecognized
	default:
		return kindUnrecognized
	}
}

// ensurePrice guarantees the candidate carries a string price. A missing
// price is recovered by scanning keys first, then values, for the currency
// marker. Returns false when no price can be established.
func ensurePrice(item map[string]any) bool {
	if _, ok := item["price"]; !ok {
		if promoted, found := findCurrency(item); found {
			item["price"] = promoted
		} else {
			return false
		}
	}

	// Coerce to string.
	switch p := item["price"].(type) {
	case string:
	case float64:
		item["price"] = strconv.FormatFloat(p, 'f', -1, 64)
	case nil:
		return false
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return false
		}
		item["price"] = string(b)
	}
	return true
}

// findCurrency scans the candidate for a ₹-bearing key, then a ₹-bearing
// string value. Keys are visited in sorted order so the promotion is
// deterministic when several carry the marker.
func findCurrency(item map[string]any) (string, bool) {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if strings.Contains(k, rupee) {
			return k, true
		}
	}
	for _, k := range keys {
		if s, ok := item[k].(string); ok && strings.Contains(s, rupee) {
			return s, true
		}
	}
	return "", false
}
