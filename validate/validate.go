// Package validate coerces loosely-typed candidate maps into the strict
// product schema, logging per-record failures without aborting the batch.
package validate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shelfgrab/shelfgrab/models"
)

// priceKeepRe strips everything except digits and the decimal point.
var priceKeepRe = regexp.MustCompile(`[^0-9.]`)

// weightRe matches a number followed by g/kg, case-insensitive, for deriving
// a missing weight from the product title ("Bread 400g" → "400g").
var weightRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(kg|g)\b`)

// Result is the outcome of validating one candidate batch.
type Result struct {
	Records []models.ProductRecord
	Errors  []models.ErrorLogEntry
}

// Batch validates candidates in two passes. The strict pass decodes the whole
// batch through the JSON schema in one shot; if it errors outright (a type
// the schema cannot express), the manual fallback pass re-attempts each
// record independently, silently skipping any that still fail.
//
// Rejections from per-record rule checks are appended to Result.Errors with
// the candidate's original index; the batch always runs to completion.
func Batch(candidates []map[string]any) Result {
	records, err := strictPass(candidates)
	if err != nil {
		slog.Warn("strict validation pass failed, falling back to per-record coercion", "error", err)
		return fallbackPass(candidates)
	}

	var res Result
	for i, rec := range records {
		checked, err := checkRecord(rec)
		if err != nil {
			res.Errors = append(res.Errors, models.ErrorLogEntry{
				Index:   i,
				RawItem: candidates[i],
				Error:   err.Error(),
			})
			continue
		}
		res.Records = append(res.Records, checked)
	}
	return res
}

// strictPass round-trips the whole batch through the typed schema. Any
// non-string field value makes the decode fail, which is the signal to use
// the fallback pass.
func strictPass(candidates []map[string]any) ([]models.ProductRecord, error) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return nil, err
	}
	var records []models.ProductRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// fallbackPass coerces each candidate independently, so one malformed record
// cannot sink its neighbours.
func fallbackPass(candidates []map[string]any) Result {
	var res Result
	for i, item := range candidates {
		rec := models.ProductRecord{
			Title:   coerceString(item["title"]),
			Weight:  coerceString(item["weight"]),
			Price:   coerceString(item["price"]),
			Badge:   coerceString(item["badge"]),
			Reviews: coerceString(item["reviews"]),
		}
		checked, err := checkRecord(rec)
		if err != nil {
			res.Errors = append(res.Errors, models.ErrorLogEntry{
				Index:   i,
				RawItem: item,
				Error:   err.Error(),
			})
			continue
		}
		res.Records = append(res.Records, checked)
	}
	return res
}

// checkRecord applies the per-record rules: price normalization, weight
// derivation from the title, and the required-field check.
func checkRecord(rec models.ProductRecord) (models.ProductRecord, error) {
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Price = NormalizePrice(rec.Price)

	if rec.Weight == "" {
		rec.Weight = DeriveWeight(rec.Title)
	}

	if rec.Title == "" {
		return rec, fmt.Errorf("missing required field: title")
	}
	if rec.Price == "" {
		return rec, fmt.Errorf("missing required field: price")
	}
	return rec, nil
}

// NormalizePrice strips currency symbols, spaces, and separators, keeping
// only digits and the decimal point. "₹1,299.00" → "1299.00". A value left
// with more than one decimal point is not a price; it normalizes to empty
// and fails the required-price check.
func NormalizePrice(price string) string {
	cleaned := priceKeepRe.ReplaceAllString(price, "")
	if strings.Count(cleaned, ".") > 1 {
		return ""
	}
	return cleaned
}

// DeriveWeight extracts a weight like "400g" or "1.5kg" from the title.
// Returns the empty string when no weight pattern is present.
func DeriveWeight(title string) string {
	m := weightRe.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return m[1] + strings.ToLower(m[2])
}

// coerceString renders any candidate value as a string. Numbers avoid
// scientific notation; nil becomes empty.
func coerceString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
