package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ApplySchema runs a selector schema against raw HTML and returns the
// extracted records as serialized JSON (one object per base-selector match).
//
// A page where the base selector matches nothing yields an empty string, not
// an error: the caller treats that as a structural miss and moves on to the
// next strategy.
func ApplySchema(rawHTML string, schema *SelectorSchema) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	var records []map[string]any
	doc.Find(schema.BaseSelector).Each(func(_ int, base *goquery.Selection) {
		rec := make(map[string]any)
		for _, f := range schema.BaseFields {
			if v, ok := extractField(base, f); ok {
				rec[f.Name] = v
			}
		}
		for _, f := range schema.Fields {
			if v, ok := extractField(base, f); ok {
				rec[f.Name] = v
			}
		}
		if len(rec) > 0 {
			records = append(records, rec)
		}
	})

	if len(records) == 0 {
		return "", nil
	}

	out, err := json.Marshal(records)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// extractField evaluates one schema field within the given scope. The second
// return value is false when the field produced nothing.
func extractField(scope *goquery.Selection, f SchemaField) (any, bool) {
	sel := scope
	if f.Selector != "" {
		sel = scope.Find(f.Selector)
		if sel.Length() == 0 {
			return nil, false
		}
	}

	switch f.Type {
	case FieldText:
		text := strings.TrimSpace(sel.First().Text())
		return text, text != ""

	case FieldHTML:
		html, err := goquery.OuterHtml(sel.First())
		if err != nil {
			return nil, false
		}
		return html, strings.TrimSpace(html) != ""

	case FieldAttribute:
		val, ok := sel.First().Attr(f.Attribute)
		return val, ok && val != ""

	case FieldNested:
		nested := make(map[string]any)
		for _, sub := range f.Fields {
			if v, ok := extractField(sel.First(), sub); ok {
				nested[sub.Name] = v
			}
		}
		return nested, len(nested) > 0

	case FieldNestedList:
		var items []map[string]any
		sel.Each(func(_ int, el *goquery.Selection) {
			item := make(map[string]any)
			for _, sub := range f.Fields {
				if v, ok := extractField(el, sub); ok {
					item[sub.Name] = v
				}
			}
			if len(item) > 0 {
				items = append(items, item)
			}
		})
		return items, len(items) > 0

	case FieldList:
		var items []string
		sel.Each(func(_ int, el *goquery.Selection) {
			if text := strings.TrimSpace(el.Text()); text != "" {
				items = append(items, text)
			}
		})
		return items, len(items) > 0

	default:
		return nil, false
	}
}
