package extract

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Field types understood by the structural extractor.
const (
	FieldText       = "text"
	FieldHTML       = "html"
	FieldAttribute  = "attribute"
	FieldNested     = "nested"
	FieldNestedList = "nested_list"
	FieldList       = "list"
)

// SchemaField describes one field of a selector schema.
type SchemaField struct {
	Name      string        `json:"name"`
	Selector  string        `json:"selector,omitempty"`
	Type      string        `json:"type"`
	Attribute string        `json:"attribute,omitempty"`
	Fields    []SchemaField `json:"fields,omitempty"`
}

// SelectorSchema is a declarative CSS extraction schema: a base selector
// scoping repeated containers, and a field list extracted from each match.
type SelectorSchema struct {
	Name         string        `json:"name"`
	BaseSelector string        `json:"baseSelector"`
	BaseFields   []SchemaField `json:"baseFields,omitempty"`
	Fields       []SchemaField `json:"fields"`
}

// Validate checks that every selector in the schema parses as CSS.
func (s *SelectorSchema) Validate() error {
	if _, err := cascadia.Parse(s.BaseSelector); err != nil {
		return fmt.Errorf("schema %q: base selector %q: %w", s.Name, s.BaseSelector, err)
	}
	return validateFields(s.Name, s.Fields)
}

func validateFields(schemaName string, fields []SchemaField) error {
	for _, f := range fields {
		if f.Selector != "" {
			if _, err := cascadia.Parse(f.Selector); err != nil {
				return fmt.Errorf("schema %q: field %q selector %q: %w", schemaName, f.Name, f.Selector, err)
			}
		}
		if len(f.Fields) > 0 {
			if err := validateFields(schemaName, f.Fields); err != nil {
				return err
			}
		}
	}
	return nil
}

// ArticleSchema targets conventional article pages: an <article> container
// with an entry title and a body container.
var ArticleSchema = &SelectorSchema{
	Name:         "Article Content",
	BaseSelector: "article",
	Fields: []SchemaField{
		{Name: "title", Selector: "h1.entry-title", Type: FieldText},
		{Name: "content", Selector: ".td-container", Type: FieldHTML},
	},
}

// CatalogSchema is the alternate schema for e-commerce category pages that
// don't use the article tag: repeated product cards inside category sections.
var CatalogSchema = &SelectorSchema{
	Name:         "E-commerce Product Catalog",
	BaseSelector: "div.category",
	BaseFields: []SchemaField{
		{Name: "data_cat_id", Type: FieldAttribute, Attribute: "data-cat-id"},
	},
	Fields: []SchemaField{
		{Name: "category_name", Selector: "h2.category-name", Type: FieldText},
		{
			Name:     "products",
			Selector: ".product-item",
			Type:     FieldNestedList,
			Fields: []SchemaField{
				{Name: "name", Selector: "h3.product-name", Type: FieldText},
				{Name: "price", Selector: "p.product-price", Type: FieldText},
				{
					Name:     "details",
					Selector: "div.product-details",
					Type:     FieldNested,
					Fields: []SchemaField{
						{Name: "brand", Selector: "span.brand", Type: FieldText},
						{Name: "model", Selector: "span.model", Type: FieldText},
					},
				},
				{
					Name:     "features",
					Selector: "ul.product-features li",
					Type:     FieldList,
					Fields: []SchemaField{
						{Name: "feature", Type: FieldText},
					},
				},
				{
					Name:     "reviews",
					Selector: "div.review",
					Type:     FieldNestedList,
					Fields: []SchemaField{
						{Name: "reviewer", Selector: "span.reviewer", Type: FieldText},
						{Name: "rating", Selector: "span.rating", Type: FieldText},
						{Name: "comment", Selector: "p.review-text", Type: FieldText},
					},
				},
			},
		},
	},
}
