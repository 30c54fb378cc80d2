package models

// WorkItem is one (identifier, URL) unit of scraping work, loaded from a
// single row of the input workbook. Identifiers need not be unique; results
// for a repeated identifier overwrite earlier ones.
type WorkItem struct {
	ID  string
	URL string
}

// ArticleRecord is the intermediate result of one extraction attempt in
// article mode. Both fields empty means the attempt produced nothing.
type ArticleRecord struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Empty reports whether the record carries no data at all.
func (a ArticleRecord) Empty() bool {
	return a.Title == "" && a.Content == ""
}

// ProductRecord is the final validated product schema. Title and Price are
// always non-empty after validation; the remaining fields serialize as empty
// strings when absent, never "null".
type ProductRecord struct {
	Title   string `json:"title"`
	Weight  string `json:"weight,omitempty"`
	Price   string `json:"price"`
	Badge   string `json:"badge,omitempty"`
	Reviews string `json:"reviews,omitempty"`
}

// ProductColumns is the fixed CSV column order for product exports.
var ProductColumns = []string{"title", "weight", "price", "badge", "reviews"}

// CatalogColumns is the extended article-variant column order, carrying the
// description and discount fields some category pages expose.
var CatalogColumns = []string{"title", "weight", "description", "discount", "price", "badge", "reviews"}

// CatalogRecord is the extended product schema for the catalog CSV variant.
type CatalogRecord struct {
	Title       string `json:"title"`
	Weight      string `json:"weight,omitempty"`
	Description string `json:"description,omitempty"`
	Discount    string `json:"discount,omitempty"`
	Price       string `json:"price"`
	Badge       string `json:"badge,omitempty"`
	Reviews     string `json:"reviews,omitempty"`
}

// ErrorLogEntry records one rejected candidate for offline inspection.
// Index is the candidate's position in the original batch.
type ErrorLogEntry struct {
	Index   int            `json:"index"`
	RawItem map[string]any `json:"raw_item"`
	Error   string         `json:"error"`
}
