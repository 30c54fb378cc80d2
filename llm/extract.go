package llm

import (
	"context"
	"log/slog"
)

// productInstruction is the schema-constrained extraction prompt. It names
// every target field, gives one worked example, and forbids explanatory
// prose. That is a contract with the model, not a guarantee — the normalizer
// downstream treats every reply as hostile input.
const productInstruction = `
Extract all products from the webpage content.
For each product, extract these fields:
- title: The product name
- weight: Weight or quantity information
- price: Price with currency symbol
- badge: Any promotional badge (if available)
- reviews: Review information (if available)

Return a JSON array where each item is a product object.
Do not include any explanation or commentary, only the JSON array.
Example:
[
  {
    "title": "Product Name",
    "weight": "400g",
    "price": "₹50",
    "badge": null,
    "reviews": null
  }
]
`

// ExtractProducts submits page markdown to the completion service and returns
// the raw completion text for each chunk, in input order.
//
// Oversized input is split into overlapping chunks (config thresholds) and
// each chunk is submitted independently; the adapter never retries — a rate
// limit or failure on any chunk aborts the whole call so the retry controller
// can schedule the backoff.
func (c *Client) ExtractProducts(ctx context.Context, markdown string) ([]string, error) {
	chunks := Chunk(markdown, c.cfg.ChunkTokenThreshold, c.cfg.OverlapRate)
	if len(chunks) == 0 {
		return nil, nil
	}
	slog.Info("submitting content to LLM", "chunks", len(chunks), "model", c.cfg.Model)

	responses := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		text, err := c.Complete(ctx, CompletionRequest{
			Messages: []Message{
				{Role: "user", Content: chunk + "\n" + productInstruction},
			},
			Temperature: c.cfg.Temperature,
			MaxTokens:   c.cfg.MaxTokens,
		})
		if err != nil {
			return nil, err
		}
		slog.Debug("chunk completed", "chunk", i, "responseBytes", len(text))
		responses = append(responses, text)
	}
	return responses, nil
}
