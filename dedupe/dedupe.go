// Package dedupe collapses structurally identical product records.
package dedupe

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/shelfgrab/shelfgrab/models"
)

// Records removes exact duplicates from the batch: two records are duplicates
// only when every field matches byte-for-byte. The first occurrence wins and
// input order is otherwise preserved. Running the pass twice on its own
// output is a no-op.
//
// Records differing only in whitespace stay distinct on purpose.
func Records(in []models.ProductRecord) []models.ProductRecord {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.ProductRecord, 0, len(in))

	for _, rec := range in {
		k := key(rec)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// key builds a canonical hash over all fields. A separator byte between
// fields keeps ("ab","c") distinct from ("a","bc").
func key(rec models.ProductRecord) string {
	h := sha256.New()
	for _, field := range []string{rec.Title, rec.Weight, rec.Price, rec.Badge, rec.Reviews} {
		h.Write([]byte(field))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
