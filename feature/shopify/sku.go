package shopify

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeSKU produces the comparison key for SKU matching: Unicode
// compatibility composition (NFKC), surrounding whitespace trimmed, and
// case folded. The normalized form is only ever compared, never sent to
// the API; the shop receives the SKU exactly as configured on the part.
//
// Two SKUs that differ only by case or composed-vs-decomposed form are the
// same key. A prefix or substring relation never is.
func NormalizeSKU(sku string) string {
	return cases.Fold().String(strings.TrimSpace(norm.NFKC.String(sku)))
}
