package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVariants(w http.ResponseWriter, variants ...Variant) {
	_ = json.NewEncoder(w).Encode(map[string]any{"variants": variants})
}

func TestFindVariantBySKU_ExactMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ABC-123", r.URL.Query().Get("sku"))
		writeVariants(w,
			Variant{ID: 1, SKU: "ABC-123x", InventoryItemID: 11},
			Variant{ID: 2, SKU: "ABC-123", InventoryItemID: 22},
		)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{})

	variant, err := c.FindVariantBySKU(context.Background(), "ABC-123")
	require.NoError(t, err)
	assert.Equal(t, int64(2), variant.ID)
	assert.Equal(t, int64(22), variant.InventoryItemID)
}

func TestFindVariantBySKU_MatchIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeVariants(w, Variant{ID: 7, SKU: "  AbC-123 ", InventoryItemID: 70})
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{})

	// Case and surrounding whitespace differ; the match is still exact
	// under normalization.
	variant, err := c.FindVariantBySKU(context.Background(), "abc-123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), variant.ID)
}

func TestFindVariantBySKU_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeVariants(w)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{})

	_, err := c.FindVariantBySKU(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestFindVariantBySKU_EmptySKU(t *testing.T) {
	c, _ := newTestClient("http://unused", Config{})

	_, err := c.FindVariantBySKU(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestFindVariantBySKU_FollowsPagination(t *testing.T) {
	var pagesSeen []string
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page_info")
		pagesSeen = append(pagesSeen, page)
		switch page {
		case "":
			w.Header().Set("Link", fmt.Sprintf(`<%s/variants.json?page_info=p2>; rel="next"`, srv.URL))
			writeVariants(w, Variant{ID: 1, SKU: "other-1"})
		case "p2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/variants.json?page_info=p1>; rel="previous", <%s/variants.json?page_info=p3>; rel="next"`, srv.URL, srv.URL))
			writeVariants(w, Variant{ID: 2, SKU: "other-2"})
		case "p3":
			writeVariants(w, Variant{ID: 3, SKU: "WANTED", InventoryItemID: 33})
		default:
			t.Fatalf("unexpected page %q", page)
		}
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{})

	variant, err := c.FindVariantBySKU(context.Background(), "WANTED")
	require.NoError(t, err)
	assert.Equal(t, int64(3), variant.ID)
	assert.Equal(t, []string{"", "p2", "p3"}, pagesSeen)
}

func TestFindVariantBySKU_PageBound(t *testing.T) {
	var calls int
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		// Always advertise another page; the client must stop on its own.
		w.Header().Set("Link", fmt.Sprintf(`<%s/variants.json?page_info=p%d>; rel="next"`, srv.URL, calls))
		writeVariants(w, Variant{ID: int64(calls), SKU: "other"})
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{})

	_, err := c.FindVariantBySKU(context.Background(), "WANTED")
	assert.ErrorIs(t, err, ErrVariantNotFound)
	assert.Equal(t, maxVariantPages, calls)
}

func graphqlPayload(nodes ...map[string]any) map[string]any {
	edges := make([]map[string]any, 0, len(nodes))
	for _, n := range nodes {
		edges = append(edges, map[string]any{"node": n})
	}
	return map[string]any{
		"data": map[string]any{
			"productVariants": map[string]any{"edges": edges},
		},
	}
}

func TestFindVariantBySKU_GraphQLFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(graphqlPayload(map[string]any{
				"id":            "gid://shopify/ProductVariant/42",
				"sku":           "ABC-123",
				"title":         "Default",
				"inventoryItem": map[string]any{"id": "gid://shopify/InventoryItem/420"},
				"product":       map[string]any{"id": "gid://shopify/Product/4200"},
			}))
			return
		}
		writeVariants(w)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{UseGraphQL: true})

	variant, err := c.FindVariantBySKU(context.Background(), "ABC-123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), variant.ID)
	assert.Equal(t, int64(420), variant.InventoryItemID)
	assert.Equal(t, int64(4200), variant.ProductID)
}

func TestFindVariantBySKU_GraphQLRejectsFuzzyMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// The search is fuzzy; the client must still demand an exact
			// SKU match.
			_ = json.NewEncoder(w).Encode(graphqlPayload(map[string]any{
				"id":            "gid://shopify/ProductVariant/42",
				"sku":           "ABC-123-EXTENDED",
				"inventoryItem": map[string]any{"id": "gid://shopify/InventoryItem/420"},
				"product":       map[string]any{"id": "gid://shopify/Product/4200"},
			}))
			return
		}
		writeVariants(w)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{UseGraphQL: true})

	_, err := c.FindVariantBySKU(context.Background(), "ABC-123")
	assert.ErrorIs(t, err, ErrVariantNotFound)
}

func TestFindVariantBySKU_FallbackAfterRESTError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_ = json.NewEncoder(w).Encode(graphqlPayload(map[string]any{
				"id":            "gid://shopify/ProductVariant/5",
				"sku":           "ABC-123",
				"inventoryItem": map[string]any{"id": "gid://shopify/InventoryItem/50"},
				"product":       map[string]any{"id": "gid://shopify/Product/500"},
			}))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{UseGraphQL: true, MaxAttempts: 2})

	variant, err := c.FindVariantBySKU(context.Background(), "ABC-123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), variant.ID)
}

func TestFindVariantBySKU_RESTErrorPropagatesWithoutFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, _ := newTestClient(srv.URL, Config{MaxAttempts: 2})

	_, err := c.FindVariantBySKU(context.Background(), "ABC-123")
	var transient *TransientError
	assert.ErrorAs(t, err, &transient)
}

func TestNumericGID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"gid://shopify/ProductVariant/42", 42},
		{"gid://shopify/InventoryItem/123456789", 123456789},
		{"42", 42},
		{"gid://shopify/ProductVariant/not-a-number", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, numericGID(tt.in), tt.in)
	}
}

func TestNormalizeSKU(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"case folding", "abc-123", "ABC-123"},
		{"whitespace", "  abc-123  ", "abc-123"},
		{"fullwidth digits", "ＡＢＣ１２３", "ABC123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, NormalizeSKU(tt.a), NormalizeSKU(tt.b))
		})
	}

	assert.Equal(t, "", NormalizeSKU("   "))
}
