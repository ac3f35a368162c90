package shopify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// maxVariantPages bounds Link-header pagination so a misbehaving shop
	// can never trap a run in an endless page loop.
	maxVariantPages = 20

	// variantPageSize is the REST listing page size (250 is the API max).
	variantPageSize = 250

	// graphqlFirst bounds the fallback result count.
	graphqlFirst = 50
)

// FindVariantBySKU finds the catalog entry whose SKU matches the query
// exactly under NormalizeSKU. The REST listing endpoint is the primary
// strategy; when it finds nothing (or errors) and the GraphQL fallback is
// enabled, a structured productVariants query is tried. A fuzzy or partial
// match is never returned: the result is the entry or ErrVariantNotFound.
func (c *Client) FindVariantBySKU(ctx context.Context, sku string) (*Variant, error) {
	key := NormalizeSKU(sku)
	if key == "" {
		return nil, ErrVariantNotFound
	}

	variant, restErr := c.findVariantREST(ctx, sku, key)
	if restErr == nil && variant != nil {
		return variant, nil
	}

	if c.useGraphQL {
		gqlVariant, gqlErr := c.findVariantGraphQL(ctx, sku, key)
		if gqlErr == nil && gqlVariant != nil {
			return gqlVariant, nil
		}
		if gqlErr != nil {
			// The fallback is best effort: when the primary strategy
			// completed cleanly its empty result stands, otherwise the
			// primary failure is the one worth reporting.
			c.log.Warn("shopify graphql fallback failed",
				zap.String("sku", sku),
				zap.Error(gqlErr),
			)
		}
	}

	if restErr != nil {
		return nil, restErr
	}
	return nil, ErrVariantNotFound
}

// findVariantREST pages through GET /variants.json?sku=... following the
// rel="next" Link header, up to maxVariantPages pages.
func (c *Client) findVariantREST(ctx context.Context, sku, key string) (*Variant, error) {
	pageURL := c.restURL("variants.json")
	query := url.Values{
		"sku":   {sku},
		"limit": {strconv.Itoa(variantPageSize)},
	}

	for page := 0; page < maxVariantPages; page++ {
		resp, err := c.do(ctx, http.MethodGet, pageURL, query, nil)
		if err != nil {
			return nil, err
		}

		var payload struct {
			Variants []Variant `json:"variants"`
		}
		if err := resp.decode(&payload); err != nil {
			return nil, err
		}

		for i := range payload.Variants {
			if NormalizeSKU(payload.Variants[i].SKU) == key {
				return &payload.Variants[i], nil
			}
		}

		next := nextPageLink(resp.header)
		if next == "" {
			return nil, nil
		}
		// The page_info URL carries its own query string.
		pageURL = next
		query = nil
	}

	c.log.Warn("shopify variant listing exceeded page bound",
		zap.String("sku", sku),
		zap.Int("pages", maxVariantPages),
	)
	return nil, nil
}

const productVariantsQuery = `
query($q: String!) {
  productVariants(first: %d, query: $q) {
    edges {
      node {
        id
        sku
        title
        inventoryItem { id }
        product { id }
      }
    }
  }
}`

// findVariantGraphQL runs the structured catalog query fallback. Global ids
// (gid://shopify/...) are normalized to the numeric representation the REST
// strategy produces, so both strategies yield interchangeable Variants.
func (c *Client) findVariantGraphQL(ctx context.Context, sku, key string) (*Variant, error) {
	body := map[string]any{
		"query": strings.Replace(productVariantsQuery, "%d", strconv.Itoa(graphqlFirst), 1),
		"variables": map[string]any{
			"q": "sku:" + sku,
		},
	}

	resp, err := c.do(ctx, http.MethodPost, c.graphqlURL(), nil, body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data struct {
			ProductVariants struct {
				Edges []struct {
					Node struct {
						ID            string `json:"id"`
						SKU           string `json:"sku"`
						Title         string `json:"title"`
						InventoryItem struct {
							ID string `json:"id"`
						} `json:"inventoryItem"`
						Product struct {
							ID string `json:"id"`
						} `json:"product"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"productVariants"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := resp.decode(&payload); err != nil {
		return nil, err
	}
	if len(payload.Errors) > 0 {
		return nil, errors.New("shopify: graphql query failed: " + payload.Errors[0].Message)
	}

	for _, edge := range payload.Data.ProductVariants.Edges {
		node := edge.Node
		if NormalizeSKU(node.SKU) != key {
			continue
		}
		return &Variant{
			ID:              numericGID(node.ID),
			ProductID:       numericGID(node.Product.ID),
			Title:           node.Title,
			SKU:             node.SKU,
			InventoryItemID: numericGID(node.InventoryItem.ID),
		}, nil
	}
	return nil, nil
}

// numericGID extracts the trailing numeric id from a GraphQL global id such
// as "gid://shopify/ProductVariant/42". Plain numeric strings pass through.
func numericGID(gid string) int64 {
	s := gid
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		s = s[idx+1:]
	}
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
