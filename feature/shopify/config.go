package shopify

// Config holds configuration for the Shopify Admin API client.
type Config struct {
	// Domain is the shop domain, e.g. my-shop.myshopify.com (without scheme).
	Domain string `mapstructure:"domain" default:""`
	// Token is the Admin API access token.
	Token string `mapstructure:"token" default:""`
	// APIVersion is the versioned Admin API path segment.
	APIVersion string `mapstructure:"api_version" default:"2024-10"`
	// UseGraphQL enables the GraphQL fallback for SKU lookups when the
	// REST strategy finds no exact match or errors.
	UseGraphQL bool `mapstructure:"use_graphql" default:"false"`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"20"`
	// MaxAttempts caps retries for transient failures (429, 5xx, transport).
	MaxAttempts int `mapstructure:"max_attempts" default:"5"`
	// CallLimitHighWater is the used-call count in the rate-limit bucket at
	// which the client starts pausing preemptively (bucket capacity is 40
	// for standard shops).
	CallLimitHighWater int `mapstructure:"call_limit_high_water" default:"35"`
	// CallLimitPauseMs is the pause applied once the high-water mark is hit.
	CallLimitPauseMs int `mapstructure:"call_limit_pause_ms" default:"600"`
}
