package confradar

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embeddingAPIKey  string
	embeddingBaseURL string
	embeddingModel   string
	embeddingDims    int

	rerankAPIKey  string
	rerankBaseURL string
	rerankModel   string
	rerankBudget  int

	scrapeBaseURL  string
	scrapeAPIKey   string
	keywordBaseURL string
	keywordAPIKey  string

	minURLs   int
	enableAug bool

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedding configures the query embedder endpoint. Required for search.
func WithEmbedding(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingAPIKey = apiKey
		c.embeddingBaseURL = baseURL
		c.embeddingModel = model
		c.embeddingDims = dimensions
	})
}

// WithRerank enables the cross-encoder. Without it results keep the hybrid
// ordering.
func WithRerank(apiKey, baseURL, model string, budgetTokens int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rerankAPIKey = apiKey
		c.rerankBaseURL = baseURL
		c.rerankModel = model
		c.rerankBudget = budgetTokens
	})
}

// WithProviders configures the discovery provider endpoints. Required for
// Discover.
func WithProviders(scrapeBaseURL, scrapeAPIKey, keywordBaseURL, keywordAPIKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.scrapeBaseURL = scrapeBaseURL
		c.scrapeAPIKey = scrapeAPIKey
		c.keywordBaseURL = keywordBaseURL
		c.keywordAPIKey = keywordAPIKey
	})
}

// WithDiscoveryTuning overrides the minimum URL yield and the augmentation
// gate.
func WithDiscoveryTuning(minURLs int, enableAug bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.minURLs = minURLs
		c.enableAug = enableAug
	})
}

// WithLogger sets the client logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = logger
	})
}
