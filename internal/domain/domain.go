package domain

// KeyPrefix namespaces every Redis key written by confradar.
const KeyPrefix = "confradar:"

// EmbeddingResult is an embedding vector plus provider-reported token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Document is one indexed event-page document as stored in the search index.
type Document struct {
	ID        string
	URL       string
	Title     string
	Content   string
	Country   string // ISO-3166-1 alpha-2, lower case; empty when un-geotagged
	Language  string
	Published int64 // unix seconds, 0 when unknown
	Authority float64
	SourceTLD string
}
