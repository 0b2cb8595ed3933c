package models

// Chunk is a sentence-aligned slice of a processed document.
// Timestamp mirrors Index and is only used as a relative ordering key.
type Chunk struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	IsQuote   bool   `json:"is_quote"`
	Timestamp int    `json:"timestamp"`
}
