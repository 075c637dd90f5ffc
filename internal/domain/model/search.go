package model

// SearchResult is a single match found in a vault note. Line and Col are
// zero-based; Context carries the whitespace-trimmed matching line.
type SearchResult struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Text    string `json:"text"`
	Context string `json:"context,omitempty"`
}
