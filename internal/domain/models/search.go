package models

// ResourceMatch is a fuzzy search hit over resource names
type ResourceMatch struct {
	Resource       Resource `json:"resource"`
	MatchedIndexes []int    `json:"matchedIndexes"`
	Score          int      `json:"score"`
}
