package search

import (
	"devspace/internal/domain/models"

	"github.com/sahilm/fuzzy"
)

// resourceNames implements fuzzy.Source for a resource slice.
type resourceNames []models.Resource

func (rn resourceNames) String(i int) string {
	return rn[i].Name
}

func (rn resourceNames) Len() int {
	return len(rn)
}

// FuzzySearchResources ranks resources by fuzzy match of query against their
// names. Results are sorted by score (best first) and capped at limit when
// limit > 0. An empty query matches nothing.
func FuzzySearchResources(resources []models.Resource, query string, limit int) []models.ResourceMatch {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, resourceNames(resources))
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.ResourceMatch, len(matches))
	for i, m := range matches {
		results[i] = models.ResourceMatch{
			Resource:       resources[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
