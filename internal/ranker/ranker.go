// Package ranker turns raw dissimilarity scores from the vector search into
// bounded, user-facing match percentages.
package ranker

import "resumeai/internal/models"

// RankedCandidate is a read-only view of a persisted candidate annotated for
// display. It is built fresh per search response and never persisted.
type RankedCandidate struct {
	models.Candidate
	Distance        float64 `json:"distance"`
	MatchPercentage float64 `json:"match_percentage"`
}

// MatchPercentage maps a non-negative distance (lower = more similar) into
// (0, 100]. It is strictly decreasing in distance and equals 100 only at
// distance zero.
func MatchPercentage(distance float64) float64 {
	if distance < 0 {
		distance = 0
	}
	return 100 * (1 / (1 + distance))
}

// Annotate builds the ranked view for a sequence of candidates and their
// distances, preserving order. Ordering is the search engine's job; this is a
// display transform only. Mismatched lengths truncate to the shorter side: a
// candidate with no distance must not surface as a fabricated perfect match.
func Annotate(candidates []models.Candidate, distances []float64) []RankedCandidate {
	n := len(candidates)
	if len(distances) < n {
		n = len(distances)
	}

	ranked := make([]RankedCandidate, 0, n)
	for i := 0; i < n; i++ {
		ranked = append(ranked, RankedCandidate{
			Candidate:       candidates[i],
			Distance:        distances[i],
			MatchPercentage: MatchPercentage(distances[i]),
		})
	}
	return ranked
}
