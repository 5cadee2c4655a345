package ratings

import (
	"math"
	"sort"
	"strings"

	"github.com/raxilor/ratehub/internal/domain/rating"
)

// Average returns the arithmetic mean of the given rating values rounded to
// one decimal place, or 0 for an empty set. Callers always pass the full
// ledger slice for a store; no running average is ever persisted, so the
// ledger stays the single source of truth.
func Average(values []int) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0

	for _, v := range values {
		sum += v
	}

	mean := float64(sum) / float64(len(values))

	return math.Round(mean*10) / 10
}

// Values extracts the raw rating values from a slice of reviews.
func Values(reviews []rating.StoreReview) []int {
	out := make([]int, 0, len(reviews))

	for _, r := range reviews {
		out = append(out, r.Value)
	}

	return out
}

// Sort keys accepted by SortReviews.
const (
	SortByDate   = "date"
	SortByRating = "rating"
	SortByName   = "name"
)

// SortReviews orders a review list in place. "date" is newest-first,
// "rating" highest-first, "name" alphabetical. Unknown keys fall back
// to the date ordering.
func SortReviews(reviews []rating.StoreReview, key string) {
	switch key {
	case SortByRating:
		sort.SliceStable(reviews, func(i, j int) bool {
			return reviews[i].Value > reviews[j].Value
		})
	case SortByName:
		sort.SliceStable(reviews, func(i, j int) bool {
			return strings.ToLower(reviews[i].ReviewerName) < strings.ToLower(reviews[j].ReviewerName)
		})
	default:
		sort.SliceStable(reviews, func(i, j int) bool {
			return reviews[i].SubmittedAt.After(reviews[j].SubmittedAt)
		})
	}
}
