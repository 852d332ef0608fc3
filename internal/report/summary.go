// Package report aggregates per-row results into a batch summary.
package report

import (
	"sort"

	"github.com/ppiankov/assertlens/internal/model"
)

// Summarize counts categories and comment statuses. Categories are ordered by
// descending count, ties broken by category priority; categories with no
// rows are omitted. Statuses follow model.CommentKinds order, zeros omitted.
func Summarize(results []model.ClassificationResult) model.Summary {
	categoryCounts := make(map[model.Category]int)
	statusCounts := make(map[model.CommentKind]int)

	for _, r := range results {
		categoryCounts[r.Category]++
		statusCounts[r.CommentStatus.Kind]++
	}

	summary := model.Summary{
		Total:     len(results),
		Commented: statusCounts[model.CommentPresent],
	}

	for cat, n := range categoryCounts {
		summary.Categories = append(summary.Categories, model.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		return a.Category < b.Category
	})

	for _, kind := range model.CommentKinds() {
		if n := statusCounts[kind]; n > 0 {
			summary.Statuses = append(summary.Statuses, model.StatusCount{Kind: kind, Count: n})
		}
	}

	return summary
}
