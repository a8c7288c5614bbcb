// Package trends holds the pure trend dedup/merge and retention logic. The
// persistence flow around it is merge-then-replace: callers purge the stored
// set for a trend type and write the merge result whole.
package trends

import (
	"sort"

	"github.com/rushnews/newsstream/internal/headline"
	"github.com/rushnews/newsstream/pkg/models"
)

// CategoryForYou keeps a tighter cap than the regular tabs.
const CategoryForYou = "For You"

const (
	forYouCap  = 3
	defaultCap = 12
)

// Key is the dedup identity of a trend: normalized keyword plus category.
// Two trends with equal keys are the same logical trend regardless of id.
type Key struct {
	Keyword  string
	Category string
}

// KeyOf derives the identity key for a trend.
func KeyOf(t models.Trend) Key {
	return Key{
		Keyword:  headline.Normalize(t.Keyword),
		Category: t.Category,
	}
}

// Cap returns the retention cap for a category.
func Cap(category string) int {
	if category == CategoryForYou {
		return forYouCap
	}
	return defaultCap
}

// stampLayout pads the fraction to nine digits. RFC3339Nano trims trailing
// zeros, which would break the lexical-equals-chronological property on
// sub-second timestamps ("...00.1Z" sorts above "...00.15Z").
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// stamp returns the comparison timestamp of a trend as a fixed-width UTC
// string, falling back to updated_at when first_seen_at is unset.
func stamp(t models.Trend) string {
	if !t.FirstSeenAt.IsZero() {
		return t.FirstSeenAt.UTC().Format(stampLayout)
	}
	if !t.UpdatedAt.IsZero() {
		return t.UpdatedAt.UTC().Format(stampLayout)
	}
	return ""
}

// Merge combines the stored trend set with a freshly ingested batch.
//
// The concatenated sequence (existing first, incoming second) is walked in
// order building a map keyed by identity. A later record displaces the
// incumbent only when its timestamp is strictly greater; an exact tie keeps
// the incumbent, so incoming never wins a tied collision against existing.
// Survivors are then grouped per category, sorted most-recent-first and
// truncated to the category cap.
func Merge(existing, incoming []models.Trend) []models.Trend {
	combined := make([]models.Trend, 0, len(existing)+len(incoming))
	combined = append(combined, existing...)
	combined = append(combined, incoming...)

	survivors := make(map[Key]models.Trend, len(combined))
	keyOrder := make([]Key, 0, len(combined))

	for _, t := range combined {
		k := KeyOf(t)
		cur, seen := survivors[k]
		if !seen {
			survivors[k] = t
			keyOrder = append(keyOrder, k)
			continue
		}
		if stamp(t) > stamp(cur) {
			survivors[k] = t
		}
	}

	// Partition by category, preserving first-appearance order of categories
	// so the result is deterministic.
	perCategory := make(map[string][]models.Trend)
	var catOrder []string
	for _, k := range keyOrder {
		t := survivors[k]
		if _, ok := perCategory[t.Category]; !ok {
			catOrder = append(catOrder, t.Category)
		}
		perCategory[t.Category] = append(perCategory[t.Category], t)
	}

	var out []models.Trend
	for _, cat := range catOrder {
		items := perCategory[cat]
		sort.SliceStable(items, func(i, j int) bool {
			return stamp(items[i]) > stamp(items[j])
		})
		if c := Cap(cat); len(items) > c {
			items = items[:c]
		}
		out = append(out, items...)
	}
	return out
}

// Purge splits all records of one trend type into the keepLatest
// most-recently-seen records and the rest. keepLatest 0 deletes everything.
func Purge(records []models.Trend, keepLatest int) (kept, deleted []models.Trend) {
	sorted := make([]models.Trend, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return stamp(sorted[i]) > stamp(sorted[j])
	})

	if keepLatest < 0 {
		keepLatest = 0
	}
	if keepLatest > len(sorted) {
		keepLatest = len(sorted)
	}
	return sorted[:keepLatest], sorted[keepLatest:]
}
