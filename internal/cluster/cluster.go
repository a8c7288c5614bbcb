// Package cluster groups a recency-ordered story batch into topic clusters by
// headline keyword overlap. The pass is greedy and compares each story only
// against the first-added member of every open cluster, so membership is
// order-sensitive and representative-sensitive. That trade-off is intentional:
// it keeps the scan at O(n*k) and must not be replaced with pairwise or graph
// clustering.
package cluster

import (
	"sort"
	"time"

	"github.com/rushnews/newsstream/internal/headline"
	"github.com/rushnews/newsstream/pkg/models"
)

// minOverlap is how many keywords a story must share with a cluster
// representative to join that cluster.
const minOverlap = 2

// DefaultLimit is the number of primary clusters returned when the caller
// does not choose one.
const DefaultLimit = 10

// MaxLimit bounds caller-supplied cluster limits.
const MaxLimit = 20

// Result is the display-ready outcome of one clustering pass.
// It is derived per request and never persisted.
type Result struct {
	Breaking []models.StorySummary
	Clusters []models.TopicBlock
	Other    []models.StorySummary
}

// group is an open cluster during the scan. The representative is the first
// story added; its keyword set anchors all membership tests.
type group struct {
	repKeywords map[string]struct{}
	stories     []models.Story
}

// Cluster partitions stories (already ordered most-recent-first) into a
// breaking bucket, ranked keyword clusters and an overflow pool.
//
// Non-breaking stories are scanned in input order: a story joins the first
// cluster whose representative shares at least two keywords with it, else it
// opens a new cluster. Stories with an empty keyword set are dropped.
// Single-member clusters are discarded, survivors are ranked by size then by
// most-recent member, the top limit become primary clusters and every member
// of the rest pools into Other in original relative order. Each output bucket
// is deduplicated by normalized headline + source.
func Cluster(stories []models.Story, limit int) Result {
	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	var breaking, rest []models.Story
	for _, s := range stories {
		if s.IsBreaking {
			breaking = append(breaking, s)
		} else {
			rest = append(rest, s)
		}
	}

	var groups []*group
	for _, s := range rest {
		kw := headline.Keywords(s.Headline)
		if len(kw) == 0 {
			continue
		}

		placed := false
		for _, g := range groups {
			if headline.Overlap(kw, g.repKeywords) >= minOverlap {
				g.stories = append(g.stories, s)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, &group{repKeywords: kw, stories: []models.Story{s}})
		}
	}

	// Singletons are noise, not topics.
	survivors := groups[:0]
	for _, g := range groups {
		if len(g.stories) > 1 {
			survivors = append(survivors, g)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		si, sj := len(survivors[i].stories), len(survivors[j].stories)
		if si != sj {
			return si > sj
		}
		return latestSeen(survivors[i].stories).After(latestSeen(survivors[j].stories))
	})

	var res Result

	sort.SliceStable(breaking, func(i, j int) bool {
		return breaking[i].FirstSeenAt.After(breaking[j].FirstSeenAt)
	})
	res.Breaking = dedupSummaries(breaking)

	top := survivors
	if len(top) > limit {
		top = survivors[:limit]
	}
	for _, g := range top {
		title, keywords := titleOf(g.stories)
		res.Clusters = append(res.Clusters, models.TopicBlock{
			Title:    title,
			Keywords: keywords,
			Stories:  dedupSummaries(g.stories),
		})
	}

	var overflow []models.Story
	for _, g := range survivors[len(top):] {
		overflow = append(overflow, g.stories...)
	}
	res.Other = dedupSummaries(overflow)

	return res
}

// Blocks renders a result as the dashboard block list: Breaking News first
// when present, then the clusters, then Other News.
func Blocks(res Result) []models.TopicBlock {
	blocks := make([]models.TopicBlock, 0, len(res.Clusters)+2)
	if len(res.Breaking) > 0 {
		blocks = append(blocks, models.TopicBlock{
			Title:    "Breaking News",
			Keywords: []string{},
			Stories:  res.Breaking,
		})
	}
	blocks = append(blocks, res.Clusters...)
	if len(res.Other) > 0 {
		blocks = append(blocks, models.TopicBlock{
			Title:    "Other News",
			Keywords: []string{},
			Stories:  res.Other,
		})
	}
	return blocks
}

// titleOf picks the headline of the most recently first-seen member as the
// cluster title; the cluster keywords are that headline's keyword set.
func titleOf(stories []models.Story) (string, []string) {
	if len(stories) == 0 {
		return "Trending Topic", nil
	}
	mostRecent := stories[0]
	for _, s := range stories[1:] {
		if s.FirstSeenAt.After(mostRecent.FirstSeenAt) {
			mostRecent = s
		}
	}

	title := mostRecent.Headline
	if title == "" {
		title = "Trending Topic"
	}
	kwSet := headline.Keywords(title)
	keywords := make([]string, 0, len(kwSet))
	for k := range kwSet {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)
	return title, keywords
}

// latestSeen is the first_seen_at of a cluster's most recent member.
func latestSeen(stories []models.Story) (latest time.Time) {
	for _, s := range stories {
		if s.FirstSeenAt.After(latest) {
			latest = s.FirstSeenAt
		}
	}
	return latest
}

// dedupSummaries collapses stories sharing a display key, first occurrence
// winning, and projects them to the display shape.
func dedupSummaries(stories []models.Story) []models.StorySummary {
	seen := make(map[string]struct{}, len(stories))
	var out []models.StorySummary
	for _, s := range stories {
		key := headline.DisplayKey(s.Headline, s.SourceName)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.StorySummary{
			ID:          s.ID,
			Headline:    s.Headline,
			SourceName:  s.SourceName,
			FirstSeenAt: s.FirstSeenAt,
		})
	}
	return out
}
