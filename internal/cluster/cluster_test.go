package cluster

import (
	"fmt"
	"testing"
	"time"

	"github.com/rushnews/newsstream/pkg/models"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mkStory(id, headline, source string, seen time.Time) models.Story {
	return models.Story{
		ID:          id,
		Headline:    headline,
		SourceName:  source,
		SourceType:  models.SourceTypeRSS,
		FirstSeenAt: seen,
	}
}

func TestClusterOverlappingHeadlines(t *testing.T) {
	stories := []models.Story{
		mkStory("1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("2", "Senate approves budget bill in close vote", "Fox News", base.Add(-time.Minute)),
		mkStory("3", "Local Team Wins Championship Game", "ABC News", base.Add(-2*time.Minute)),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(res.Clusters))
	}
	c := res.Clusters[0]
	if len(c.Stories) != 2 {
		t.Fatalf("budget stories should share a cluster, got %d members", len(c.Stories))
	}
	// The championship story is a singleton and must not surface anywhere.
	for _, s := range append(c.Stories, res.Other...) {
		if s.ID == "3" {
			t.Error("singleton story leaked into output")
		}
	}
}

func TestClusterTitleFromMostRecentMember(t *testing.T) {
	stories := []models.Story{
		mkStory("1", "Senate approves budget bill in close vote", "Fox News", base),
		mkStory("2", "Senate Passes New Budget Bill", "CNN", base.Add(time.Hour)),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(res.Clusters))
	}
	if res.Clusters[0].Title != "Senate Passes New Budget Bill" {
		t.Errorf("title should come from the most recent member, got %q", res.Clusters[0].Title)
	}
}

func TestClusterSingletonSuppression(t *testing.T) {
	stories := []models.Story{
		mkStory("1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("2", "Local Team Wins Championship Game", "ABC News", base),
		mkStory("3", "Mayor Opens Harbor Bridge Project", "NBC News", base),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 0 {
		t.Errorf("size-1 clusters must never appear, got %d", len(res.Clusters))
	}
	if len(res.Other) != 0 {
		t.Errorf("singletons must not be pooled into Other, got %d", len(res.Other))
	}
}

func TestClusterBreakingPartition(t *testing.T) {
	b := mkStory("b1", "Massive Earthquake Strikes Coast", "CNN", base)
	b.IsBreaking = true
	stories := []models.Story{
		b,
		mkStory("1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("2", "Senate approves budget bill in close vote", "Fox News", base),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Breaking) != 1 || res.Breaking[0].ID != "b1" {
		t.Fatalf("breaking story missing from breaking bucket: %+v", res.Breaking)
	}
	for _, c := range res.Clusters {
		for _, s := range c.Stories {
			if s.ID == "b1" {
				t.Error("breaking story must not be clustered")
			}
		}
	}
}

func TestClusterEmptyKeywordStoriesDropped(t *testing.T) {
	stories := []models.Story{
		mkStory("1", "!!!", "CNN", base),
		mkStory("2", "", "Fox News", base),
	}
	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 0 || len(res.Other) != 0 || len(res.Breaking) != 0 {
		t.Errorf("unclusterable stories must be dropped silently: %+v", res)
	}
}

func TestClusterDisplayDedup(t *testing.T) {
	stories := []models.Story{
		mkStory("1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("2", "Senate Passes New Budget Bill!", "cnn", base.Add(-time.Minute)),
		mkStory("3", "Senate approves budget bill in close vote", "Fox News", base.Add(-2*time.Minute)),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(res.Clusters))
	}
	if got := len(res.Clusters[0].Stories); got != 2 {
		t.Errorf("same headline + source must collapse to one entry, got %d", got)
	}
}

func TestClusterRankingSizeThenRecency(t *testing.T) {
	stories := []models.Story{
		// Three-member earthquake cluster, older.
		mkStory("q1", "Earthquake Damage Spreads Across Region", "CNN", base.Add(-3*time.Hour)),
		mkStory("q2", "Earthquake Damage Toll Rising Across Region", "Fox News", base.Add(-4*time.Hour)),
		mkStory("q3", "Region Earthquake Damage Worse Than Feared", "NBC News", base.Add(-5*time.Hour)),
		// Two-member budget cluster, newer.
		mkStory("b1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("b2", "Senate approves budget bill in close vote", "Fox News", base.Add(-time.Minute)),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(res.Clusters))
	}
	if len(res.Clusters[0].Stories) != 3 {
		t.Errorf("size dominates recency: bigger cluster should rank first")
	}
}

func TestClusterOverflowPoolsIntoOther(t *testing.T) {
	var stories []models.Story
	// Three two-member clusters on disjoint keyword pairs.
	pairs := [][2]string{
		{"Harbor Bridge Collapse Injures Dozens", "Harbor Bridge Collapse Shuts Port"},
		{"Wildfire Evacuation Orders Expand North", "Wildfire Evacuation Zones Expand Again"},
		{"Transit Strike Halts Morning Commute", "Transit Strike Enters Second Day Commute"},
	}
	for i, p := range pairs {
		ts := base.Add(-time.Duration(i) * time.Hour)
		stories = append(stories,
			mkStory(fmt.Sprintf("a%d", i), p[0], "CNN", ts),
			mkStory(fmt.Sprintf("b%d", i), p[1], "Fox News", ts.Add(-time.Minute)),
		)
	}

	res := Cluster(stories, 2)
	if len(res.Clusters) != 2 {
		t.Fatalf("expected 2 primary clusters, got %d", len(res.Clusters))
	}
	if len(res.Other) != 2 {
		t.Fatalf("displaced cluster members should pool into Other, got %d", len(res.Other))
	}
}

func TestClusterOrderSensitivity(t *testing.T) {
	// The second story overlaps the representative on exactly one keyword, so
	// it opens its own cluster even though it shares two keywords with a
	// later member. Locked-in behavior, not a bug.
	stories := []models.Story{
		mkStory("1", "Budget Vote Delayed Until Monday", "CNN", base),
		mkStory("2", "Senate Budget Negotiations Continue Tonight", "Fox News", base.Add(-time.Minute)),
		mkStory("3", "Budget Vote Negotiations Resume Monday", "NBC News", base.Add(-2*time.Minute)),
	}

	res := Cluster(stories, DefaultLimit)
	if len(res.Clusters) != 1 {
		t.Fatalf("expected 1 surviving cluster, got %d", len(res.Clusters))
	}
	got := res.Clusters[0].Stories
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Errorf("membership must follow representative-only comparison, got %+v", got)
	}
}

func TestBlocks(t *testing.T) {
	b := mkStory("b1", "Massive Earthquake Strikes Coast", "CNN", base)
	b.IsBreaking = true
	stories := []models.Story{
		b,
		mkStory("1", "Senate Passes New Budget Bill", "CNN", base),
		mkStory("2", "Senate approves budget bill in close vote", "Fox News", base.Add(-time.Minute)),
	}

	blocks := Blocks(Cluster(stories, DefaultLimit))
	if len(blocks) != 2 {
		t.Fatalf("expected breaking + one cluster, got %d blocks", len(blocks))
	}
	if blocks[0].Title != "Breaking News" {
		t.Errorf("breaking block must come first, got %q", blocks[0].Title)
	}
}
