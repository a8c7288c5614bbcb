package trends

import (
	"fmt"
	"testing"
	"time"

	"github.com/rushnews/newsstream/pkg/models"
)

func mkTrend(keyword, category string, seen time.Time) models.Trend {
	return models.Trend{
		ID:          fmt.Sprintf("%s-%s-%d", keyword, category, seen.Unix()),
		Keyword:     keyword,
		Category:    category,
		TrendType:   models.TrendTypeXNews,
		FirstSeenAt: seen,
		UpdatedAt:   seen,
	}
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestKeyOfNormalizesKeyword(t *testing.T) {
	a := KeyOf(models.Trend{Keyword: "Election Results!", Category: "News"})
	b := KeyOf(models.Trend{Keyword: "election   results", Category: "News"})
	if a != b {
		t.Errorf("keys should collide: %v vs %v", a, b)
	}
	c := KeyOf(models.Trend{Keyword: "Election Results", Category: "Sports"})
	if a == c {
		t.Error("different categories must not collide")
	}
}

func TestMergeDedupInvariant(t *testing.T) {
	existing := []models.Trend{
		mkTrend("Election Results", "News", t0),
		mkTrend("Storm Update", "Sports", t0),
	}
	incoming := []models.Trend{
		mkTrend("election results", "News", t0.Add(time.Hour)),
		mkTrend("Storm Update", "Sports", t0.Add(2*time.Hour)),
	}

	out := Merge(existing, incoming)
	seen := map[Key]bool{}
	for _, tr := range out {
		k := KeyOf(tr)
		if seen[k] {
			t.Fatalf("duplicate key survived merge: %v", k)
		}
		seen[k] = true
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 survivors, got %d", len(out))
	}
}

func TestMergeNewerWins(t *testing.T) {
	t1 := mkTrend("Election Results", "News", t0)
	t2 := mkTrend("Election Results", "News", t0.AddDate(0, 0, 1))
	t2.Summary = "fresh"

	out := Merge([]models.Trend{t1}, []models.Trend{t2})
	if len(out) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(out))
	}
	if out[0].ID != t2.ID || out[0].Summary != "fresh" {
		t.Errorf("newer incoming record should win, got %+v", out[0])
	}
}

func TestMergeTieKeepsIncumbent(t *testing.T) {
	t1 := mkTrend("Election Results", "News", t0)
	t1.Summary = "stored"
	t2 := mkTrend("Election Results", "News", t0)
	t2.Summary = "scraped"

	out := Merge([]models.Trend{t1}, []models.Trend{t2})
	if len(out) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(out))
	}
	if out[0].Summary != "stored" {
		t.Errorf("tie must keep the existing-side record, got %+v", out[0])
	}
}

func TestMergeWithinBatchDuplicates(t *testing.T) {
	// Duplicate keys inside a single incoming batch resolve by the same
	// later-wins rule, first occurrence winning ties.
	a := mkTrend("Storm Update", "News", t0.Add(time.Hour))
	a.Summary = "first"
	b := mkTrend("Storm Update", "News", t0)
	b.Summary = "older"

	out := Merge(nil, []models.Trend{a, b})
	if len(out) != 1 || out[0].Summary != "first" {
		t.Errorf("earlier-in-batch newer record should survive, got %+v", out)
	}
}

func TestMergeCategoryCaps(t *testing.T) {
	var incoming []models.Trend
	for i := 0; i < 20; i++ {
		incoming = append(incoming, mkTrend(fmt.Sprintf("topic %d", i), "News", t0.Add(time.Duration(i)*time.Minute)))
	}
	for i := 0; i < 6; i++ {
		incoming = append(incoming, mkTrend(fmt.Sprintf("pick %d", i), CategoryForYou, t0.Add(time.Duration(i)*time.Minute)))
	}

	out := Merge(nil, incoming)
	counts := map[string]int{}
	for _, tr := range out {
		counts[tr.Category]++
	}
	if counts["News"] != 12 {
		t.Errorf("News cap is 12, got %d", counts["News"])
	}
	if counts[CategoryForYou] != 3 {
		t.Errorf("For You cap is 3, got %d", counts[CategoryForYou])
	}
}

func TestMergeKeepsMostRecentWithinCategory(t *testing.T) {
	var incoming []models.Trend
	for i := 0; i < 15; i++ {
		incoming = append(incoming, mkTrend(fmt.Sprintf("topic %d", i), "News", t0.Add(time.Duration(i)*time.Minute)))
	}
	out := Merge(nil, incoming)
	if len(out) != 12 {
		t.Fatalf("expected 12 survivors, got %d", len(out))
	}
	// Most recent first; the three oldest must be gone.
	if out[0].Keyword != "topic 14" {
		t.Errorf("expected most recent first, got %q", out[0].Keyword)
	}
	for _, tr := range out {
		for i := 0; i < 3; i++ {
			if tr.Keyword == fmt.Sprintf("topic %d", i) {
				t.Errorf("oldest trend %q should have been trimmed", tr.Keyword)
			}
		}
	}
}

func TestMergeIdempotentOnEmptyIncoming(t *testing.T) {
	existing := []models.Trend{
		mkTrend("Election Results", "News", t0.Add(time.Hour)),
		mkTrend("Storm Update", "News", t0),
		mkTrend("Big Game", "Sports", t0.Add(2*time.Hour)),
	}

	once := Merge(existing, nil)
	twice := Merge(once, nil)
	if len(once) != len(twice) {
		t.Fatalf("merge not stable under repetition: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("position %d differs: %q vs %q", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestMergeEndToEndScenario(t *testing.T) {
	t1 := t0
	t2 := t0.Add(time.Hour)

	batch := []models.Trend{
		mkTrend("Election Results", "News", t1),
		mkTrend("Election Results", "News", t2),
		mkTrend("Storm Update", "Sports", t1),
		mkTrend("Storm Update", "Sports", t1),
	}

	out := Merge(nil, batch)
	if len(out) != 2 {
		t.Fatalf("expected exactly 2 trends, got %d", len(out))
	}
	for _, tr := range out {
		if tr.Keyword == "Election Results" && !tr.FirstSeenAt.Equal(t2) {
			t.Errorf("Election Results should carry t2's payload, got %v", tr.FirstSeenAt)
		}
	}
}

func TestMergeNewerWinsSubSecond(t *testing.T) {
	// The scrapers stamp trends with nanosecond precision, so collisions can
	// differ by fractions of a second. A shorter-printing fraction must not
	// beat a longer, strictly later one.
	t1 := mkTrend("Election Results", "News", t0.Add(100*time.Millisecond))
	t1.Summary = "stale"
	t2 := mkTrend("Election Results", "News", t0.Add(150*time.Millisecond))
	t2.Summary = "fresh"

	out := Merge([]models.Trend{t1}, []models.Trend{t2})
	if len(out) != 1 {
		t.Fatalf("expected 1 trend, got %d", len(out))
	}
	if out[0].Summary != "fresh" {
		t.Errorf("strictly newer incoming record should win, got %q", out[0].Summary)
	}
}

func TestPurgeOrdersSubSecondStamps(t *testing.T) {
	records := []models.Trend{
		mkTrend("topic a", "News", t0.Add(100*time.Millisecond)),
		mkTrend("topic b", "News", t0.Add(150*time.Millisecond)),
		mkTrend("topic c", "News", t0.Add(120*time.Millisecond)),
	}

	kept, deleted := Purge(records, 1)
	if len(kept) != 1 || kept[0].Keyword != "topic b" {
		t.Errorf("most recent record should survive, kept %+v", kept)
	}
	if len(deleted) != 2 {
		t.Errorf("expected 2 deletions, got %d", len(deleted))
	}
}

func TestMergeStampFallsBackToUpdatedAt(t *testing.T) {
	older := models.Trend{Keyword: "Election Results", Category: "News", UpdatedAt: t0}
	newer := models.Trend{Keyword: "Election Results", Category: "News", UpdatedAt: t0.Add(time.Hour), Summary: "fresh"}

	out := Merge([]models.Trend{older}, []models.Trend{newer})
	if len(out) != 1 || out[0].Summary != "fresh" {
		t.Errorf("updated_at fallback should decide the winner, got %+v", out)
	}
}

func TestPurgeBoundary(t *testing.T) {
	var records []models.Trend
	for i := 0; i < 5; i++ {
		records = append(records, mkTrend(fmt.Sprintf("topic %d", i), "News", t0.Add(time.Duration(i)*time.Minute)))
	}

	kept, deleted := Purge(records, 0)
	if len(kept) != 0 || len(deleted) != 5 {
		t.Errorf("keep_latest=0 must delete all: kept=%d deleted=%d", len(kept), len(deleted))
	}

	kept, deleted = Purge(records, len(records))
	if len(kept) != 5 || len(deleted) != 0 {
		t.Errorf("keep_latest=len must delete none: kept=%d deleted=%d", len(kept), len(deleted))
	}
}

func TestPurgeKeepsMostRecent(t *testing.T) {
	var records []models.Trend
	for i := 0; i < 5; i++ {
		records = append(records, mkTrend(fmt.Sprintf("topic %d", i), "News", t0.Add(time.Duration(i)*time.Minute)))
	}

	kept, deleted := Purge(records, 2)
	if len(kept) != 2 || len(deleted) != 3 {
		t.Fatalf("kept=%d deleted=%d", len(kept), len(deleted))
	}
	if kept[0].Keyword != "topic 4" || kept[1].Keyword != "topic 3" {
		t.Errorf("expected most recent kept first, got %q, %q", kept[0].Keyword, kept[1].Keyword)
	}
}
