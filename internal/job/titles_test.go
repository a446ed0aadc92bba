package job

import (
	"sort"
	"testing"
)

func TestMergeTitleCountsOrdersByCountThenTitle(t *testing.T) {
	merged := mergeTitleCounts(map[string]int{
		"Software Engineer": 2,
		"Data Analyst":      5,
		"Welder":            2,
	})

	if merged[0].Title != "Data Analyst" || merged[0].Count != 5 {
		t.Fatalf("unexpected first entry: %+v", merged[0])
	}
	if merged[1].Title != "Software Engineer" {
		t.Fatalf("ties must break on title ascending, got %+v", merged[1])
	}
	if merged[2].Title != "Welder" {
		t.Fatalf("ties must break on title ascending, got %+v", merged[2])
	}
	if !sort.SliceIsSorted(merged, func(i, j int) bool {
		if merged[i].Count != merged[j].Count {
			return merged[i].Count > merged[j].Count
		}
		return merged[i].Title < merged[j].Title
	}) {
		t.Fatal("merged list is not sorted")
	}
}

func TestMergeTitleCountsIncludesCuratedTitles(t *testing.T) {
	merged := mergeTitleCounts(nil)

	if len(merged) != len(profileTitles) {
		t.Fatalf("expected %d titles, got %d", len(profileTitles), len(merged))
	}
	for _, tc := range merged {
		if tc.Count != 0 {
			t.Fatalf("curated titles without live postings must count zero: %+v", tc)
		}
	}
}

func TestMergeTitleCountsNoDuplicates(t *testing.T) {
	merged := mergeTitleCounts(map[string]int{"Software Engineer": 3})

	occurrences := 0
	for _, tc := range merged {
		if tc.Title == "Software Engineer" {
			occurrences++
			if tc.Count != 3 {
				t.Fatalf("live count must win over the curated zero: %+v", tc)
			}
		}
	}
	if occurrences != 1 {
		t.Fatalf("title merged %d times, want 1", occurrences)
	}
}
