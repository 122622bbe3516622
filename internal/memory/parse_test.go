package memory

import "testing"

func TestParseImportance(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"8", 8},
		{"Importance: 7", 7},
		{"10", 10},
		{"0", 1},
		{"42", 10},
		{"no idea", 5},
		{"", 5},
	}
	for _, tc := range cases {
		if got := parseImportance(tc.raw); got != tc.want {
			t.Fatalf("parseImportance(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestParseExtracted(t *testing.T) {
	got, err := parseExtracted(`{"title":"Job","content":"works as a nurse","tags":["work"]}`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Title != "Job" || got.Content != "works as a nurse" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "work" {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
}

func TestParseExtractedWithWrapper(t *testing.T) {
	got, err := parseExtracted("Here you go: {\"title\":\"Pet\",\"content\":\"has a cat named Mochi\",\"tags\":[]} hope that helps!")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Title != "Pet" {
		t.Fatalf("unexpected title: %s", got.Title)
	}
}

func TestParseExtractedInvalid(t *testing.T) {
	if _, err := parseExtracted("not json at all"); err == nil {
		t.Fatalf("expected error for unparseable output")
	}
}
