package utils

import (
	"testing"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

func TestSortBySize(t *testing.T) {
	entries := []types.FolderEntry{
		{Name: "b", SizeBytes: 10},
		{Name: "a", SizeBytes: 10},
		{Name: "c", SizeBytes: 300},
		{Name: "d", SizeBytes: 0},
	}

	SortBySize(entries)

	want := []string{"c", "a", "b", "d"}
	for i, name := range want {
		if entries[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
	if TotalSize(entries) != 320 {
		t.Errorf("expected total 320, got %d", TotalSize(entries))
	}
}

func TestRemoveEntry(t *testing.T) {
	entries := []types.FolderEntry{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got := RemoveEntry(entries, "b")
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestPercentage(t *testing.T) {
	if got := Percentage(1, 0); got != 0 {
		t.Errorf("expected 0 for empty whole, got %v", got)
	}
	if got := Percentage(25, 100); got != 25 {
		t.Errorf("expected 25, got %v", got)
	}
}

func TestTruncatePath(t *testing.T) {
	if got := TruncatePath("short", 10); got != "short" {
		t.Errorf("unexpected: %s", got)
	}
	if got := TruncatePath("a-very-long-folder-name", 10); got != "a-very-..." {
		t.Errorf("unexpected: %s", got)
	}
	if got := TruncatePath("ÄÖÜäöüßéèê", 6); got != "ÄÖÜ..." {
		t.Errorf("multi-byte names must be cut on rune boundaries: %s", got)
	}
}

func TestFormatFileSize(t *testing.T) {
	if got := FormatFileSize(1500); got != "1.5 kB" {
		t.Errorf("unexpected: %s", got)
	}
}
