package utils

import (
	"sort"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

// SortBySize orders entries largest first, breaking ties by name
func SortBySize(entries []types.FolderEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].SizeBytes != entries[j].SizeBytes {
			return entries[i].SizeBytes > entries[j].SizeBytes
		}
		return entries[i].Name < entries[j].Name
	})
}

// TotalSize sums the sizes of entries
func TotalSize(entries []types.FolderEntry) uint64 {
	var total uint64
	for _, e := range entries {
		total += e.SizeBytes
	}
	return total
}

// RemoveEntry returns entries without the one called name
func RemoveEntry(entries []types.FolderEntry, name string) []types.FolderEntry {
	out := entries[:0]
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}

// Percentage returns part as a percentage of whole, 0 when whole is 0
func Percentage(part, whole uint64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// TruncatePath truncates a path if it's too long
func TruncatePath(path string, maxLen int) string {
	if maxLen <= 3 || utf8.RuneCountInString(path) <= maxLen {
		return path
	}
	runes := []rune(path)
	return string(runes[:maxLen-3]) + "..."
}

// FormatFileSize formats file size using humanize
func FormatFileSize(size uint64) string {
	return humanize.Bytes(size)
}
