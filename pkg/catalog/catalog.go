package catalog

import (
	"sort"
	"strings"
)

// Entry is one purchasable service tier.
type Entry struct {
	Descriptor string
	Points     int64
}

// table is closed: descriptors are lowercase and never change at runtime.
var table = map[string]int64{
	"per game special": 1,
	"bo3 special":      1,
	"bo5 special":      2,
	"bo7 special":      3,
	"per hour special": 1,
	"2 hours special":  2,
	"3 hours special":  3,
	"5 hours special":  4,

	"per game normal": 1,
	"bo3 normal":      2,
	"bo5 normal":      3,
	"bo7 normal":      5,
	"per hour normal": 2,
	"2 hours normal":  3,
	"3 hours normal":  4,
	"5 hours normal":  6,

	"6 hours":  6,
	"12 hours": 7,
	"18 hours": 8,
	"24 hours": 10,
	"1 month":  130,
}

// Normalize returns the catalog key form of a user supplied descriptor.
func Normalize(descriptor string) string {
	return strings.ToLower(descriptor)
}

// Lookup returns points for descriptor. Matching is exact after lowercasing,
// surrounding whitespace is not trimmed.
func Lookup(descriptor string) (int64, bool) {
	pts, ok := table[Normalize(descriptor)]
	return pts, ok
}

// Entries returns the whole catalog ordered by points, then by descriptor.
func Entries() []Entry {
	entries := make([]Entry, 0, len(table))
	for d, p := range table {
		entries = append(entries, Entry{Descriptor: d, Points: p})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points < entries[j].Points
		}
		return entries[i].Descriptor < entries[j].Descriptor
	})

	return entries
}
