package models

import "sort"

// StudioCapacityTable maps location -> studio name -> room capacity.
// The count of named studios bounds how many classes may overlap at a
// location; the per-room capacity is informational only.
type StudioCapacityTable map[string]map[string]int

// DefaultStudioCapacities mirrors the studio floor plans of the three sites.
var DefaultStudioCapacities = StudioCapacityTable{
	"Kwality House, Kemps Corner": {
		"Studio 1":   20,
		"Studio 2":   12,
		"Mat Studio": 13,
		"Fit Studio": 14,
	},
	"Supreme HQ, Bandra": {
		"Main Studio":      14,
		"Cycle Studio":     14,
		"Secondary Studio": 12,
	},
	"Kenkere House": {
		"Main Studio":      12,
		"Secondary Studio": 10,
	},
}

// StudioNames returns the named studios at a location in stable order.
func (t StudioCapacityTable) StudioNames(location string) []string {
	rooms, ok := t[location]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rooms))
	// Stable iteration keeps studio assignment deterministic across runs.
	for _, candidate := range studioNameOrder {
		if _, exists := rooms[candidate]; exists {
			names = append(names, candidate)
		}
	}
	var rest []string
	for name := range rooms {
		if !containsString(names, name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// StudioCount returns how many named studios a location hosts.
func (t StudioCapacityTable) StudioCount(location string) int {
	return len(t[location])
}

var studioNameOrder = []string{
	"Studio 1", "Studio 2", "Main Studio", "Cycle Studio",
	"Secondary Studio", "Mat Studio", "Fit Studio",
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
