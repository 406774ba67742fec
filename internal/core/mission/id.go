// Package mission contains the pure business logic for mission operations.
// This is part of the Functional Core - no I/O, only pure functions.
package mission

import (
	"fmt"
	"strings"
)

const idPrefix = "MISSION-"

// GenerateMissionID generates a mission ID from the current max number.
// The format is MISSION-XXX where XXX is at least three digits.
func GenerateMissionID(currentMax int) string {
	return fmt.Sprintf(idPrefix+"%03d", currentMax+1)
}

// ParseMissionNumber extracts the numeric portion from a mission ID.
// Returns -1 if the ID format is invalid.
func ParseMissionNumber(id string) int {
	if !strings.HasPrefix(id, idPrefix) {
		return -1
	}
	var num int
	if _, err := fmt.Sscanf(id[len(idPrefix):], "%d", &num); err != nil || num < 0 {
		return -1
	}
	return num
}

// IsMissionID reports whether id is a well-formed mission ID.
func IsMissionID(id string) bool {
	return ParseMissionNumber(id) > 0
}
