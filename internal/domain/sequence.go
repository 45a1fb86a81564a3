package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const sequenceWidth = 3

// NextID derives the identifier that follows the highest numeric suffix among
// ids carrying prefix. Ids whose suffix is not a number are ignored, so an
// empty or fully non-numeric set yields prefix+"001".
func NextID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		if n, ok := SequenceNumber(prefix, id); ok && n > highest {
			highest = n
		}
	}
	return FormatID(prefix, highest+1)
}

// SequenceNumber extracts the numeric suffix of id.
func SequenceNumber(prefix, id string) (int, bool) {
	suffix, found := strings.CutPrefix(id, prefix)
	if !found || suffix == "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func FormatID(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, sequenceWidth, n)
}

// ContainsFold is a case-insensitive substring test. An empty needle matches.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
