package table

import (
	"fmt"
	"strings"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders makes a header row usable as column names.
//
// Rules:
//   - Empty or whitespace-only headers become Unnamed_A, Unnamed_B, ..., Unnamed_AA, ...
//   - A name already taken gets a _duplicated_N suffix (N counts from 0 per name)
//   - Other headers are preserved as-is
//
// Example:
//
//	Input:  ["temp", "", "temp", "  "]
//	Output: ["temp", "Unnamed_A", "temp_duplicated_0", "Unnamed_B"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	taken := make(map[string]bool, len(header))
	duplicates := make(map[string]int)
	emptyCount := 0

	for i, h := range header {
		name := h
		if strings.TrimSpace(h) == "" {
			name = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		}
		base := name
		for taken[name] {
			n := duplicates[base]
			duplicates[base] = n + 1
			name = fmt.Sprintf("%s_duplicated_%d", base, n)
		}
		taken[name] = true
		normalized[i] = name
	}

	return normalized
}
