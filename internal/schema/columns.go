package schema

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// ColumnIndex converts a column letter (A, Z, AA, AS...) to a zero-based index.
func ColumnIndex(letter string) (int, error) {
	if letter == "" {
		return 0, fmt.Errorf("empty column letter")
	}
	n, err := excelize.ColumnNameToNumber(letter)
	if err != nil {
		return 0, fmt.Errorf("invalid column letter %q: %w", letter, err)
	}
	return n - 1, nil
}

// ColumnLetter converts a zero-based index back to its column letter. Indices
// outside the sheet grid yield "".
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	name, err := excelize.ColumnNumberToName(index + 1)
	if err != nil {
		return ""
	}
	return name
}

// lessLetter orders column letters the way the sheet does: shorter first, then alphabetical.
func lessLetter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// SortLetters sorts column letters in sheet order in place.
func SortLetters(letters []string) {
	sort.Slice(letters, func(i, j int) bool { return lessLetter(letters[i], letters[j]) })
}
