package dbx

import (
	"strconv"
	"strings"
)

// Placeholders renders count PostgreSQL placeholders starting at start,
// e.g. Placeholders(2, 3) == "$2, $3, $4". Used to expand IN lists.
func Placeholders(start, count int) string {
	var b strings.Builder
	for i := 0; i < count; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(start + i))
	}
	return b.String()
}
