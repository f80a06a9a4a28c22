package dates

import (
	"fmt"
	"strings"
	"time"
)

// ExtractYear returns the first plausible year written as exactly four
// digits, or 0. Catalog dates come as "2005", "2005-11" or "Nov 15, 2005".
func ExtractYear(s string) int {
	s = strings.TrimSpace(s)
	for i := 0; i+4 <= len(s); i++ {
		chunk := s[i : i+4]
		if !allDigits(chunk) || (i > 0 && isDigit(s[i-1])) || (i+4 < len(s) && isDigit(s[i+4])) {
			continue
		}
		var y int
		if _, err := fmt.Sscanf(chunk, "%d", &y); err == nil {
			if y >= 1000 && y <= time.Now().Year()+1 {
				return y
			}
		}
	}
	return 0
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// NowISO returns the current UTC date as YYYY-MM-DD.
func NowISO() string { return time.Now().UTC().Format("2006-01-02") }
