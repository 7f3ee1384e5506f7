package pdfdoc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var pdfDatePattern = regexp.MustCompile(`^(\d{4})(\d{2})?(\d{2})?(\d{2})?(\d{2})?(\d{2})?`)

// ParseDate normalizes a PDF date string ("D:YYYYMMDDHHmmSS", prefix and
// every component after the year optional) to "YYYY-MM-DD HH:MM:SS".
// Anything that does not parse to a valid calendar time is returned as given.
func ParseDate(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimPrefix(strings.TrimSpace(raw), "D:")
	m := pdfDatePattern.FindStringSubmatch(s)
	if m == nil {
		return raw
	}
	defaults := []int{0, 1, 1, 0, 0, 0}
	v := make([]int, 6)
	for i := range v {
		if m[i+1] == "" {
			v[i] = defaults[i]
			continue
		}
		v[i], _ = strconv.Atoi(m[i+1])
	}
	year, month, day, hour, minute, second := v[0], v[1], v[2], v[3], v[4], v[5]
	if year < 1 || month < 1 || month > 12 || hour > 23 || minute > 59 || second > 59 {
		return raw
	}
	if day < 1 || day > daysIn(time.Month(month), year) {
		return raw
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
