package pdfdoc

import (
	"fmt"
	"math"
	"strings"

	"doc-inspector/config"
)

const landscapeSuffix = " (landscape)"

// MatchStandardSize returns the label of the first standard paper size within
// tolerance of w x h, suffixed " (landscape)" when it matches rotated, or ""
// when nothing matches.
func MatchStandardSize(w, h int) string {
	for _, s := range config.StandardSizes {
		if within(w, s.Width) && within(h, s.Height) {
			return s.Name
		}
		if within(w, s.Height) && within(h, s.Width) {
			return s.Name + landscapeSuffix
		}
	}
	return ""
}

func within(a, b int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= config.SizeTolerance
}

// PageSize is one distinct rounded page geometry and how many pages use it.
type PageSize struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Label     string `json:"label,omitempty"`
	Landscape bool   `json:"landscape,omitempty"`
	Count     int    `json:"count"`
}

// PageSizeSummary keeps distinct sizes in first-seen order.
type PageSizeSummary []PageSize

// Add records one page of the given geometry in points.
func (s *PageSizeSummary) Add(width, height float64) {
	w := int(math.RoundToEven(width))
	h := int(math.RoundToEven(height))
	for i := range *s {
		if (*s)[i].Width == w && (*s)[i].Height == h {
			(*s)[i].Count++
			return
		}
	}
	label := MatchStandardSize(w, h)
	*s = append(*s, PageSize{
		Width:     w,
		Height:    h,
		Label:     label,
		Landscape: strings.HasSuffix(label, landscapeSuffix),
		Count:     1,
	})
}

func (s PageSizeSummary) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		str := fmt.Sprintf("%d x %d", p.Width, p.Height)
		if p.Label != "" {
			str += " [" + p.Label + "]"
		}
		if p.Count > 1 {
			str += fmt.Sprintf(" (%dx)", p.Count)
		}
		parts = append(parts, str)
	}
	return strings.Join(parts, ", ")
}
