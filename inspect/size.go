package inspect

import "fmt"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// HumanSize formats n with 1024-based units. Bytes are printed whole, larger
// units with two decimals.
func HumanSize(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n)
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, sizeUnits[unit])
}
