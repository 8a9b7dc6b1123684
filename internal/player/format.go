package player

import (
	"fmt"
	"math"
)

// FormatTime renders a position in seconds as m:ss.  Minutes are not wrapped into hours.
func FormatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
