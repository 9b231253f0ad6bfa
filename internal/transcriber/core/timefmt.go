package core

import (
	"fmt"
	"math"
)

// splitSeconds floors seconds and returns hours, minutes, seconds and the
// floored millisecond remainder. Negative and non-finite input count as zero.
func splitSeconds(seconds float64) (h, m, s, ms int64) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, 0, 0, 0
	}

	whole := math.Floor(seconds)
	// the epsilon absorbs float noise such as 1.001 - 1 = 0.000999...
	ms = int64(math.Floor((seconds-whole)*1000 + 1e-6))
	if ms > 999 {
		ms = 999
	}

	total := int64(whole)
	h = total / 3600
	m = (total % 3600) / 60
	s = total % 60
	return h, m, s, ms
}

// FormatTimeForDisplay renders MM:SS, or HH:MM:SS when the hours field is non-zero
func FormatTimeForDisplay(seconds float64) string {
	h, m, s, _ := splitSeconds(seconds)
	if h == 0 {
		return fmt.Sprintf("%02d:%02d", m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatTimeForClock always renders HH:MM:SS, used by the plain text export
func FormatTimeForClock(seconds float64) string {
	h, m, s, _ := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatTimeForCue renders a subtitle cue timestamp, HH:MM:SS,mmm
func FormatTimeForCue(seconds float64) string {
	h, m, s, ms := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
