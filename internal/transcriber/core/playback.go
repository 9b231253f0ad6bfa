package core

// IsSegmentActive reports whether the playback position falls inside the
// display window [start, start+ActiveLineWindow). The segment end is ignored.
func IsSegmentActive(seg Segment, position float64) bool {
	return position >= seg.Start && position < seg.Start+ActiveLineWindow
}

// ActiveSegmentIndexes returns the indexes of every active segment, in order.
// Overlapping windows mark several segments at once.
func ActiveSegmentIndexes(segments []Segment, position float64) []int {
	indexes := []int{}
	for i, seg := range segments {
		if IsSegmentActive(seg, position) {
			indexes = append(indexes, i)
		}
	}
	return indexes
}

// RenderLines returns every segment as a display line with its highlight flag
func RenderLines(segments []Segment, position float64) []ActiveLine {
	lines := make([]ActiveLine, len(segments))
	for i, seg := range segments {
		lines[i] = ActiveLine{
			Index:   i,
			Time:    FormatTimeForDisplay(seg.Start),
			Text:    seg.Text,
			Start:   seg.Start,
			Current: IsSegmentActive(seg, position),
		}
	}
	return lines
}
