package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func TestIsSegmentActive(t *testing.T) {
	seg := core.Segment{Text: "a", Start: 10, End: 11}

	tests := []struct {
		name     string
		position float64
		expected bool
	}{
		{"before start", 9.99, false},
		{"at start", 10, true},
		{"after end inside window", 12, true},
		{"just before window end", 14.999, true},
		{"at window end", 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.IsSegmentActive(seg, tt.position))
		})
	}
}

func TestActiveSegmentIndexes(t *testing.T) {
	segments := []core.Segment{
		{Text: "a", Start: 0, End: 1},
		{Text: "b", Start: 3, End: 4},
		{Text: "c", Start: 20, End: 22},
	}

	assert.Equal(t, []int{0, 1}, core.ActiveSegmentIndexes(segments, 4))
	assert.Equal(t, []int{1}, core.ActiveSegmentIndexes(segments, 5))
	assert.Equal(t, []int{}, core.ActiveSegmentIndexes(segments, 10))
	assert.Equal(t, []int{}, core.ActiveSegmentIndexes(nil, 0))
}

func TestRenderLines(t *testing.T) {
	segments := []core.Segment{
		{Text: "第一句。", Start: 0, End: 1},
		{Text: "第二句。", Start: 65, End: 66},
	}

	lines := core.RenderLines(segments, 66)
	require.Len(t, lines, 2)

	assert.Equal(t, core.ActiveLine{Index: 0, Time: "00:00", Text: "第一句。", Start: 0, Current: false}, lines[0])
	assert.Equal(t, core.ActiveLine{Index: 1, Time: "01:05", Text: "第二句。", Start: 65, Current: true}, lines[1])
}
