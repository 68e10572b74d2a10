package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func TestSliceByIntervalsPaddedWindow(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 2000, Text: "Newton's first law states objects at rest stay at rest."},
		{StartMs: 2000, EndMs: 4000, Text: "This is called inertia."},
	}
	out := SliceByIntervals(caps, []entity.Interval{{StartMs: 500, EndMs: 1500}}, 1000, 6000)
	require.Len(t, out, 2)
	assert.Equal(t, caps[0].Text, out[0].Text)
	assert.Equal(t, caps[1].Text, out[1].Text)
}

func TestSliceByIntervalsDedupAcrossIntervals(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 1000, Text: "a"},
		{StartMs: 1000, EndMs: 2000, Text: "b"},
	}
	intervals := []entity.Interval{
		{StartMs: 0, EndMs: 500},
		{StartMs: 200, EndMs: 800},
	}
	out := SliceByIntervals(caps, intervals, 0, 6000)
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Text)
}

func TestSliceByIntervalsCharBudget(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 1000, Text: "aaaa"},
		{StartMs: 1000, EndMs: 2000, Text: "bbbb"},
		{StartMs: 2000, EndMs: 3000, Text: "cccc"},
	}
	out := SliceByIntervals(caps, []entity.Interval{{StartMs: 0, EndMs: 3000}}, 0, 8)
	require.Len(t, out, 2)
	assert.Equal(t, "aaaa", out[0].Text)
	assert.Equal(t, "bbbb", out[1].Text)
}

func TestSliceByIntervalsBudgetCountsRunes(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 1000, Text: "惯性定律"},
		{StartMs: 1000, EndMs: 2000, Text: "外力作用"},
	}
	out := SliceByIntervals(caps, []entity.Interval{{StartMs: 0, EndMs: 2000}}, 0, 4)
	require.Len(t, out, 1)
}

func TestSliceByIntervalsNoOverlap(t *testing.T) {
	caps := []entity.Caption{{StartMs: 0, EndMs: 1000, Text: "a"}}
	out := SliceByIntervals(caps, []entity.Interval{{StartMs: 50000, EndMs: 60000}}, 1000, 6000)
	assert.Empty(t, out)
}

func TestSliceByIntervalsSortsByTime(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 2000, EndMs: 3000, Text: "later"},
		{StartMs: 0, EndMs: 1000, Text: "earlier"},
	}
	out := SliceByIntervals(caps, []entity.Interval{{StartMs: 0, EndMs: 3000}}, 0, 6000)
	require.Len(t, out, 2)
	assert.Equal(t, "earlier", out[0].Text)
	assert.Equal(t, "later", out[1].Text)
}

func TestTruncateToBudget(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 1000, Text: "aaa"},
		{StartMs: 1000, EndMs: 2000, Text: "bbb"},
	}
	out := TruncateToBudget(caps, 3)
	require.Len(t, out, 1)
	assert.Equal(t, "aaa", out[0].Text)
}
