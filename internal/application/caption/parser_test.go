package caption

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func TestParseTimestampRoundTrip(t *testing.T) {
	cases := []string{"00:00:00.000", "00:01:30.500", "01:02:03.045", "10:59:59.999"}
	for _, ts := range cases {
		ms, err := ParseTimestamp(ts)
		require.NoError(t, err)
		assert.Equal(t, ts, FormatTimestamp(ms))
	}
}

func TestParseTimestampComma(t *testing.T) {
	ms, err := ParseTimestamp("00:00:01,250")
	require.NoError(t, err)
	assert.Equal(t, int64(1250), ms)
}

func TestParseBasic(t *testing.T) {
	raw := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\n牛顿第一定律：静止的物体保持静止。\n\n00:00:02.000 --> 00:00:04.000\n这就是惯性。\n"
	caps := Parse(raw)
	require.Len(t, caps, 2)
	assert.Equal(t, int64(0), caps[0].StartMs)
	assert.Equal(t, int64(2000), caps[0].EndMs)
	assert.Equal(t, "牛顿第一定律：静止的物体保持静止。", caps[0].Text)
	assert.Equal(t, "这就是惯性。", caps[1].Text)
}

func TestParseStripsBOMAndCRLF(t *testing.T) {
	raw := "\ufeffWEBVTT\r\n\r\n00:00:00.000 --> 00:00:02.000\r\n带字节序标记的字幕\r\n"
	caps := Parse(raw)
	require.Len(t, caps, 1)
	assert.Equal(t, "带字节序标记的字幕", caps[0].Text)
}

func TestParseStripsNoiseAndTags(t *testing.T) {
	raw := "00:00:00.000 --> 00:00:02.000\n<b>hello</b> [Music] [박수] world\n"
	caps := Parse(raw)
	require.Len(t, caps, 1)
	assert.Equal(t, "hello world", caps[0].Text)
}

func TestParseSkipsNoiseOnlyCue(t *testing.T) {
	raw := "00:00:00.000 --> 00:00:02.000\n[applause]\n\n00:00:02.000 --> 00:00:04.000\nok\n"
	caps := Parse(raw)
	require.Len(t, caps, 1)
	assert.Equal(t, "ok", caps[0].Text)
}

func TestParseMalformedLinesDegrade(t *testing.T) {
	raw := "garbage\n00:00 --> 00:01\nbroken\n\n00:00:01.000 --> 00:00:02.000 align:start\nfine\n"
	caps := Parse(raw)
	require.Len(t, caps, 1)
	assert.Equal(t, "fine", caps[0].Text)
	assert.Equal(t, int64(1000), caps[0].StartMs)
}

func TestCaptionOverlaps(t *testing.T) {
	c := entity.Caption{StartMs: 1000, EndMs: 2000, Text: "x"}
	assert.True(t, c.Overlaps(0, 1000))
	assert.True(t, c.Overlaps(2000, 3000))
	assert.True(t, c.Overlaps(1500, 1600))
	assert.False(t, c.Overlaps(0, 999))
	assert.False(t, c.Overlaps(2001, 3000))
}
