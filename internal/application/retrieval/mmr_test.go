package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func fused(id, text string, score float64) FusedHit {
	return FusedHit{Chunk: entity.Chunk{ChunkID: id, Text: text}, Score: score}
}

func TestSelectMMRPrefersDiversity(t *testing.T) {
	// 两条近重复的高分候选不应同时入选
	cands := []FusedHit{
		fused("a", "newton first law inertia objects rest", 1.0),
		fused("b", "newton first law inertia objects rest", 0.95),
		fused("c", "acceleration equals force divided by mass", 0.5),
		fused("d", "unrelated chapter about thermodynamics entropy", 0.4),
	}
	out := SelectMMR(cands, 2, 0.5)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Chunk.ChunkID)
	assert.NotEqual(t, "b", out[1].Chunk.ChunkID)
}

func TestSelectMMRAtFusionScoreMagnitude(t *testing.T) {
	// RRF 融合分只有 0.01~0.05 量级，归一后相关性仍应压过去重项，
	// 否则第二轮会选中完全不相关的低分候选
	cands := []FusedHit{
		fused("top", "牛顿 第一 定律 惯性 物体 保持 静止", 0.0328),
		fused("alsoTop", "牛顿 第一 定律 惯性 参考系 下 成立", 0.0325),
		fused("noise", "热力学 熵 增 原理 孤立 系统", 0.0161),
	}
	out := SelectMMR(cands, 2, 0.5)
	require.Len(t, out, 2)
	assert.Equal(t, "top", out[0].Chunk.ChunkID)
	assert.Equal(t, "alsoTop", out[1].Chunk.ChunkID)
}

func TestSelectMMRFewerCandidatesThanK(t *testing.T) {
	cands := []FusedHit{fused("a", "x", 1.0)}
	out := SelectMMR(cands, 8, 0.5)
	require.Len(t, out, 1)
}

func TestSelectMMREmpty(t *testing.T) {
	assert.Nil(t, SelectMMR(nil, 8, 0.5))
	assert.Nil(t, SelectMMR([]FusedHit{fused("a", "x", 1)}, 0, 0.5))
}

func TestJaccard(t *testing.T) {
	a := map[string]struct{}{"x": {}, "y": {}}
	b := map[string]struct{}{"y": {}, "z": {}}
	assert.InDelta(t, 1.0/3, jaccard(a, b), 1e-12)
	assert.Equal(t, 0.0, jaccard(a, map[string]struct{}{}))
}
