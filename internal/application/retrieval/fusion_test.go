package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func hit(id, mode string) Hit {
	return Hit{Chunk: entity.Chunk{ChunkID: id, Text: id}, Mode: mode}
}

func TestFuseRRFMonotonicity(t *testing.T) {
	// 双列表都排第一的 chunk 融合得分必须严格高于只出现一次的
	vector := []Hit{hit("both", "vector"), hit("only", "vector")}
	lexical := []Hit{hit("both", "lexical")}

	fused := FuseRRF([][]Hit{vector, lexical})
	require.Len(t, fused, 2)
	assert.Equal(t, "both", fused[0].Chunk.ChunkID)
	assert.Greater(t, fused[0].Score, fused[1].Score)
}

func TestFuseRRFScenario(t *testing.T) {
	// vector=[B,A,C], lexical=[A,C,B]：A（rank2+rank1）得分最高
	vector := []Hit{hit("B", "vector"), hit("A", "vector"), hit("C", "vector")}
	lexical := []Hit{hit("A", "lexical"), hit("C", "lexical"), hit("B", "lexical")}

	fused := FuseRRF([][]Hit{vector, lexical})
	require.Len(t, fused, 3)
	assert.Equal(t, "A", fused[0].Chunk.ChunkID)
	assert.InDelta(t, 1.0/62+1.0/61, fused[0].Score, 1e-12)

	// B(1/61+1/63) 与 C(1/63+1/62) 的顺序确定：B 更高
	assert.Equal(t, "B", fused[1].Chunk.ChunkID)
	assert.Equal(t, "C", fused[2].Chunk.ChunkID)
}

func TestFuseRRFTieBreakByDiscoveryOrder(t *testing.T) {
	// 得分完全相同的按首次出现顺序排
	a := []Hit{hit("x", "vector")}
	b := []Hit{hit("y", "lexical")}
	fused := FuseRRF([][]Hit{a, b})
	require.Len(t, fused, 2)
	assert.Equal(t, "x", fused[0].Chunk.ChunkID)
	assert.Equal(t, "y", fused[1].Chunk.ChunkID)
}

func TestFuseRRFDedupByChunkID(t *testing.T) {
	a := []Hit{hit("dup", "vector"), hit("dup", "vector")}
	fused := FuseRRF([][]Hit{a})
	require.Len(t, fused, 1)
	assert.InDelta(t, 1.0/61+1.0/62, fused[0].Score, 1e-12)
}
