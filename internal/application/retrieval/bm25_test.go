package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func chunksForTest() []entity.Chunk {
	return []entity.Chunk{
		{ChunkID: "ns-0", Text: "Newton's first law states objects at rest stay at rest", StartMs: 0, EndMs: 2000, Namespace: "ns"},
		{ChunkID: "ns-1", Text: "This is called inertia", StartMs: 2000, EndMs: 4000, Namespace: "ns"},
		{ChunkID: "ns-2", Text: "Force equals mass times acceleration", StartMs: 4000, EndMs: 6000, Namespace: "ns"},
	}
}

func TestBM25SearchRanksMatchingDoc(t *testing.T) {
	idx := BuildBM25Index("ns", chunksForTest())
	hits := idx.Search("inertia", 10)
	require.Len(t, hits, 1)
	assert.Equal(t, "ns-1", hits[0].Chunk.ChunkID)
	assert.Equal(t, "lexical", hits[0].Mode)
	assert.Greater(t, hits[0].Score, 0.0)
}

func TestBM25SearchTopK(t *testing.T) {
	idx := BuildBM25Index("ns", chunksForTest())
	hits := idx.Search("rest inertia force", 2)
	assert.LessOrEqual(t, len(hits), 2)
}

func TestBM25SearchNoMatch(t *testing.T) {
	idx := BuildBM25Index("ns", chunksForTest())
	assert.Empty(t, idx.Search("photosynthesis", 10))
}

func TestBM25RoundTripThroughBlob(t *testing.T) {
	idx := BuildBM25Index("ns", chunksForTest())
	blob, err := idx.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalBM25Index(blob)
	require.NoError(t, err)

	orig := idx.Search("inertia", 10)
	back := restored.Search("inertia", 10)
	require.Len(t, back, len(orig))
	assert.Equal(t, orig[0].Chunk.ChunkID, back[0].Chunk.ChunkID)
	assert.InDelta(t, orig[0].Score, back[0].Score, 1e-12)
}

func TestTokenizeHanSplitsPerRune(t *testing.T) {
	tokens := Tokenize("惯性定律 Newton2")
	assert.Equal(t, []string{"惯", "性", "定", "律", "newton2"}, tokens)
}
