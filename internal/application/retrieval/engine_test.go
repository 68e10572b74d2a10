package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndexedEngine(t *testing.T) *Engine {
	t.Helper()
	emb := &fakeEmbedder{}
	vec := newFakeVectorRepo()
	lex := newFakeLexicalStore()
	idx := NewIndexer(emb, vec, lex, newFakeStateRepo(), 32)
	_, err := idx.EnsureIndexed(context.Background(), "ns", chunksForTest())
	require.NoError(t, err)
	return NewEngine(emb, vec, lex, nil, Defaults{})
}

func TestRetrieveReturnsFusedHits(t *testing.T) {
	e := newIndexedEngine(t)
	out, err := e.Retrieve(context.Background(), RetrieveInput{
		Namespace:  "ns",
		AnchorText: "inertia",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Hits)
	assert.NotEmpty(t, out.Queries)

	ids := make(map[string]int)
	for _, h := range out.Hits {
		ids[h.Chunk.ChunkID]++
	}
	for id, n := range ids {
		assert.Equal(t, 1, n, "chunk %s duplicated", id)
	}
}

func TestRetrieveValidation(t *testing.T) {
	e := newIndexedEngine(t)

	_, err := e.Retrieve(context.Background(), RetrieveInput{AnchorText: "x"})
	assert.ErrorIs(t, err, ErrEmptyNamespace)

	_, err = e.Retrieve(context.Background(), RetrieveInput{Namespace: "ns"})
	assert.Error(t, err)

	// 会破坏过滤表达式的命名空间直接拒绝
	_, err = e.Retrieve(context.Background(), RetrieveInput{Namespace: `ns" || namespace != "`, AnchorText: "x"})
	assert.ErrorIs(t, err, ErrInvalidNamespace)
}

func TestValidateNamespace(t *testing.T) {
	assert.NoError(t, ValidateNamespace("lecture_7"))
	assert.NoError(t, ValidateNamespace("summary_ab-3.v2"))
	assert.ErrorIs(t, ValidateNamespace(""), ErrEmptyNamespace)
	assert.ErrorIs(t, ValidateNamespace(`lec"ture`), ErrInvalidNamespace)
	assert.ErrorIs(t, ValidateNamespace("lec ture"), ErrInvalidNamespace)
	assert.ErrorIs(t, ValidateNamespace("_leading"), ErrInvalidNamespace)
	assert.ErrorIs(t, ValidateNamespace(strings.Repeat("a", 129)), ErrInvalidNamespace)
}

func TestRetrieveOutKLimit(t *testing.T) {
	e := newIndexedEngine(t)
	out, err := e.Retrieve(context.Background(), RetrieveInput{
		Namespace:  "ns",
		AnchorText: "rest inertia force mass",
		OutK:       1,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out.Hits), 1)
}

func TestRetrieveUnknownNamespace(t *testing.T) {
	e := newIndexedEngine(t)
	out, err := e.Retrieve(context.Background(), RetrieveInput{
		Namespace:  "missing",
		AnchorText: "inertia",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Hits)
}

func TestSplitRunes(t *testing.T) {
	out := SplitRunes("abcdefgh", 3)
	assert.Equal(t, []string{"abc", "def", "gh"}, out)
	assert.Nil(t, SplitRunes("", 3))
}
