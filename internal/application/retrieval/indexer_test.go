package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.fail {
		return nil, errors.New("embedding service down")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{float64(len(texts[i])), 1, 0}
	}
	return out, nil
}

type fakeVectorRepo struct {
	mu         sync.Mutex
	data       map[string][]*VectorChunk
	upserts    int
	failUpsert bool
}

func newFakeVectorRepo() *fakeVectorRepo {
	return &fakeVectorRepo{data: make(map[string][]*VectorChunk)}
}

func (f *fakeVectorRepo) EnsureChunkCollection(context.Context) error { return nil }

func (f *fakeVectorRepo) Search(_ context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chunks := f.data[params.Namespace]
	out := make([]*VectorSearchResult, 0, len(chunks))
	for _, c := range chunks {
		if len(out) >= params.TopK {
			break
		}
		out = append(out, &VectorSearchResult{
			ChunkID:     c.ChunkID,
			TextContent: c.TextContent,
			StartMs:     c.StartMs,
			EndMs:       c.EndMs,
		})
	}
	return out, nil
}

func (f *fakeVectorRepo) Upsert(_ context.Context, namespace string, chunks []*VectorChunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpsert {
		return errors.New("vector store unavailable")
	}
	existing := f.data[namespace]
	for _, c := range chunks {
		replaced := false
		for i := range existing {
			if existing[i].ChunkID == c.ChunkID {
				existing[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, c)
		}
	}
	f.data[namespace] = existing
	f.upserts++
	return nil
}

func (f *fakeVectorRepo) DeleteStale(_ context.Context, namespace string, fromSeq int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := make([]*VectorChunk, 0, len(f.data[namespace]))
	for _, c := range f.data[namespace] {
		if c.Seq < fromSeq {
			kept = append(kept, c)
		}
	}
	f.data[namespace] = kept
	return nil
}

type fakeLexicalStore struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

func newFakeLexicalStore() *fakeLexicalStore {
	return &fakeLexicalStore{data: make(map[string][]byte)}
}

func (f *fakeLexicalStore) Get(_ context.Context, ns string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[ns], nil
}

func (f *fakeLexicalStore) Put(_ context.Context, ns string, blob []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[ns] = blob
	f.puts++
	return nil
}

func (f *fakeLexicalStore) Delete(_ context.Context, ns string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, ns)
	return nil
}

type fakeStateRepo struct {
	mu   sync.Mutex
	data map[string]*entity.IndexState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{data: make(map[string]*entity.IndexState)}
}

func (f *fakeStateRepo) Get(_ context.Context, ns string) (*entity.IndexState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[ns], nil
}

func (f *fakeStateRepo) Save(_ context.Context, st *entity.IndexState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[st.Namespace] = st
	return nil
}

func (f *fakeStateRepo) Delete(_ context.Context, ns string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, ns)
	return nil
}

func TestEnsureIndexedIdempotent(t *testing.T) {
	emb := &fakeEmbedder{}
	vec := newFakeVectorRepo()
	lex := newFakeLexicalStore()
	state := newFakeStateRepo()
	idx := NewIndexer(emb, vec, lex, state, 32)

	chunks := chunksForTest()

	built, err := idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	assert.True(t, built)
	firstCalls := emb.calls

	// 相同内容重复提交是空操作
	built, err = idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	assert.False(t, built)
	assert.Equal(t, firstCalls, emb.calls)
	assert.Equal(t, 1, vec.upserts)
	assert.Equal(t, 1, lex.puts)
}

func TestEnsureIndexedRebuildsOnContentChange(t *testing.T) {
	idx := NewIndexer(&fakeEmbedder{}, newFakeVectorRepo(), newFakeLexicalStore(), newFakeStateRepo(), 32)

	chunks := chunksForTest()
	built, err := idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	assert.True(t, built)

	changed := append([]entity.Chunk{}, chunks...)
	changed[0].Text = "updated content"
	built, err = idx.EnsureIndexed(context.Background(), "ns", changed)
	require.NoError(t, err)
	assert.True(t, built)
}

func TestEnsureIndexedEmbeddingFailureLeavesPriorIndex(t *testing.T) {
	emb := &fakeEmbedder{}
	vec := newFakeVectorRepo()
	lex := newFakeLexicalStore()
	state := newFakeStateRepo()
	idx := NewIndexer(emb, vec, lex, state, 32)

	chunks := chunksForTest()
	_, err := idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	priorBlob := lex.data["ns"]
	priorHash := state.data["ns"].ContentHash

	// 内容变化但嵌入失败：旧索引不动，状态不推进
	emb.fail = true
	changed := append([]entity.Chunk{}, chunks...)
	changed[0].Text = "new text"
	_, err = idx.EnsureIndexed(context.Background(), "ns", changed)
	require.Error(t, err)
	assert.Equal(t, priorBlob, lex.data["ns"])
	assert.Equal(t, priorHash, state.data["ns"].ContentHash)
	assert.NotEmpty(t, vec.data["ns"])
}

func TestEnsureIndexedVectorFailureLeavesPriorIndex(t *testing.T) {
	emb := &fakeEmbedder{}
	vec := newFakeVectorRepo()
	lex := newFakeLexicalStore()
	state := newFakeStateRepo()
	idx := NewIndexer(emb, vec, lex, state, 32)

	chunks := chunksForTest()
	_, err := idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	priorVectors := len(vec.data["ns"])
	priorBlob := lex.data["ns"]
	priorHash := state.data["ns"].ContentHash

	// 向量写入失败：上一版向量、词法 blob 和哈希都原样保留
	vec.failUpsert = true
	changed := append([]entity.Chunk{}, chunks...)
	changed[0].Text = "new text"
	_, err = idx.EnsureIndexed(context.Background(), "ns", changed)
	require.Error(t, err)
	assert.Len(t, vec.data["ns"], priorVectors)
	assert.Equal(t, priorBlob, lex.data["ns"])
	assert.Equal(t, priorHash, state.data["ns"].ContentHash)
}

func TestEnsureIndexedShrinkRemovesStaleTail(t *testing.T) {
	vec := newFakeVectorRepo()
	idx := NewIndexer(&fakeEmbedder{}, vec, newFakeLexicalStore(), newFakeStateRepo(), 32)

	chunks := chunksForTest()
	_, err := idx.EnsureIndexed(context.Background(), "ns", chunks)
	require.NoError(t, err)
	require.Len(t, vec.data["ns"], len(chunks))

	// 重建后 chunk 数变少，序号超出的旧向量被清掉
	_, err = idx.EnsureIndexed(context.Background(), "ns", chunks[:1])
	require.NoError(t, err)
	require.Len(t, vec.data["ns"], 1)
	assert.Equal(t, "ns-0", vec.data["ns"][0].ChunkID)
}

func TestEnsureIndexedEmptyNamespace(t *testing.T) {
	idx := NewIndexer(&fakeEmbedder{}, newFakeVectorRepo(), newFakeLexicalStore(), newFakeStateRepo(), 32)
	_, err := idx.EnsureIndexed(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyNamespace)
}

func TestContentHashStable(t *testing.T) {
	a := ContentHash([]string{"x", "y"})
	b := ContentHash([]string{"x", "y"})
	c := ContentHash([]string{"xy"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestCaptionsToChunksDeterministicIDs(t *testing.T) {
	caps := []entity.Caption{
		{StartMs: 0, EndMs: 1000, Text: "a"},
		{StartMs: 1000, EndMs: 2000, Text: "b"},
	}
	chunks := CaptionsToChunks("lecture_7", caps)
	require.Len(t, chunks, 2)
	assert.Equal(t, "lecture_7-0", chunks[0].ChunkID)
	assert.Equal(t, "lecture_7-1", chunks[1].ChunkID)
	assert.Equal(t, "lecture_7", chunks[1].Namespace)
}
