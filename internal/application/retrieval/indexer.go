package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"golang.org/x/sync/singleflight"

	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/domain/repository"
	"lecture-quiz-api/pkg/logger"
	"lecture-quiz-api/pkg/metrics"
)

const defaultEmbeddingBatch = 32

// Indexer 按命名空间维护向量与词法双索引。
// 写入顺序固定：向量按 id upsert → 清理超出新序号的残留 → 词法 blob 覆盖 → 内容哈希落库。
// 任何一步失败都不写后续步骤，上一版已提交索引保持可用。
type Indexer struct {
	embedder embedding.Embedder
	vector   VectorRepository
	lexical  LexicalStore
	state    repository.IndexStateRepository

	embeddingBatchSize int

	// 同命名空间的重建互斥，跨命名空间并行
	group   singleflight.Group
	mu      sync.Mutex
	nsLocks map[string]*sync.Mutex
}

func NewIndexer(embedder embedding.Embedder, vectorRepo VectorRepository, lexicalStore LexicalStore, stateRepo repository.IndexStateRepository, embeddingBatchSize int) *Indexer {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Indexer{
		embedder:           embedder,
		vector:             vectorRepo,
		lexical:            lexicalStore,
		state:              stateRepo,
		embeddingBatchSize: bs,
		nsLocks:            make(map[string]*sync.Mutex),
	}
}

func (i *Indexer) Enabled() bool {
	return i != nil && i.embedder != nil && i.vector != nil && i.lexical != nil
}

func (i *Indexer) ensureReady(ctx context.Context) error {
	if i == nil || i.vector == nil {
		return ErrVectorDisabled
	}
	return i.vector.EnsureChunkCollection(ctx)
}

func (i *Indexer) lockNamespace(namespace string) *sync.Mutex {
	i.mu.Lock()
	defer i.mu.Unlock()
	l, ok := i.nsLocks[namespace]
	if !ok {
		l = &sync.Mutex{}
		i.nsLocks[namespace] = l
	}
	return l
}

// ContentHash 对全部 chunk 文本顺序拼接取 sha256，作为幂等判断依据。
func ContentHash(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CaptionsToChunks 把字幕序列转为确定性 id 的 chunk 序列。
func CaptionsToChunks(namespace string, caps []entity.Caption) []entity.Chunk {
	chunks := make([]entity.Chunk, 0, len(caps))
	for idx, c := range caps {
		chunks = append(chunks, entity.Chunk{
			ChunkID:   fmt.Sprintf("%s-%d", namespace, idx),
			Text:      c.Text,
			StartMs:   c.StartMs,
			EndMs:     c.EndMs,
			Namespace: namespace,
		})
	}
	return chunks
}

// EnsureIndexed 幂等索引：内容哈希未变化时跳过，变化时全量重建。
// 返回是否真正执行了重建。同一命名空间的并发调用会被 singleflight 合并。
func (i *Indexer) EnsureIndexed(ctx context.Context, namespace string, chunks []entity.Chunk) (bool, error) {
	namespace = strings.TrimSpace(namespace)
	if err := ValidateNamespace(namespace); err != nil {
		return false, err
	}
	if !i.Enabled() {
		return false, ErrVectorDisabled
	}

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	hash := ContentHash(texts)

	type result struct{ built bool }
	v, err, _ := i.group.Do(namespace+":"+hash, func() (any, error) {
		lock := i.lockNamespace(namespace)
		lock.Lock()
		defer lock.Unlock()

		if i.state != nil {
			st, err := i.state.Get(ctx, namespace)
			if err != nil {
				return nil, err
			}
			if st != nil && st.ContentHash == hash {
				metrics.IndexBuildTotal.WithLabelValues("skipped").Inc()
				logger.Info(ctx, "索引内容未变化，跳过重建",
					"namespace", namespace, "chunks", len(chunks))
				return result{built: false}, nil
			}
		}

		if err := i.rebuild(ctx, namespace, chunks, hash); err != nil {
			metrics.IndexBuildTotal.WithLabelValues("failed").Inc()
			return nil, err
		}
		metrics.IndexBuildTotal.WithLabelValues("built").Inc()
		metrics.IndexedChunks.Observe(float64(len(chunks)))
		return result{built: true}, nil
	})
	if err != nil {
		return false, err
	}
	return v.(result).built, nil
}

// UpsertChunks 不做哈希比较的强制重建，供调用方自行控制时使用。
func (i *Indexer) UpsertChunks(ctx context.Context, namespace string, chunks []entity.Chunk) error {
	namespace = strings.TrimSpace(namespace)
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	if !i.Enabled() {
		return ErrVectorDisabled
	}

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	lock := i.lockNamespace(namespace)
	lock.Lock()
	defer lock.Unlock()
	return i.rebuild(ctx, namespace, chunks, ContentHash(texts))
}

// rebuild 全量重建单个命名空间的双索引。调用方持有命名空间锁。
func (i *Indexer) rebuild(ctx context.Context, namespace string, chunks []entity.Chunk, hash string) error {
	start := time.Now()
	defer func() {
		metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	}()

	if err := i.ensureReady(ctx); err != nil {
		return err
	}

	// 先嵌入：嵌入失败时向量与词法都不动
	embedInputs := make([]string, 0, len(chunks))
	for _, c := range chunks {
		embedInputs = append(embedInputs, c.Text)
	}
	vectors, err := i.embedBatch(ctx, embedInputs)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	vcs := make([]*VectorChunk, 0, len(chunks))
	for idx, c := range chunks {
		vcs = append(vcs, &VectorChunk{
			ChunkID:     c.ChunkID,
			Namespace:   namespace,
			Seq:         int64(idx),
			StartMs:     c.StartMs,
			EndMs:       c.EndMs,
			TextContent: c.Text,
			Vector:      vectors[idx],
		})
	}

	// 按 id 覆盖写入，失败时上一版向量原样保留
	if err := i.vector.Upsert(ctx, namespace, vcs); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	// 新 chunk 数变少时清掉序号超出的残留
	if err := i.vector.DeleteStale(ctx, namespace, int64(len(vcs))); err != nil {
		return fmt.Errorf("delete stale vectors: %w", err)
	}

	blob, err := BuildBM25Index(namespace, chunks).Marshal()
	if err != nil {
		return fmt.Errorf("marshal lexical index: %w", err)
	}
	if err := i.lexical.Put(ctx, namespace, blob); err != nil {
		return fmt.Errorf("persist lexical index: %w", err)
	}

	if i.state != nil {
		st := &entity.IndexState{
			Namespace:   namespace,
			ContentHash: hash,
			ChunkCount:  len(chunks),
			UpdatedAt:   time.Now(),
		}
		if err := i.state.Save(ctx, st); err != nil {
			return fmt.Errorf("save index state: %w", err)
		}
	}

	logger.Info(ctx, "命名空间索引重建完成",
		"namespace", namespace, "chunks", len(chunks))
	return nil
}

func (i *Indexer) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if i == nil || i.embedder == nil {
		return nil, ErrVectorDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.embeddingBatchSize {
		end := start + i.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		metrics.EmbeddingBatchSize.Observe(float64(end - start))
		v64, err := i.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
