package retrieval

import "context"

// VectorRepository 定义应用层对“向量存储/检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorRepository interface {
	EnsureChunkCollection(ctx context.Context) error
	Search(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
	// Upsert 按确定性 chunk id 覆盖写入，旧版本向量在写入成功前保持可检索。
	Upsert(ctx context.Context, namespace string, chunks []*VectorChunk) error
	// DeleteStale 删除 seq >= fromSeq 的残留向量，仅在新版本写入成功后调用。
	DeleteStale(ctx context.Context, namespace string, fromSeq int64) error
}

type VectorSearchParams struct {
	Namespace   string
	QueryVector []float32
	TopK        int
}

type VectorSearchResult struct {
	ChunkID     string
	Score       float32
	TextContent string
	StartMs     int64
	EndMs       int64
}

type VectorChunk struct {
	ChunkID     string
	Namespace   string
	Seq         int64
	StartMs     int64
	EndMs       int64
	TextContent string
	Vector      []float32
}
