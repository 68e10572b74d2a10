package retrieval

import "lecture-quiz-api/internal/domain/entity"

// RetrieveInput 混合检索输入。
type RetrieveInput struct {
	Namespace  string
	AnchorText string

	// 以下为 0 时取配置默认值
	TopKVec     int
	TopKLex     int
	FinalK      int
	OutK        int
	MMRLambda   float64
	IncludeRaw  bool
}

// Hit 单一索引产出的命中。Mode 标记来源信号。
type Hit struct {
	Chunk entity.Chunk
	Score float64
	Mode  string // "vector" | "lexical"
}

// FusedHit 跨信号融合后的命中，Score 为 RRF 累加值，按 ChunkID 唯一。
type FusedHit struct {
	Chunk entity.Chunk
	Score float64
}

func chunkFromVectorResult(namespace string, r *VectorSearchResult) entity.Chunk {
	return entity.Chunk{
		ChunkID:   r.ChunkID,
		Text:      r.TextContent,
		StartMs:   r.StartMs,
		EndMs:     r.EndMs,
		Namespace: namespace,
	}
}

// RetrieveOutput 检索输出。
type RetrieveOutput struct {
	Hits    []FusedHit
	Queries []string

	// RawHits 仅在 IncludeRaw 时返回，用于调试对比两路信号
	RawHits []Hit
}
