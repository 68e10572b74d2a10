package dto

import (
	"lecture-quiz-api/internal/application/retrieval"
)

// SearchRequest 混合检索请求。可选参数为 0 时取服务端默认值。
type SearchRequest struct {
	Namespace  string  `json:"namespace" binding:"required"`
	AnchorText string  `json:"anchor_text" binding:"required"`
	TopKVec    int     `json:"top_k_vec"`
	TopKLex    int     `json:"top_k_lex"`
	FinalK     int     `json:"final_k"`
	OutK       int     `json:"out_k"`
	MMRLambda  float64 `json:"mmr_lambda"`
	IncludeRaw bool    `json:"include_raw"`
}

// SearchHitDTO 融合后的命中
type SearchHitDTO struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	StartMs int64   `json:"start_ms"`
	EndMs   int64   `json:"end_ms"`
	Score   float64 `json:"score"`
}

// RawHitDTO 融合前的单路命中，用于调试对比两路信号
type RawHitDTO struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	StartMs int64   `json:"start_ms"`
	EndMs   int64   `json:"end_ms"`
	Score   float64 `json:"score"`
	Mode    string  `json:"mode"`
}

// SearchResponse 混合检索响应
type SearchResponse struct {
	Queries []string       `json:"queries"`
	Hits    []SearchHitDTO `json:"hits"`
	RawHits []RawHitDTO    `json:"raw_hits,omitempty"`
}

// ToSearchResponse 将检索输出转换为响应
func ToSearchResponse(out *retrieval.RetrieveOutput) SearchResponse {
	hits := make([]SearchHitDTO, 0, len(out.Hits))
	for _, h := range out.Hits {
		hits = append(hits, SearchHitDTO{
			ChunkID: h.Chunk.ChunkID,
			Text:    h.Chunk.Text,
			StartMs: h.Chunk.StartMs,
			EndMs:   h.Chunk.EndMs,
			Score:   h.Score,
		})
	}
	resp := SearchResponse{Queries: out.Queries, Hits: hits}
	for _, h := range out.RawHits {
		resp.RawHits = append(resp.RawHits, RawHitDTO{
			ChunkID: h.Chunk.ChunkID,
			Text:    h.Chunk.Text,
			StartMs: h.Chunk.StartMs,
			EndMs:   h.Chunk.EndMs,
			Score:   h.Score,
			Mode:    h.Mode,
		})
	}
	return resp
}
