package entity

// Chunk 检索索引的基本单元；namespace 内 chunk_id 唯一。
// 一旦写入不再修改，内容变化时整个 namespace 重建。
type Chunk struct {
	ChunkID   string `json:"chunk_id"`
	Text      string `json:"text"`
	StartMs   int64  `json:"start_ms"`
	EndMs     int64  `json:"end_ms"`
	Namespace string `json:"namespace"`
}
