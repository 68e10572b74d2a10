package dto

// IndexLectureRequest 讲座字幕索引请求
type IndexLectureRequest struct {
	VTTText string `json:"vtt_text" binding:"required"`
}

// IndexSummaryRequest 摘要文本索引请求
type IndexSummaryRequest struct {
	Content string `json:"content" binding:"required"`
}

// IndexResponse 索引结果。Rebuilt 为 false 表示内容未变化、索引被跳过。
type IndexResponse struct {
	Namespace  string `json:"namespace"`
	ChunkCount int    `json:"chunk_count"`
	Rebuilt    bool   `json:"rebuilt"`
}
