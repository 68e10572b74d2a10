// Package entity 定义领域实体
package entity

// Caption 一条字幕记录（毫秒时间戳 + 清洗后的文本）
type Caption struct {
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// Overlaps 判断字幕时间段与 [startMs, endMs] 是否有交集
func (c Caption) Overlaps(startMs, endMs int64) bool {
	return !(c.EndMs < startMs || c.StartMs > endMs)
}

// Interval 调用方提供的关注时间段（如学习者走神区间）
type Interval struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}
