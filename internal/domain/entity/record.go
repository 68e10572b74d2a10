package entity

import (
	"time"
)

// IndexState 命名空间的索引状态（内容哈希，用于幂等判断）
type IndexState struct {
	Namespace   string    `gorm:"primaryKey;size:128" json:"namespace"`
	ContentHash string    `gorm:"size:64;not null" json:"content_hash"`
	ChunkCount  int       `gorm:"not null;default:0" json:"chunk_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (IndexState) TableName() string {
	return "index_states"
}

// QuizRecord 已生成题目的持久化记录
type QuizRecord struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Namespace    string    `gorm:"size:128;index;not null" json:"namespace"`
	UserID       string    `gorm:"size:64;index" json:"user_id"`
	Type         string    `gorm:"size:8;not null" json:"type"`
	Question     string    `gorm:"type:text;not null" json:"question"`
	OptionsJSON  string    `gorm:"type:text" json:"options_json"`
	Answer       string    `gorm:"size:255;not null" json:"answer"`
	EvidenceJSON string    `gorm:"type:text" json:"evidence_json"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 指定表名
func (QuizRecord) TableName() string {
	return "quiz_records"
}
