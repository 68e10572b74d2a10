// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionLectureChunks 课程内容块集合
	CollectionLectureChunks = "lecture_chunks"

	// DefaultVectorDimension 默认向量维度（text-embedding-3-small）
	DefaultVectorDimension = 1536
)

// LectureChunksSchema 课程内容块 Collection Schema
func LectureChunksSchema(dim int) *entity.Schema {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &entity.Schema{
		CollectionName: CollectionLectureChunks,
		Description:    "Lecture caption chunks for hybrid retrieval",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "160",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": strconv.Itoa(dim),
				},
			},
			{
				Name:     "namespace",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "seq",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "start_ms",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "end_ms",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// LectureChunk 课程内容块数据结构
type LectureChunk struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	Namespace   string    `json:"namespace"`
	Seq         int64     `json:"seq"`
	StartMs     int64     `json:"start_ms"`
	EndMs       int64     `json:"end_ms"`
	TextContent string    `json:"text_content"`
}
