// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lecture-quiz-api/pkg/logger"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
	dim    int
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client, dim int) *Repository {
	if dim <= 0 {
		dim = DefaultVectorDimension
	}
	return &Repository{client: client, dim: dim}
}

// escapeExprString 转义拼入布尔表达式的字符串值。
// 命名空间在应用层已做字符集校验，这里兜底防止引号破坏过滤条件。
func escapeExprString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// SearchParams 检索参数
type SearchParams struct {
	Namespace   string
	QueryVector []float32
	TopK        int
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	TextContent string
	StartMs     int64
	EndMs       int64
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// SearchChunks 按命名空间过滤的向量检索
func (r *Repository) SearchChunks(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchChunks",
		trace.WithAttributes(
			attribute.String("namespace", params.Namespace),
			attribute.Int("top_k", params.TopK),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionLectureChunks)
	filter := fmt.Sprintf(`namespace == "%s"`, escapeExprString(params.Namespace))

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		filter,
		[]string{"id", "text_content", "start_ms", "end_ms"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}

			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}
			if startCol, ok := result.Fields.GetColumn("start_ms").(*entity.ColumnInt64); ok {
				sr.StartMs = startCol.Data()[i]
			}
			if endCol, ok := result.Fields.GetColumn("end_ms").(*entity.ColumnInt64); ok {
				sr.EndMs = endCol.Data()[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// UpsertChunks 按主键覆盖写入内容块，已存在的 id 直接替换
func (r *Repository) UpsertChunks(ctx context.Context, namespace string, chunks []*LectureChunk) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.UpsertChunks",
		trace.WithAttributes(
			attribute.String("namespace", namespace),
			attribute.Int("count", len(chunks)),
		))
	defer span.End()

	if len(chunks) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionLectureChunks)

	ids := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	namespaces := make([]string, len(chunks))
	seqs := make([]int64, len(chunks))
	startMs := make([]int64, len(chunks))
	endMs := make([]int64, len(chunks))
	textContents := make([]string, len(chunks))

	for i, c := range chunks {
		ids[i] = c.ID
		vectors[i] = c.Vector
		namespaces[i] = c.Namespace
		seqs[i] = c.Seq
		startMs[i] = c.StartMs
		endMs[i] = c.EndMs
		textContents[i] = c.TextContent
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", r.dim, vectors)
	nsCol := entity.NewColumnVarChar("namespace", namespaces)
	seqCol := entity.NewColumnInt64("seq", seqs)
	startCol := entity.NewColumnInt64("start_ms", startMs)
	endCol := entity.NewColumnInt64("end_ms", endMs)
	textCol := entity.NewColumnVarChar("text_content", textContents)

	_, err := r.client.milvus.Upsert(ctx, collName, "",
		idCol, vectorCol, nsCol, seqCol, startCol, endCol, textCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}

	return nil
}

// DeleteStaleChunks 删除命名空间下 seq >= fromSeq 的残留内容块。
// 重建后 chunk 数变少时，超出新序号范围的旧向量由这里清理。
func (r *Repository) DeleteStaleChunks(ctx context.Context, namespace string, fromSeq int64) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.DeleteStaleChunks",
		trace.WithAttributes(
			attribute.String("namespace", namespace),
			attribute.Int64("from_seq", fromSeq),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionLectureChunks)
	filter := fmt.Sprintf(`namespace == "%s" && seq >= %d`, escapeExprString(namespace), fromSeq)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete stale chunks: %w", err)
	}
	return nil
}

// EnsureLectureChunksCollection 确保集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureLectureChunksCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionLectureChunks)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, LectureChunksSchema(r.dim)); err != nil {
			return err
		}
		// 新建集合时创建索引；失败不阻塞启动，由运维介入
		if err := r.CreateIndex(ctx, CollectionLectureChunks); err != nil {
			logger.Warn(ctx, "创建向量索引失败", "collection", CollectionLectureChunks, "error", err)
		}
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionLectureChunks)
}
