package milvus

import (
	"context"

	"lecture-quiz-api/internal/application/retrieval"
)

// RetrievalVectorRepository 把 Milvus 仓储适配成应用层的 VectorRepository port
type RetrievalVectorRepository struct {
	repo *Repository
}

func NewRetrievalVectorRepository(repo *Repository) *RetrievalVectorRepository {
	return &RetrievalVectorRepository{repo: repo}
}

var _ retrieval.VectorRepository = (*RetrievalVectorRepository)(nil)

func (r *RetrievalVectorRepository) EnsureChunkCollection(ctx context.Context) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.EnsureLectureChunksCollection(ctx)
}

func (r *RetrievalVectorRepository) Search(ctx context.Context, params *retrieval.VectorSearchParams) ([]*retrieval.VectorSearchResult, error) {
	if r == nil || r.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	if params == nil {
		return nil, nil
	}

	out, err := r.repo.SearchChunks(ctx, &SearchParams{
		Namespace:   params.Namespace,
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*retrieval.VectorSearchResult, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		results = append(results, &retrieval.VectorSearchResult{
			ChunkID:     v.ID,
			Score:       v.Score,
			TextContent: v.TextContent,
			StartMs:     v.StartMs,
			EndMs:       v.EndMs,
		})
	}
	return results, nil
}

func (r *RetrievalVectorRepository) DeleteStale(ctx context.Context, namespace string, fromSeq int64) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return r.repo.DeleteStaleChunks(ctx, namespace, fromSeq)
}

func (r *RetrievalVectorRepository) Upsert(ctx context.Context, namespace string, chunks []*retrieval.VectorChunk) error {
	if r == nil || r.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	if len(chunks) == 0 {
		return nil
	}

	out := make([]*LectureChunk, 0, len(chunks))
	for i := range chunks {
		c := chunks[i]
		if c == nil {
			continue
		}
		out = append(out, &LectureChunk{
			ID:          c.ChunkID,
			Namespace:   c.Namespace,
			Seq:         c.Seq,
			StartMs:     c.StartMs,
			EndMs:       c.EndMs,
			TextContent: c.TextContent,
			Vector:      c.Vector,
		})
	}
	return r.repo.UpsertChunks(ctx, namespace, out)
}
