package retrieval

import "context"

// Reranker 重排序 port，对融合后的前 finalK 条命中做二次排序。
// 默认实现为恒等透传，接入交叉编码器等外部服务时替换实现。
type Reranker interface {
	Rerank(ctx context.Context, query string, hits []FusedHit) ([]FusedHit, error)
}

// IdentityReranker 恒等重排，保持融合得分顺序不变。
type IdentityReranker struct{}

func NewIdentityReranker() *IdentityReranker {
	return &IdentityReranker{}
}

func (r *IdentityReranker) Rerank(_ context.Context, _ string, hits []FusedHit) ([]FusedHit, error) {
	return hits, nil
}
