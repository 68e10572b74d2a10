package retrieval

import "context"

// LexicalStore 定义应用层对“词法索引存储”的最小依赖（port）。
// 索引整体序列化后按命名空间存取，重建索引时整体覆盖。
type LexicalStore interface {
	Get(ctx context.Context, namespace string) ([]byte, error)
	Put(ctx context.Context, namespace string, blob []byte) error
	Delete(ctx context.Context, namespace string) error
}
