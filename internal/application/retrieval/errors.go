package retrieval

import "errors"

var (
	// ErrVectorDisabled 表示向量检索/索引能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")

	// ErrEmptyNamespace 命名空间为空。
	ErrEmptyNamespace = errors.New("namespace is required")

	// ErrInvalidNamespace 命名空间含有非法字符或超长。
	ErrInvalidNamespace = errors.New("namespace contains invalid characters")
)
