package repository

import (
	"context"

	"lecture-quiz-api/internal/domain/entity"
)

// IndexStateRepository 索引状态仓储接口
type IndexStateRepository interface {
	// Get 按命名空间查询索引状态，不存在时返回 (nil, nil)
	Get(ctx context.Context, namespace string) (*entity.IndexState, error)
	// Save 写入或覆盖索引状态
	Save(ctx context.Context, state *entity.IndexState) error
	// Delete 删除索引状态
	Delete(ctx context.Context, namespace string) error
}
