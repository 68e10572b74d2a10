package repository

import (
	"context"

	"lecture-quiz-api/internal/domain/entity"
)

// QuizRepository 题目记录仓储接口
type QuizRepository interface {
	// SaveBatch 批量保存一次生成产出的题目
	SaveBatch(ctx context.Context, records []*entity.QuizRecord) error
	// ListByNamespace 按命名空间查询历史题目
	ListByNamespace(ctx context.Context, namespace string, limit int) ([]*entity.QuizRecord, error)
}
