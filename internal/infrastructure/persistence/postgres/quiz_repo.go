package postgres

import (
	"context"
	"fmt"

	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/domain/repository"
)

// QuizRepository 题目记录仓储实现
type QuizRepository struct {
	client *Client
}

// NewQuizRepository 创建题目记录仓储
func NewQuizRepository(client *Client) *QuizRepository {
	return &QuizRepository{client: client}
}

var _ repository.QuizRepository = (*QuizRepository)(nil)

// SaveBatch 批量保存题目记录
func (r *QuizRepository) SaveBatch(ctx context.Context, records []*entity.QuizRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.QuizRepository.SaveBatch")
	defer span.End()

	if len(records) == 0 {
		return nil
	}
	if err := r.client.db.WithContext(ctx).Create(records).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save quiz records: %w", err)
	}
	return nil
}

// ListByNamespace 按命名空间倒序查询历史题目
func (r *QuizRepository) ListByNamespace(ctx context.Context, namespace string, limit int) ([]*entity.QuizRecord, error) {
	ctx, span := tracer.Start(ctx, "postgres.QuizRepository.ListByNamespace")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	var records []*entity.QuizRecord
	err := r.client.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list quiz records: %w", err)
	}
	return records, nil
}
