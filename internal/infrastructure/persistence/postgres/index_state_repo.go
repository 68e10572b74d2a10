// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/domain/repository"
)

// IndexStateRepository 索引状态仓储实现
type IndexStateRepository struct {
	client *Client
}

// NewIndexStateRepository 创建索引状态仓储
func NewIndexStateRepository(client *Client) *IndexStateRepository {
	return &IndexStateRepository{client: client}
}

var _ repository.IndexStateRepository = (*IndexStateRepository)(nil)

// Get 按命名空间查询索引状态
func (r *IndexStateRepository) Get(ctx context.Context, namespace string) (*entity.IndexState, error) {
	ctx, span := tracer.Start(ctx, "postgres.IndexStateRepository.Get")
	defer span.End()

	var state entity.IndexState
	err := r.client.db.WithContext(ctx).First(&state, "namespace = ?", namespace).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get index state: %w", err)
	}
	return &state, nil
}

// Save 写入或覆盖索引状态
func (r *IndexStateRepository) Save(ctx context.Context, state *entity.IndexState) error {
	ctx, span := tracer.Start(ctx, "postgres.IndexStateRepository.Save")
	defer span.End()

	err := r.client.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		UpdateAll: true,
	}).Create(state).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save index state: %w", err)
	}
	return nil
}

// Delete 删除索引状态
func (r *IndexStateRepository) Delete(ctx context.Context, namespace string) error {
	ctx, span := tracer.Start(ctx, "postgres.IndexStateRepository.Delete")
	defer span.End()

	err := r.client.db.WithContext(ctx).Delete(&entity.IndexState{}, "namespace = ?", namespace).Error
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete index state: %w", err)
	}
	return nil
}
