package postgres

import (
	"fmt"

	"lecture-quiz-api/internal/domain/entity"
)

// AutoMigrate 建表与补列，只增不删
func (c *Client) AutoMigrate() error {
	if err := c.db.AutoMigrate(
		&entity.IndexState{},
		&entity.QuizRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
