// internal/warehouse/runs.go
package warehouse

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"datagen-service/pkg/models"
)

// PostgresRunStore keeps the generation-run ledger.
type PostgresRunStore struct {
	db *gorm.DB
}

func NewPostgresRunStore(db *gorm.DB) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

func (s *PostgresRunStore) Create(ctx context.Context, run *models.GenerationRun) error {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("create run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresRunStore) Update(ctx context.Context, run *models.GenerationRun) error {
	if err := s.db.WithContext(ctx).Save(run).Error; err != nil {
		return fmt.Errorf("update run %s: %w", run.ID, err)
	}
	return nil
}

func (s *PostgresRunStore) Get(ctx context.Context, id string) (*models.GenerationRun, error) {
	var run models.GenerationRun
	if err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresRunStore) List(ctx context.Context, limit int) ([]models.GenerationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.GenerationRun
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
