// internal/warehouse/sink.go
package warehouse

import (
	"context"
	"fmt"
	"log"

	"gorm.io/gorm"

	"datagen-service/pkg/models"
)

const appendBatchSize = 500

// PostgresSink appends a run's datasets to the warehouse tables. Rows are
// write-once: a run either lands as a whole batch or the run is marked
// failed; nothing here retries.
type PostgresSink struct {
	db *gorm.DB
}

func NewPostgresSink(db *gorm.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) AppendUsers(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(users, appendBatchSize).Error; err != nil {
		return fmt.Errorf("append users: %w", err)
	}
	log.Printf("✅ [SINK] Appended %d rows to users", len(users))
	return nil
}

func (s *PostgresSink) AppendEvents(ctx context.Context, events []models.Event) error {
	if len(events) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(events, appendBatchSize).Error; err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	log.Printf("✅ [SINK] Appended %d rows to events", len(events))
	return nil
}
