package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
)

// ErrQuotaReached is returned by CreateIfBelow when the user already has
// limit records since the cutoff.
var ErrQuotaReached = errors.New("quota reached")

type AIChatRepository struct {
	db *gorm.DB
}

func NewAIChatRepository(db *gorm.DB) *AIChatRepository {
	return &AIChatRepository{db: db}
}

func (r *AIChatRepository) Create(ctx context.Context, record *model.AIChatRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create ai chat record failed: %w", err)
	}
	return nil
}

func (r *AIChatRepository) CountSince(ctx context.Context, userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.AIChatRecord{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count ai chat records failed: %w", err)
	}
	return count, nil
}

// CreateIfBelow inserts record only when the user has fewer than limit
// records created at or after since. The user row is locked for the duration
// of the transaction so concurrent calls for one user are serialized.
func (r *AIChatRepository) CreateIfBelow(ctx context.Context, record *model.AIChatRecord, since time.Time, limit int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", record.UserID).
			First(&owner).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.AIChatRecord{}).
			Where("user_id = ? AND created_at >= ?", record.UserID, since).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= limit {
			return ErrQuotaReached
		}
		return tx.Create(record).Error
	})
	if errors.Is(err, ErrQuotaReached) {
		return ErrQuotaReached
	}
	if err != nil {
		return fmt.Errorf("create ai chat record within quota failed: %w", err)
	}
	return nil
}

func (r *AIChatRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.AIChatRecord, error) {
	var records []model.AIChatRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list ai chat records failed: %w", err)
	}
	return records, nil
}
