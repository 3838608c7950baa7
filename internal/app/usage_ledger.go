package app

import (
	"context"
	"errors"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/model"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
)

// UsageLedger counts AI assistant conversations per user per calendar day.
// The day starts at local midnight of the clock's location; nothing is reset
// explicitly, counts are derived from record timestamps.
type UsageLedger struct {
	repo  *repository.AIChatRepository
	clock Clock
	limit int64
}

func NewUsageLedger(repo *repository.AIChatRepository, clock Clock) *UsageLedger {
	if clock == nil {
		clock = SystemClock()
	}
	return &UsageLedger{
		repo:  repo,
		clock: clock,
		limit: DailyAIChatLimit,
	}
}

func (l *UsageLedger) Limit() int64 { return l.limit }

func (l *UsageLedger) TodayCount(ctx context.Context, userID string) (int64, error) {
	return l.repo.CountSince(ctx, userID, StartOfDay(l.clock.Now()))
}

func (l *UsageLedger) Remaining(ctx context.Context, userID string) (int64, error) {
	count, err := l.TodayCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return remaining(l.limit, count), nil
}

func (l *UsageLedger) IsLimitExceeded(ctx context.Context, userID string) (bool, error) {
	count, err := l.TodayCount(ctx, userID)
	if err != nil {
		return false, err
	}
	return count >= l.limit, nil
}

// RecordConversation appends a record without consulting the quota. Callers
// that need the cap enforced use RecordConversationWithinLimit.
func (l *UsageLedger) RecordConversation(ctx context.Context, userID, request, response string) (*model.AIChatRecord, error) {
	record := &model.AIChatRecord{
		UserID:    userID,
		Request:   request,
		Response:  response,
		CreatedAt: l.clock.Now(),
	}
	if err := l.repo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// RecordConversationWithinLimit appends a record only while today's count is
// below the limit, checking and inserting in one transaction.
func (l *UsageLedger) RecordConversationWithinLimit(ctx context.Context, userID, request, response string) (*model.AIChatRecord, error) {
	now := l.clock.Now()
	record := &model.AIChatRecord{
		UserID:    userID,
		Request:   request,
		Response:  response,
		CreatedAt: now,
	}
	if err := l.repo.CreateIfBelow(ctx, record, StartOfDay(now), l.limit); err != nil {
		if errors.Is(err, repository.ErrQuotaReached) {
			return nil, ErrDailyLimitExceeded
		}
		return nil, err
	}
	return record, nil
}

// History returns the user's most recent records first. limit outside
// 1..DefaultHistoryLimit falls back to DefaultHistoryLimit.
func (l *UsageLedger) History(ctx context.Context, userID string, limit int) ([]model.AIChatRecord, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	return l.repo.ListByUserID(ctx, userID, limit)
}

func remaining(limit, count int64) int64 {
	if count >= limit {
		return 0
	}
	return limit - count
}
