package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/repository"
	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/testutil"
)

func TestStartOfDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	got := StartOfDay(time.Date(2026, 5, 2, 0, 30, 0, 0, tokyo))
	want := time.Date(2026, 5, 2, 0, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}

func TestUsageLedgerDayBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DMAllowDuplicates)
	alice := f.user(t, "alice")
	clock := testutil.NewClock(time.Date(2026, 5, 1, 23, 0, 0, 0, time.UTC))
	ledger := NewUsageLedger(repository.NewAIChatRepository(f.db), clock)

	for i := 0; i < DailyAIChatLimit; i++ {
		if _, err := ledger.RecordConversationWithinLimit(ctx, alice.ID, "q", "a"); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		clock.Advance(time.Minute)
	}
	if exceeded, _ := ledger.IsLimitExceeded(ctx, alice.ID); !exceeded {
		t.Fatal("limit not exceeded after three records")
	}
	if left, _ := ledger.Remaining(ctx, alice.ID); left != 0 {
		t.Fatalf("Remaining = %d, want 0", left)
	}
	if _, err := ledger.RecordConversationWithinLimit(ctx, alice.ID, "q", "a"); !errors.Is(err, ErrDailyLimitExceeded) {
		t.Fatalf("fourth record err = %v", err)
	}

	clock.Set(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC))
	count, err := ledger.TodayCount(ctx, alice.ID)
	if err != nil || count != 0 {
		t.Fatalf("TodayCount after midnight = %d, %v", count, err)
	}
	if left, _ := ledger.Remaining(ctx, alice.ID); left != DailyAIChatLimit {
		t.Fatalf("Remaining after midnight = %d", left)
	}

	history, err := ledger.History(ctx, alice.ID, 0)
	if err != nil || len(history) != 3 {
		t.Fatalf("History = %d, %v", len(history), err)
	}
}

func TestRecordConversationIgnoresQuota(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, DMAllowDuplicates)
	alice := f.user(t, "alice")
	ledger := NewUsageLedger(repository.NewAIChatRepository(f.db), testutil.NewClock(time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)))

	for i := 0; i < DailyAIChatLimit+1; i++ {
		if _, err := ledger.RecordConversation(ctx, alice.ID, "q", "a"); err != nil {
			t.Fatalf("RecordConversation: %v", err)
		}
	}
	count, _ := ledger.TodayCount(ctx, alice.ID)
	if count != DailyAIChatLimit+1 {
		t.Fatalf("count = %d", count)
	}
	if left, _ := ledger.Remaining(ctx, alice.ID); left != 0 {
		t.Errorf("Remaining = %d, want clamped 0", left)
	}
}
