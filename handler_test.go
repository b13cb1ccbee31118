package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fbtplatform/fbt-ledger-go/cache"
	"github.com/fbtplatform/fbt-ledger-go/eventbus"
	"github.com/fbtplatform/fbt-ledger-go/repl"
)

func setupTestHandler(t *testing.T) (*Handler, eventbus.Bus, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cacheManager := cache.NewManager(client)
	testBus := eventbus.NewRedisBus(client)
	handler := NewHandler(cacheManager, nil, testBus) // nil db: no fallback paths in these tests

	return handler, testBus, mr
}

func vestingInsertEvent(id int64, recipient string, total, released string) repl.ChangeEvent {
	return repl.ChangeEvent{
		Table:     "public.vesting_accounts",
		Operation: repl.Insert,
		Data: map[string]any{
			"id":               id,
			"recipient":        recipient,
			"total_amount":     total,
			"released_amount":  released,
			"start_time":       int64(1_700_000_000),
			"duration_seconds": int64(31_104_000),
			"category":         "advisors",
			"fully_claimed":    false,
			"created_at":       int64(1_700_000_000),
			"updated_at":       int64(1_700_000_000),
		},
	}
}

func TestVestingInsertRefreshesCache(t *testing.T) {
	h, _, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	event := vestingInsertEvent(7, "0:AAAA", "5000000000000000000", "0")
	if err := h.handleEvent(ctx, event); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	got, err := h.cache.VestingAccounts.Get(ctx, cache.AccountKey(7))
	if err != nil {
		t.Fatalf("expected snapshot in cache: %v", err)
	}
	if got.Recipient != "0:AAAA" {
		t.Errorf("expected recipient 0:AAAA, got %s", got.Recipient)
	}
	if got.TotalAmount.String() != "5000000000000000000" {
		t.Errorf("expected total 5000000000000000000, got %s", got.TotalAmount)
	}
	if got.Category.String() != "advisors" {
		t.Errorf("expected category advisors, got %s", got.Category)
	}

	ids, err := h.cache.RecipientAccountIDs(ctx, "0:AAAA")
	if err != nil {
		t.Fatalf("RecipientAccountIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("expected schedule index [7], got %v", ids)
	}
}

func TestVestingUpdateRewritesSnapshot(t *testing.T) {
	h, _, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	if err := h.handleEvent(ctx, vestingInsertEvent(7, "0:AAAA", "1000", "0")); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	// the final claim drains the schedule
	update := vestingInsertEvent(7, "0:AAAA", "1000", "1000")
	update.Operation = repl.Update
	update.Data["fully_claimed"] = true
	update.OldData = map[string]any{
		"id":            int64(7),
		"fully_claimed": false,
	}
	if err := h.handleEvent(ctx, update); err != nil {
		t.Fatalf("UPDATE failed: %v", err)
	}

	got, err := h.cache.VestingAccounts.Get(ctx, cache.AccountKey(7))
	if err != nil {
		t.Fatalf("expected snapshot in cache: %v", err)
	}
	if got.ReleasedAmount.String() != "1000" {
		t.Errorf("expected released 1000, got %s", got.ReleasedAmount)
	}
	if !got.FullyClaimed {
		t.Error("expected fully_claimed snapshot")
	}
}

func TestVestingDeleteDropsSnapshot(t *testing.T) {
	h, _, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	if err := h.handleEvent(ctx, vestingInsertEvent(7, "0:AAAA", "1000", "0")); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	// default replica identity ships only the key; the recipient must
	// come from the cached snapshot
	del := repl.ChangeEvent{
		Table:     "public.vesting_accounts",
		Operation: repl.Delete,
		OldData:   map[string]any{"id": int64(7)},
	}
	if err := h.handleEvent(ctx, del); err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}

	if _, err := h.cache.VestingAccounts.Get(ctx, cache.AccountKey(7)); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	ids, err := h.cache.RecipientAccountIDs(ctx, "0:AAAA")
	if err != nil {
		t.Fatalf("RecipientAccountIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty schedule index, got %v", ids)
	}
}

func TestStakeAccountLifecycle(t *testing.T) {
	h, _, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	insert := repl.ChangeEvent{
		Table:     "public.stake_accounts",
		Operation: repl.Insert,
		Data: map[string]any{
			"id":         int64(3),
			"staker":     "0:BBBB",
			"pool":       "0:FFFF",
			"amount":     "1000",
			"shares":     "500",
			"active":     true,
			"created_at": int64(1_700_000_000),
			"updated_at": int64(1_700_000_000),
		},
	}
	if err := h.handleEvent(ctx, insert); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	got, err := h.cache.StakeAccounts.Get(ctx, cache.AccountKey(3))
	if err != nil {
		t.Fatalf("expected snapshot in cache: %v", err)
	}
	if got.Amount.String() != "1000" || got.Shares.String() != "500" {
		t.Errorf("expected amount 1000 shares 500, got %s/%s", got.Amount, got.Shares)
	}

	del := repl.ChangeEvent{
		Table:     "public.stake_accounts",
		Operation: repl.Delete,
		OldData:   map[string]any{"id": int64(3), "staker": "0:BBBB"},
	}
	if err := h.handleEvent(ctx, del); err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if _, err := h.cache.StakeAccounts.Get(ctx, cache.AccountKey(3)); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestReconciliationInsertPublishesAlert(t *testing.T) {
	h, testBus, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := testBus.Subscribe(ctx, eventbus.TopicReconciliation)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	event := repl.ChangeEvent{
		Table:     "public.reconciliation_events",
		Operation: repl.Insert,
		Data: map[string]any{
			"id":         int64(1),
			"recipient":  "0:AAAA",
			"tx_hash":    "txhash1",
			"requested":  "150",
			"allocated":  "120",
			"shortfall":  "30",
			"created_at": int64(1_700_000_000),
		},
	}
	if err := h.handleEvent(ctx, event); err != nil {
		t.Fatalf("INSERT failed: %v", err)
	}

	select {
	case msg := <-sub.Events():
		alert, err := eventbus.DecodePayload[eventbus.ReconciliationAlert](msg.Payload)
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}
		if alert.Recipient != "0:AAAA" || alert.TxHash != "txhash1" {
			t.Errorf("unexpected alert identity: %+v", alert)
		}
		if alert.Shortfall.String() != "30" || alert.Allocated.String() != "120" {
			t.Errorf("unexpected alert amounts: requested %s allocated %s shortfall %s",
				alert.Requested, alert.Allocated, alert.Shortfall)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconciliation alert")
	}
}

func TestReconciliationUpdateIgnored(t *testing.T) {
	h, testBus, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := testBus.Subscribe(ctx, eventbus.TopicReconciliation)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	event := repl.ChangeEvent{
		Table:     "public.reconciliation_events",
		Operation: repl.Update,
		Data: map[string]any{
			"id":        int64(1),
			"recipient": "0:AAAA",
			"tx_hash":   "txhash1",
			"requested": "150",
			"allocated": "120",
			"shortfall": "30",
		},
	}
	if err := h.handleEvent(ctx, event); err != nil {
		t.Fatalf("UPDATE failed: %v", err)
	}

	select {
	case msg := <-sub.Events():
		t.Fatalf("expected no alert for update, got topic %s", msg.Topic)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestIncompleteVestingRowRejected(t *testing.T) {
	h, _, mr := setupTestHandler(t)
	defer mr.Close()
	ctx := context.Background()

	event := repl.ChangeEvent{
		Table:     "public.vesting_accounts",
		Operation: repl.Insert,
		Data: map[string]any{
			"id":        int64(9),
			"recipient": "0:AAAA",
			// amounts missing
		},
	}
	if err := h.handleEvent(ctx, event); err == nil {
		t.Fatal("expected error for incomplete insert tuple")
	}
	if _, err := h.cache.VestingAccounts.Get(ctx, cache.AccountKey(9)); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("expected nothing cached, got %v", err)
	}
}
