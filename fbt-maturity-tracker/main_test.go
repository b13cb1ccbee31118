package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fbtplatform/fbt-ledger-go/eventbus"
	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

func setupTestTracker(t *testing.T) (*MaturityTracker, eventbus.Bus, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	bus := eventbus.NewRedisBus(client)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	// nil db and nil events: these tests feed the tracker directly
	tracker := NewMaturityTracker(nil, bus, nil, 10*time.Second, 24*time.Hour,
		logger, 3, time.Millisecond, 10*time.Millisecond)
	return tracker, bus, mr
}

func TestMaturityScheduleOrdersByInstant(t *testing.T) {
	ms := NewMaturitySchedule()
	now := time.Now()

	ms.Add(MaturityEntry{AccountID: 3, MaturesAt: now.Add(-1 * time.Minute)})
	ms.Add(MaturityEntry{AccountID: 1, MaturesAt: now.Add(-3 * time.Minute)})
	ms.Add(MaturityEntry{AccountID: 2, MaturesAt: now.Add(-2 * time.Minute)})

	matured := ms.GetMatured(now)
	if len(matured) != 3 {
		t.Fatalf("expected 3 matured entries, got %d", len(matured))
	}
	for i, want := range []int64{1, 2, 3} {
		if matured[i].AccountID != want {
			t.Errorf("position %d: expected account %d, got %d", i, want, matured[i].AccountID)
		}
	}
	if ms.Len() != 0 {
		t.Errorf("expected empty schedule, got %d pending", ms.Len())
	}
}

func TestMaturityScheduleHoldsFutureEntries(t *testing.T) {
	ms := NewMaturitySchedule()
	now := time.Now()

	ms.Add(MaturityEntry{AccountID: 1, MaturesAt: now.Add(-time.Minute)})
	ms.Add(MaturityEntry{AccountID: 2, MaturesAt: now.Add(time.Hour)})

	matured := ms.GetMatured(now)
	if len(matured) != 1 || matured[0].AccountID != 1 {
		t.Fatalf("expected only account 1 matured, got %v", matured)
	}
	if ms.Len() != 1 {
		t.Errorf("expected 1 pending entry, got %d", ms.Len())
	}
}

func TestMaturityScheduleRemoveSkipsEntry(t *testing.T) {
	ms := NewMaturitySchedule()
	now := time.Now()

	ms.Add(MaturityEntry{AccountID: 1, MaturesAt: now.Add(-2 * time.Minute)})
	ms.Add(MaturityEntry{AccountID: 2, MaturesAt: now.Add(-1 * time.Minute)})
	ms.Remove(1)

	matured := ms.GetMatured(now)
	if len(matured) != 1 || matured[0].AccountID != 2 {
		t.Fatalf("expected only account 2 matured, got %v", matured)
	}
}

func TestTrackerDedupesSchedules(t *testing.T) {
	tracker, _, mr := setupTestTracker(t)
	defer mr.Close()

	entry := MaturityEntry{AccountID: 7, Recipient: "0:AAAA", MaturesAt: time.Now().Add(time.Hour)}
	tracker.track(entry)
	tracker.track(entry)

	if tracker.schedule.Len() != 1 {
		t.Errorf("expected 1 pending schedule, got %d", tracker.schedule.Len())
	}
}

func TestTrackerAnnouncesMaturedSchedules(t *testing.T) {
	tracker, bus, mr := setupTestTracker(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, eventbus.TopicVestingMatured)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	maturedAt := time.Now().Add(-time.Minute)
	tracker.track(MaturityEntry{AccountID: 7, Recipient: "0:AAAA", MaturesAt: maturedAt})
	tracker.sweep(ctx)

	select {
	case msg := <-sub.Events():
		event, err := eventbus.DecodePayload[eventbus.ScheduleMatured](msg.Payload)
		if err != nil {
			t.Fatalf("DecodePayload: %v", err)
		}
		if event.AccountID != 7 || event.Recipient != "0:AAAA" {
			t.Errorf("unexpected event identity: %+v", event)
		}
		if event.MaturedAt != maturedAt.Unix() {
			t.Errorf("expected matured_at %d, got %d", maturedAt.Unix(), event.MaturedAt)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for maturity announcement")
	}

	if tracker.schedule.Len() != 0 {
		t.Errorf("expected announced schedule to leave the pending set, got %d", tracker.schedule.Len())
	}
}

func TestTrackerFollowsGrantEvents(t *testing.T) {
	tracker, _, mr := setupTestTracker(t)
	defer mr.Close()

	payload, err := msgpack.Marshal(eventbus.GrantRecorded{
		AccountID:       11,
		Recipient:       "0:BBBB",
		TotalAmount:     ledger.NewMoney(1000),
		StartTime:       1_700_000_000,
		DurationSeconds: 7_776_000,
	})
	if err != nil {
		t.Fatalf("marshal grant: %v", err)
	}
	tracker.handleBusEvent(eventbus.Message{Topic: eventbus.TopicVestingGranted, Payload: payload})

	if tracker.schedule.Len() != 1 {
		t.Fatalf("expected 1 pending schedule, got %d", tracker.schedule.Len())
	}
}

func TestTrackerDropsDrainedSchedules(t *testing.T) {
	tracker, _, mr := setupTestTracker(t)
	defer mr.Close()

	tracker.track(MaturityEntry{AccountID: 5, Recipient: "0:CCCC", MaturesAt: time.Now().Add(time.Hour)})
	tracker.track(MaturityEntry{AccountID: 6, Recipient: "0:CCCC", MaturesAt: time.Now().Add(time.Hour)})

	payload, err := msgpack.Marshal(eventbus.ClaimSettled{
		TxHash:    "txhash1",
		Recipient: "0:CCCC",
		Amount:    ledger.NewMoney(500),
		Allocations: []eventbus.ClaimAllocation{
			{AccountID: 5, Amount: ledger.NewMoney(400), FullyClaimed: true},
			{AccountID: 6, Amount: ledger.NewMoney(100), FullyClaimed: false},
		},
	})
	if err != nil {
		t.Fatalf("marshal claim: %v", err)
	}
	tracker.handleBusEvent(eventbus.Message{Topic: eventbus.TopicVestingClaimed, Payload: payload})

	if tracker.schedule.Len() != 1 {
		t.Errorf("expected the drained schedule dropped, got %d pending", tracker.schedule.Len())
	}
}
