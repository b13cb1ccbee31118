package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/fbtplatform/fbt-ledger-go/ledger"
)

func setupTestBus(t *testing.T) (*RedisBus, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisBus(client), mr
}

func waitForMessage(t *testing.T, sub Subscription) Message {
	t.Helper()

	select {
	case msg, ok := <-sub.Events():
		if !ok {
			t.Fatal("events channel closed while waiting for a message")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a message")
	}
	return Message{}
}

func TestPublishSubscribeRoundtrip(t *testing.T) {
	bus, mr := setupTestBus(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicVestingGranted, TopicVestingClaimed)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	granted := GrantRecorded{
		AccountID:       12,
		Recipient:       "0:AAAA",
		TotalAmount:     ledger.NewMoney(5_000_000_000),
		StartTime:       1_700_000_000,
		DurationSeconds: 31_536_000,
		Category:        ledger.AllocationTeam,
		CreatedAt:       1_700_000_000,
	}
	if err := bus.Publish(ctx, TopicVestingGranted, granted); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg := waitForMessage(t, sub)
	if msg.Topic != TopicVestingGranted {
		t.Fatalf("expected topic %s, got %s", TopicVestingGranted, msg.Topic)
	}
	got, err := DecodePayload[GrantRecorded](msg.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.AccountID != 12 || got.Recipient != "0:AAAA" || got.Category != ledger.AllocationTeam {
		t.Errorf("payload mismatch: %+v", got)
	}
	if got.TotalAmount.Cmp(ledger.NewMoney(5_000_000_000)) != 0 {
		t.Errorf("total amount lost precision: %s", got.TotalAmount)
	}
}

func TestTopicFiltering(t *testing.T) {
	bus, mr := setupTestBus(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicStakeDeposited)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	// a message on an unsubscribed topic, then one on the subscribed
	// topic; only the second may arrive
	alert := ReconciliationAlert{
		Recipient: "0:BBBB",
		TxHash:    "hash-1",
		Requested: ledger.NewMoney(100),
		Allocated: ledger.NewMoney(40),
		Shortfall: ledger.NewMoney(60),
		CreatedAt: 1_700_000_000,
	}
	if err := bus.Publish(ctx, TopicReconciliation, alert); err != nil {
		t.Fatalf("Publish reconciliation: %v", err)
	}
	deposit := DepositSettled{
		TxHash:      "hash-2",
		AccountID:   3,
		Staker:      "0:CCCC",
		Pool:        "0:DDDD",
		Amount:      ledger.NewMoney(1000),
		Shares:      ledger.NewMoney(500),
		BlockNumber: 77,
		DepositedAt: 1_700_000_100,
	}
	if err := bus.Publish(ctx, TopicStakeDeposited, deposit); err != nil {
		t.Fatalf("Publish deposit: %v", err)
	}

	msg := waitForMessage(t, sub)
	if msg.Topic != TopicStakeDeposited {
		t.Fatalf("received message from unsubscribed topic: %s", msg.Topic)
	}
	got, err := DecodePayload[DepositSettled](msg.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.TxHash != "hash-2" || got.Shares.Cmp(ledger.NewMoney(500)) != 0 {
		t.Errorf("payload mismatch: %+v", got)
	}
}

func TestShortfallOmittedWhenNil(t *testing.T) {
	bus, mr := setupTestBus(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicVestingClaimed)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer sub.Close()

	claim := ClaimSettled{
		TxHash:    "hash-3",
		Recipient: "0:AAAA",
		Amount:    ledger.NewMoney(250),
		ClaimedAt: 1_700_000_000,
		Allocations: []ClaimAllocation{
			{AccountID: 1, Amount: ledger.NewMoney(250), FullyClaimed: false},
		},
	}
	if err := bus.Publish(ctx, TopicVestingClaimed, claim); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg := waitForMessage(t, sub)
	got, err := DecodePayload[ClaimSettled](msg.Payload)
	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if got.Shortfall != nil {
		t.Errorf("expected nil shortfall, got %s", got.Shortfall)
	}
	if len(got.Allocations) != 1 || got.Allocations[0].Amount.Cmp(ledger.NewMoney(250)) != 0 {
		t.Errorf("allocations mismatch: %+v", got.Allocations)
	}
}

func TestSubscriptionClose(t *testing.T) {
	bus, mr := setupTestBus(t)
	defer mr.Close()
	ctx := context.Background()

	sub, err := bus.Subscribe(ctx, TopicVestingMatured)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("events channel not closed after Close")
		}
	}
}

func TestSubscribeRequiresTopics(t *testing.T) {
	bus, mr := setupTestBus(t)
	defer mr.Close()

	if _, err := bus.Subscribe(context.Background()); err == nil {
		t.Fatal("expected an error for an empty topic list")
	}
}
