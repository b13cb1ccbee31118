// Package eventbus carries settlement and lifecycle events between the
// API process, the replication handler, the maturity tracker and websocket
// clients. Publishers and subscribers receive a Bus by injection; nothing
// in the module talks to a process-global broker.
package eventbus

import (
	"context"
)

// Topic names. One publisher per topic: the API publishes settlement
// events after commit, the replication handler publishes reconciliation
// alerts, the maturity tracker publishes matured schedules.
const (
	TopicVestingGranted = "ledger.vesting.granted"
	TopicVestingClaimed = "ledger.vesting.claimed"
	TopicVestingMatured = "ledger.vesting.matured"
	TopicStakeDeposited = "ledger.stake.deposited"
	TopicStakeWithdrawn = "ledger.stake.withdrawn"
	TopicReconciliation = "ledger.reconciliation"
)

// Topics lists every topic the bus carries, in publication order.
func Topics() []string {
	return []string{
		TopicVestingGranted,
		TopicVestingClaimed,
		TopicVestingMatured,
		TopicStakeDeposited,
		TopicStakeWithdrawn,
		TopicReconciliation,
	}
}

// Message is a raw event as delivered to a subscriber. Payload is the
// msgpack encoding of one of the structs in events.go, keyed by Topic.
type Message struct {
	Topic   string
	Payload []byte
}

// Subscription is a live feed of messages for a set of topics. Events()
// is closed after Close returns.
type Subscription interface {
	Events() <-chan Message
	Close() error
}

type Bus interface {
	Publish(ctx context.Context, topic string, payload any) error
	Subscribe(ctx context.Context, topics ...string) (Subscription, error)
}
