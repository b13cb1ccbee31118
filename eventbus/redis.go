package eventbus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const eventBufferSize = 100

// RedisBus implements Bus over Redis pub/sub with msgpack payloads.
type RedisBus struct {
	client *redis.Client
}

func NewRedisBus(client *redis.Client) *RedisBus {
	return &RedisBus{client: client}
}

func (b *RedisBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", topic, err)
	}
	if err := b.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, topics ...string) (Subscription, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("subscribe requires at least one topic")
	}
	pubsub := b.client.Subscribe(ctx, topics...)

	// wait for the subscription confirmation before handing out the feed
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %v: %w", topics, err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: make(chan Message, eventBufferSize),
	}
	go sub.forward()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Message
}

// forward drains the pub/sub channel until Close. go-redis closes the
// source channel when the PubSub is closed, which closes events too.
func (s *redisSubscription) forward() {
	defer close(s.events)
	for msg := range s.pubsub.Channel() {
		s.events <- Message{Topic: msg.Channel, Payload: []byte(msg.Payload)}
	}
}

func (s *redisSubscription) Events() <-chan Message {
	return s.events
}

func (s *redisSubscription) Close() error {
	return s.pubsub.Close()
}
