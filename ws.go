package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fbtplatform/fbt-ledger-go/eventbus"
)

type wsEnvelope struct {
	Id        *string `json:"id,omitempty"`
	Operation string  `json:"operation"`
}

type wsSubscribeRequest struct {
	Topics []string `json:"topics"`
}

type wsStatusResponse struct {
	Id     *string  `json:"id,omitempty"`
	Status string   `json:"status"`
	Topics []string `json:"topics,omitempty"`
}

type wsErrorResponse struct {
	Id    *string `json:"id,omitempty"`
	Error string  `json:"error"`
}

// wsEventFrame is one bus event delivered to a websocket client.
type wsEventFrame struct {
	Topic string          `json:"topic"`
	Event json.RawMessage `json:"event"`
}

type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
	sub  eventbus.Subscription
}

func (w *wsClient) write(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ws marshal response: %s", err.Error())
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.WriteMessage(websocket.TextMessage, data)
}

func (w *wsClient) writeError(id *string, err error) {
	w.write(wsErrorResponse{Id: id, Error: err.Error()})
}

// replace swaps the active subscription. Closing the old one ends its
// pump goroutine through the closed events channel.
func (w *wsClient) replace(sub eventbus.Subscription) {
	w.mu.Lock()
	old := w.sub
	w.sub = sub
	w.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (w *wsClient) pump(sub eventbus.Subscription) {
	for msg := range sub.Events() {
		frame, err := buildEventFrame(msg)
		if err != nil {
			log.Printf("ws frame for topic %s: %s", msg.Topic, err.Error())
			continue
		}
		w.write(frame)
	}
}

func decodeEventFrame[T any](topic string, payload []byte) (*wsEventFrame, error) {
	event, err := eventbus.DecodePayload[T](payload)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return &wsEventFrame{Topic: topic, Event: data}, nil
}

// buildEventFrame re-encodes a bus message as JSON for websocket
// delivery. Bus payloads travel as msgpack internally.
func buildEventFrame(msg eventbus.Message) (*wsEventFrame, error) {
	switch msg.Topic {
	case eventbus.TopicVestingGranted:
		return decodeEventFrame[eventbus.GrantRecorded](msg.Topic, msg.Payload)
	case eventbus.TopicVestingClaimed:
		return decodeEventFrame[eventbus.ClaimSettled](msg.Topic, msg.Payload)
	case eventbus.TopicVestingMatured:
		return decodeEventFrame[eventbus.ScheduleMatured](msg.Topic, msg.Payload)
	case eventbus.TopicStakeDeposited:
		return decodeEventFrame[eventbus.DepositSettled](msg.Topic, msg.Payload)
	case eventbus.TopicStakeWithdrawn:
		return decodeEventFrame[eventbus.WithdrawalSettled](msg.Topic, msg.Payload)
	case eventbus.TopicReconciliation:
		return decodeEventFrame[eventbus.ReconciliationAlert](msg.Topic, msg.Payload)
	}
	return nil, fmt.Errorf("unknown topic: %s", msg.Topic)
}

func validateTopics(requested []string) ([]string, error) {
	known := mapset.NewSet(eventbus.Topics()...)
	topics := make([]string, 0, len(requested))
	for _, topic := range requested {
		if !known.Contains(topic) {
			return nil, fmt.Errorf("unknown topic: %s", topic)
		}
		topics = append(topics, topic)
	}
	return topics, nil
}

func WsUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// WsEvents streams ledger events to websocket clients. A client sends a
// subscribe operation with the topic list it wants; matching bus events
// are delivered as JSON frames until the client unsubscribes or drops.
func WsEvents() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client := &wsClient{conn: c}
		defer client.replace(nil)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				return
			}

			var env wsEnvelope
			if err := json.Unmarshal(msg, &env); err != nil {
				client.writeError(nil, fmt.Errorf("invalid request envelope: %v", err))
				continue
			}

			switch env.Operation {
			case "ping":
				client.write(wsStatusResponse{Id: env.Id, Status: "pong"})

			case "subscribe":
				var req wsSubscribeRequest
				if err := json.Unmarshal(msg, &req); err != nil {
					client.writeError(env.Id, fmt.Errorf("invalid subscribe request: %v", err))
					continue
				}
				if len(req.Topics) == 0 {
					client.writeError(env.Id, fmt.Errorf("topics are required"))
					continue
				}
				topics, err := validateTopics(req.Topics)
				if err != nil {
					client.writeError(env.Id, err)
					continue
				}
				sub, err := bus.Subscribe(ctx, topics...)
				if err != nil {
					client.writeError(env.Id, err)
					continue
				}
				client.replace(sub)
				go client.pump(sub)
				client.write(wsStatusResponse{Id: env.Id, Status: "subscribed", Topics: topics})

			case "unsubscribe":
				client.replace(nil)
				client.write(wsStatusResponse{Id: env.Id, Status: "unsubscribed"})

			default:
				client.writeError(env.Id, fmt.Errorf("unknown operation: %s", env.Operation))
			}
		}
	})
}
