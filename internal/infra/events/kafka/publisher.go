package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	domain "github.com/bryanwahyu/ip-inspection/internal/domain/inspection"
)

const EventInspectionCompleted = "inspection.completed"

// Event is the message published after a record is stored.
type Event struct {
	Type      string    `json:"type"`
	RecordID  string    `json:"record_id"`
	UserID    string    `json:"user_id"`
	IP        string    `json:"ip"`
	Location  string    `json:"location"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher struct {
	w *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		MaxAttempts:  3,
	}}
}

// Publish writes one event keyed by user id, so a user's events stay ordered.
func (p *Publisher) Publish(ctx context.Context, rec *domain.Record) error {
	msg, err := newMessage(rec)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error { return p.w.Close() }

func newEvent(rec *domain.Record) Event {
	ev := Event{
		Type:      EventInspectionCompleted,
		RecordID:  string(rec.ID),
		UserID:    rec.UserID,
		Location:  rec.Location,
		Score:     rec.Result.ScoreValue(),
		CreatedAt: rec.CreatedAt,
	}
	if len(rec.Addresses) > 0 {
		ev.IP = rec.Addresses[0]
	}
	return ev
}

func newMessage(rec *domain.Record) (kafka.Message, error) {
	body, err := json.Marshal(newEvent(rec))
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(rec.UserID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(EventInspectionCompleted)},
		},
	}, nil
}
