package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"mediaTracker/tracker/grouping"
	"mediaTracker/tracker/repository"
)

// StatusEvent is published for every observed status change.
type StatusEvent struct {
	EventID    string    `json:"event_id"`
	TaskID     string    `json:"task_id"`
	TaskType   string    `json:"task_type"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	GroupID    string    `json:"group_id,omitempty"`
	Error      string    `json:"error_message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewStatusEvent(change repository.Change) *StatusEvent {
	cur := change.Current
	ev := &StatusEvent{
		EventID:    uuid.New().String(),
		TaskID:     cur.ID,
		TaskType:   string(cur.TaskType),
		To:         string(cur.Status),
		Error:      cur.ErrorMessage,
		OccurredAt: cur.UpdatedAt,
	}
	if change.Previous != nil {
		ev.From = string(change.Previous.Status)
	}
	if groupID, ok := grouping.GroupIDOf(cur); ok {
		ev.GroupID = groupID
	}
	return ev
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return NewProducerFrom(p, topic), nil
}

func NewProducerFrom(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

func (p *Producer) Name() string { return "kafka" }

func (p *Producer) Handle(ctx context.Context, change repository.Change) error {
	if !change.StatusChanged() {
		return nil
	}
	return p.SendStatusEvent(ctx, NewStatusEvent(change))
}

func (p *Producer) SendStatusEvent(ctx context.Context, event *StatusEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.TaskID),
		Value: sarama.ByteEncoder(data),
	}

	_, _, err = p.producer.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
