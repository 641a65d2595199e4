package kafka

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"mediaTracker/tracker/backend"
	"mediaTracker/tracker/repository"
)

// MessageHandler processes one raw message value.
type MessageHandler func(ctx context.Context, value []byte) error

// SnapshotHandler applies pushed task snapshots through the repository, so the
// forward-only rule holds for pushed and polled updates alike.
func SnapshotHandler(repo repository.Repository, logger *zap.Logger) MessageHandler {
	return func(ctx context.Context, value []byte) error {
		task, err := backend.DecodeTask(value)
		if err != nil {
			return err
		}
		err = repo.Upsert(task)
		if errors.Is(err, repository.ErrStatusRegression) || errors.Is(err, repository.ErrStaleSnapshot) {
			return nil
		}
		if err != nil {
			return err
		}
		logger.Debug("Applied pushed snapshot",
			zap.String("task_id", task.ID),
			zap.String("status", string(task.Status)),
		)
		return nil
	}
}

type Consumer struct {
	consumer sarama.ConsumerGroup
	logger   *zap.Logger
}

func NewConsumer(brokers []string, groupID string, logger *zap.Logger) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	c, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, err
	}

	return &Consumer{consumer: c, logger: logger}, nil
}

type consumerHandler struct {
	fn     MessageHandler
	logger *zap.Logger
}

func (h *consumerHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.fn(session.Context(), msg.Value); err != nil {
			h.logger.Warn("Skipping status message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
		session.MarkMessage(msg, "")
	}
	return nil
}

// Consume blocks, rejoining the group after each rebalance, until ctx ends.
func (c *Consumer) Consume(ctx context.Context, topic string, handler MessageHandler) error {
	h := &consumerHandler{fn: handler, logger: c.logger}
	for {
		if err := c.consumer.Consume(ctx, []string{topic}, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.consumer.Close()
}
