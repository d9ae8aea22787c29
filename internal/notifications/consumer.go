package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courtly/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer interface defines the contract for consuming booking events
type Consumer interface {
	Start(ctx context.Context) error
	Stop() error
}

// ConsumerConfig contains configuration for the Kafka event consumer
type ConsumerConfig struct {
	Brokers  []string
	Topic    string
	GroupID  string
	RetryMax int
}

// DefaultConsumerConfig returns a default consumer configuration
func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:  []string{"localhost:9092"},
		Topic:    "booking-events",
		GroupID:  "courtly-notifications",
		RetryMax: 3,
	}
}

// KafkaConsumer consumes booking events and fans them out to email.
type KafkaConsumer struct {
	group   sarama.ConsumerGroup
	config  *ConsumerConfig
	emailer EmailService
	log     *logger.Logger
	done    chan struct{}
}

// NewKafkaConsumer creates a new Kafka booking event consumer
func NewKafkaConsumer(config *ConsumerConfig, emailer EmailService, log *logger.Logger) (Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	return &KafkaConsumer{
		group:   group,
		config:  config,
		emailer: emailer,
		log:     log,
		done:    make(chan struct{}),
	}, nil
}

// Start runs the consume loop until the context is cancelled or Stop is
// called.
func (kc *KafkaConsumer) Start(ctx context.Context) error {
	handler := &eventHandler{
		emailer:  kc.emailer,
		log:      kc.log,
		retryMax: kc.config.RetryMax,
	}

	go func() {
		for err := range kc.group.Errors() {
			kc.log.Error("kafka consumer error", slog.Any("error", err))
		}
	}()

	go func() {
		for {
			select {
			case <-kc.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			// Consume blocks for one rebalance cycle and returns; loop to
			// rejoin after rebalances.
			if err := kc.group.Consume(ctx, []string{kc.config.Topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				kc.log.Error("kafka consume failed", slog.Any("error", err))
				time.Sleep(time.Second)
			}
		}
	}()

	kc.log.Info("kafka booking event consumer started",
		slog.String("topic", kc.config.Topic),
		slog.String("group", kc.config.GroupID),
	)
	return nil
}

// Stop shuts down the consumer group
func (kc *KafkaConsumer) Stop() error {
	close(kc.done)
	return kc.group.Close()
}

type eventHandler struct {
	emailer  EmailService
	log      *logger.Logger
	retryMax int
}

func (h *eventHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *eventHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *eventHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := h.processMessage(message); err != nil {
			h.log.Error("failed to process booking event",
				slog.Int64("offset", message.Offset),
				slog.Any("error", err),
			)
		}
		// Mark regardless: a poison message must not wedge the partition.
		session.MarkMessage(message, "")
	}
	return nil
}

func (h *eventHandler) processMessage(message *sarama.ConsumerMessage) error {
	event, err := FromJSON(message.Value)
	if err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= h.retryMax; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
		if lastErr = h.emailer.SendBookingEvent(event); lastErr == nil {
			h.log.Debug("booking event email sent",
				slog.String("booking_no", event.BookingNo),
				slog.String("type", string(event.Type)),
			)
			return nil
		}
	}
	return lastErr
}
