package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"
)

// Message is one raw record pulled off the activity topic.
type Message struct {
	Key   []byte
	Value []byte
}

// Consumer abstracts the message source so the runner can be driven by a
// real Kafka reader or an in-process channel in tests.
type Consumer interface {
	Start(ctx context.Context) error
	Messages() <-chan Message
	Close() error
}

// KafkaConsumer reads the activity topic with segmentio/kafka-go.
type KafkaConsumer struct {
	brokers string
	group   string
	topic   string
	reader  *kafka.Reader
	out     chan Message
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewKafkaConsumer builds a consumer for one topic. brokers is a
// comma-separated list.
func NewKafkaConsumer(brokers, group, topic string, logger *slog.Logger) *KafkaConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaConsumer{
		brokers: brokers,
		group:   group,
		topic:   topic,
		out:     make(chan Message, 100),
		logger:  logger,
	}
}

// Start spawns the read loop. The loop exits when ctx is canceled.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(c.brokers, ","),
		Topic:    c.topic,
		GroupID:  c.group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	c.mu.Lock()
	c.reader = reader
	c.mu.Unlock()

	go func() {
		// Only the read loop closes out, so a send can never race the close.
		defer close(c.out)
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, io.EOF) {
					return
				}
				c.logger.Warn("kafka read error", "topic", c.topic, "error", err)
				continue
			}
			select {
			case c.out <- Message{Key: msg.Key, Value: msg.Value}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Messages returns the consumed-message channel.
func (c *KafkaConsumer) Messages() <-chan Message {
	return c.out
}

// Close stops the reader. The read loop observes the closed reader and
// closes the message channel on its way out.
func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()

	if reader != nil {
		return reader.Close()
	}
	close(c.out)
	return nil
}

// ChannelConsumer is an in-process Consumer backed by a Go channel, used in
// tests and for local event injection.
type ChannelConsumer struct {
	ch chan Message
}

// NewChannelConsumer creates an in-process consumer.
func NewChannelConsumer() *ChannelConsumer {
	return &ChannelConsumer{ch: make(chan Message, 100)}
}

// Start is a no-op for the channel consumer.
func (c *ChannelConsumer) Start(ctx context.Context) error { return nil }

// Messages returns the message channel.
func (c *ChannelConsumer) Messages() <-chan Message { return c.ch }

// Close closes the channel.
func (c *ChannelConsumer) Close() error {
	close(c.ch)
	return nil
}

// Send pushes a message into the consumer.
func (c *ChannelConsumer) Send(msg Message) {
	c.ch <- msg
}
