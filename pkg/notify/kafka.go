package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ghuser/ordermgmt/pkg/logger"
)

const defaultKafkaBuffer = 1024

// messageWriter is the subset of *kafka.Writer used by KafkaDispatcher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher queues notifications in a bounded in-process buffer that a
// single goroutine drains into Kafka. Enqueue never blocks: when the buffer is
// full the notification is dropped and logged.
type KafkaDispatcher struct {
	w       messageWriter
	log     logger.Logger
	metrics *Metrics
	inbox   chan kafka.Message
	done    chan struct{}
	closed  sync.Once
	mu      sync.RWMutex
	stop    bool
}

// NewKafkaDispatcher returns a running dispatcher writing to TopicEmail on
// brokers. Call Close on shutdown to flush the buffer. Lost notifications
// are counted on m, which may be nil.
func NewKafkaDispatcher(brokers []string, buf int, log logger.Logger, m *Metrics) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicEmail,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaDispatcher(w, buf, log, m)
}

// newKafkaDispatcher starts the drain loop before returning, so Close never
// waits on a loop that was not launched.
func newKafkaDispatcher(w messageWriter, buf int, log logger.Logger, m *Metrics) *KafkaDispatcher {
	if buf <= 0 {
		buf = defaultKafkaBuffer
	}
	d := &KafkaDispatcher{
		w:       w,
		log:     log,
		metrics: m,
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
	}
	go d.drain()
	return d
}

func (d *KafkaDispatcher) drain() {
	defer close(d.done)
	for m := range d.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := d.w.WriteMessages(ctx, m); err != nil {
			kind := headerValue(m.Headers, "kind")
			d.log.Error("notify: kafka write failed", "kind", kind, "error", err)
			d.metrics.Failed(ctx, Kind(kind), "publish")
		}
		cancel()
	}
	if err := d.w.Close(); err != nil {
		d.log.Error("notify: kafka writer close failed", "error", err)
	}
}

// Enqueue buffers n for delivery.
func (d *KafkaDispatcher) Enqueue(ctx context.Context, n Notification) {
	payload, n, err := Encode(n)
	if err != nil {
		d.log.ErrorContext(ctx, "notify: encode failed", "kind", n.Kind, "error", err)
		d.metrics.Failed(ctx, n.Kind, "encode")
		return
	}
	m := kafka.Message{
		Key:   []byte(n.ID.String()),
		Value: payload,
		Time:  n.CreatedAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(n.Kind)},
		},
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stop {
		d.log.WarnContext(ctx, "notify: dispatcher closed, dropping", "kind", n.Kind)
		d.metrics.Failed(ctx, n.Kind, "closed")
		return
	}
	select {
	case d.inbox <- m:
	default:
		d.log.WarnContext(ctx, "notify: kafka buffer full, dropping", "kind", n.Kind, "notification_id", n.ID)
		d.metrics.Failed(ctx, n.Kind, "buffer_full")
	}
}

// Close stops accepting notifications and waits for the buffer to flush.
func (d *KafkaDispatcher) Close() {
	d.closed.Do(func() {
		d.mu.Lock()
		d.stop = true
		close(d.inbox)
		d.mu.Unlock()
	})
	<-d.done
}

func headerValue(hs []kafka.Header, key string) string {
	for _, h := range hs {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// KafkaConsumer reads TopicEmail in a consumer group and commits offsets only
// after the handler succeeds.
type KafkaConsumer struct {
	r       *kafka.Reader
	log     logger.Logger
	metrics *Metrics
}

// NewKafkaConsumer returns a consumer for TopicEmail in group. Failed
// deliveries are counted on m, which may be nil.
func NewKafkaConsumer(brokers []string, group string, log logger.Logger, m *Metrics) *KafkaConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          TopicEmail,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	return &KafkaConsumer{r: r, log: log, metrics: m}
}

// Run fetches messages until ctx is cancelled. A handler error leaves the
// offset uncommitted so the message is redelivered after a restart or rebalance.
func (c *KafkaConsumer) Run(ctx context.Context, handle func(context.Context, Notification) error) error {
	defer c.r.Close() //nolint:errcheck

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("notify: kafka fetch: %w", err)
		}

		n, err := Decode(m.Value)
		if err != nil {
			// Poison message: commit so it does not block the partition.
			c.log.ErrorContext(ctx, "notify: dropping undecodable message", "offset", m.Offset, "error", err)
		} else if err := handle(ctx, n); err != nil {
			c.log.ErrorContext(ctx, "notify: delivery failed",
				"kind", n.Kind,
				"notification_id", n.ID,
				"error", err,
			)
			c.metrics.Failed(ctx, n.Kind, "deliver")
			continue
		}

		if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.log.ErrorContext(ctx, "notify: kafka commit failed", "offset", m.Offset, "error", err)
		}
	}
}
